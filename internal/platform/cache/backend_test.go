// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"user:*", "user:"},
		{"estudiantes:list:?:20", "estudiantes:list:"},
		{"session:active:[0-9]", "session:active:"},
		{"{user,session}:*", ""},
		{"exact:key", "exact:key"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, literalPrefix(tt.pattern))
		})
	}
}

func TestEscapes(t *testing.T) {
	assert.Equal(t, `rate\_limit:100\%`, escapeLike("rate_limit:100%"))
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"user:*", "user:id:7", true},
		{"user:*", "user:username:ana/b", true},
		{"login_attempts:*", "login_attempts:1.2.3.4/x", true},
		{"user:username:ana/?", "user:username:ana/b", true},
		{"user:id:*", "user:username:ana/b", false},
		{"{user,session}:*", "session:active:a/b", true},
		{"exact:key", "exact:key/", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, matchKey(tt.pattern, tt.key))
		})
	}

	assert.True(t, validPattern("user:*/x"))
	assert.False(t, validPattern("user:["))
}

// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestConvertToPgx5DSN rewrites only postgres URL schemes.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres_scheme", "postgres://aula:secret@db:5432/aula", "pgx5://aula:secret@db:5432/aula"},
		{"postgresql_scheme", "postgresql://db/aula?sslmode=disable", "pgx5://db/aula?sslmode=disable"},
		{"already_pgx5", "pgx5://db/aula", "pgx5://db/aula"},
		{"keyword_dsn_untouched", "host=db dbname=aula", "host=db dbname=aula"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertToPgx5DSN(tt.dsn))
		})
	}
}

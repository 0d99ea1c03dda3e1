// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aula/pkg/convert"
)

func TestToIntD(t *testing.T) {
	assert.Equal(t, 3, convert.ToIntD("3", 1))
	assert.Equal(t, -2, convert.ToIntD("-2", 1))
	assert.Equal(t, 1, convert.ToIntD("", 1))
	assert.Equal(t, 20, convert.ToIntD("veinte", 20))
}

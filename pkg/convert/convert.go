// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package convert parses loosely typed input such as query parameters.
package convert

import "strconv"

// ToIntD converts str to an int, returning def when str is empty or malformed.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	return def
}

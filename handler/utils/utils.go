// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package utils

import "fmt"

const (
	FONT_SETTINGS_PREFIX = "\033[1;42;37m"
	FONT_SETTINGS_SUFFIX = "\033[0m"
)

func FontSet(str string) string {
	return FONT_SETTINGS_PREFIX + str + FONT_SETTINGS_SUFFIX
}

var sizeUnits = []string{"KB", "MB", "GB"}

// HumanReadableSize renders a byte count as whole bytes below 1 KB and with
// two decimals in KB, MB or GB above.
func HumanReadableSize(n int64) string {
	if n < 1024 {
		if n < 0 {
			n = 0
		}
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n) / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[unit])
}

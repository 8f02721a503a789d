// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"fmt"
	"strings"
)

func sprintf(format string, v ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, v...), "\n")
}

// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintfGoesToOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})
	SetLevel("info")

	Printf("loaded %d entities\n", 12)
	if !strings.Contains(buf.String(), "loaded 12 entities") {
		t.Errorf("output %q misses message", buf.String())
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})
	if !SetLevel("warn") {
		t.Fatalf("SetLevel(warn) rejected")
	}
	defer SetLevel("info")

	Logger().Info("hidden")
	Logger().Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info message passed a warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message was dropped")
	}
	if SetLevel("loud") {
		t.Errorf("SetLevel accepted an unknown level")
	}
}

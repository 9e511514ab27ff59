package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestMessagesRouteToStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)

	u.Infof("fetched %d rows\n", 3)
	u.Warnf("slow bypass")
	u.Errorf("failed")

	if out.String() != "fetched 3 rows\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
	if errOut.String() != "slow bypass\nfailed\n" {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestNoColorWins(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var out bytes.Buffer
	if New(&out, &out, ColorAlways, false).ColorEnabled {
		t.Fatalf("expected NO_COLOR to disable color even when set empty")
	}
}

func TestDisableColorFlag(t *testing.T) {
	var out bytes.Buffer
	u := New(&out, &out, ColorAlways, true)
	u.Successf("ok")
	if u.ColorEnabled || strings.Contains(out.String(), "\x1b") {
		t.Fatalf("expected plain output, got %q", out.String())
	}
}

func TestNormalizeColorMode(t *testing.T) {
	if NormalizeColorMode(" ALWAYS ") != ColorAlways || NormalizeColorMode("bogus") != ColorAuto {
		t.Fatalf("unexpected color mode normalization")
	}
	if strings.ToUpper(string(NormalizeColorMode("never"))) != "NEVER" {
		t.Fatalf("expected never mode")
	}
}

func TestIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	file, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer file.Close()

	u := New(&buf, file, ColorNever, false)
	if u.IsTerminal() {
		t.Fatalf("expected buffer not to be a terminal")
	}
	if u.ErrIsTerminal() {
		t.Fatalf("expected regular file not to be a terminal")
	}
}

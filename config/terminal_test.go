package config

import (
	"os"
	"testing"
)

func TestTerminal_Redirected(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if EnableColorOutput(w) {
		t.Error("EnableColorOutput() = true for pipe")
	}
	if _, _, ok := TerminalSize(w); ok {
		t.Error("TerminalSize() succeeded for pipe")
	}
}

func TestEnableColorOutput_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if EnableColorOutput(os.Stderr) {
		t.Error("EnableColorOutput() ignores NO_COLOR")
	}
}

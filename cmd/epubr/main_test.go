package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"epubr/state"
)

func TestWriteOutput(t *testing.T) {
	data := []byte("version: 1\n")

	var stdout bytes.Buffer
	if err := writeOutput("", &stdout, data); err != nil || stdout.String() != string(data) {
		t.Errorf("writeOutput(stdout) = %q, %v", stdout.String(), err)
	}

	name := filepath.Join(t.TempDir(), "epubr.yaml")
	stdout.Reset()
	if err := writeOutput(name, &stdout, data); err != nil {
		t.Fatalf("writeOutput(file) error = %v", err)
	}
	if got, err := os.ReadFile(name); err != nil || string(got) != string(data) || stdout.Len() != 0 {
		t.Errorf("file = %q, %v, stdout = %q", got, err, stdout.String())
	}

	if err := writeOutput(filepath.Join(t.TempDir(), "no", "dir", "x.yaml"), &stdout, data); err == nil {
		t.Error("writeOutput() into missing directory succeeded")
	}
}

func TestRemoveEmptyCrashLog(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "epubr.log")
	crash := filepath.Join(dir, "epubr-panic.log")

	if err := os.WriteFile(crash, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := removeEmptyCrashLog(dest); err != nil {
		t.Fatalf("removeEmptyCrashLog() error = %v", err)
	}
	if _, err := os.Stat(crash); !os.IsNotExist(err) {
		t.Error("empty crash log kept")
	}

	if err := os.WriteFile(crash, []byte("goroutine 1 [running]:"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := removeEmptyCrashLog(dest); err != nil {
		t.Fatalf("removeEmptyCrashLog() error = %v", err)
	}
	if _, err := os.Stat(crash); err != nil {
		t.Error("crash log with content removed")
	}
}

func TestPrepareEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgFile := filepath.Join(dir, "epubr.yaml")
	cfg := "version: 1\nlogging:\n  console:\n    level: none\n  file:\n    level: none\n    destination: " +
		filepath.Join(dir, "epubr.log") + "\nreporting:\n  destination: " + filepath.Join(dir, "report.zip") + "\n"
	if err := os.WriteFile(cfgFile, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	env := &state.LocalEnv{}
	if err := prepareEnv(env, cfgFile, true); err != nil {
		t.Fatalf("prepareEnv() error = %v", err)
	}
	if env.Cfg == nil || env.Log == nil || env.Rpt == nil {
		t.Fatalf("environment = %+v", env)
	}
	env.Log.Debug("Opening book")
	if err := env.Rpt.Close(); err != nil {
		t.Fatalf("report Close() error = %v", err)
	}
	if err := removeEmptyCrashLog(env.Cfg.Logging.File.Destination); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.zip")); err != nil {
		t.Errorf("report not written: %v", err)
	}

	if err := prepareEnv(&state.LocalEnv{}, filepath.Join(dir, "absent.yaml"), false); err == nil {
		t.Error("prepareEnv() with missing configuration succeeded")
	}
}

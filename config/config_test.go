package config

import (
	"flag"
	"io"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestBindSessionParsesFlags(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.BindLog(fs)
	cfg.BindSession(fs)
	err := fs.Parse([]string{"-window", "Reader", "-out", "shots", "-max", "3", "-delay", "1s", "-stop-on-same=false", "-log-level", "DEBUG"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Session.Window != "Reader" || cfg.Session.OutDir != "shots" || cfg.Session.MaxCount != 3 {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
	if cfg.Session.Delay != time.Second || cfg.Session.StopOnThreeSame {
		t.Fatalf("unexpected delay/stop flags %+v", cfg.Session)
	}
	if cfg.Session.Key != "Right" {
		t.Fatalf("default key lost: %q", cfg.Session.Key)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Capture.Format = "gif"
	cfg.Capture.Quality = 0
	cfg.Session.MaxCount = -1
	cfg.Serve.Path = "channel"
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	cases := map[string]string{"": "info", " Warning ": "warn", "ERROR": "error", "debug": "debug"}
	for in, want := range cases {
		got, err := NormalizeLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeLogLevel(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeLogLevel("trace"); err == nil {
		t.Fatalf("expected error for trace")
	}
}

func TestDefaultLogFormatIsJSON(t *testing.T) {
	cfg := Default()
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected default log config %+v", cfg.Log)
	}
}

func TestBindWindowsAndSessionFormat(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.BindWindows(fs)
	if err := fs.Parse([]string{"-handles"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Windows.Handles {
		t.Fatalf("-handles not bound")
	}

	if cfg.Session.Format != "jpg" {
		t.Fatalf("default session format %q", cfg.Session.Format)
	}
	cfg.Session.Format = "png"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for session format png")
	}
}

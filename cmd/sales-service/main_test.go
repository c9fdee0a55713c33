package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger(t *testing.T) {
	prevLevel, prevFormatter := log.GetLevel(), log.StandardLogger().Formatter
	t.Cleanup(func() {
		log.SetLevel(prevLevel)
		log.SetFormatter(prevFormatter)
	})

	if err := setupLogger("debug", "json"); err != nil {
		t.Fatalf("setupLogger(debug, json): %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.StandardLogger().Formatter.(*log.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", log.StandardLogger().Formatter)
	}

	if err := setupLogger("warn", ""); err != nil {
		t.Fatalf("setupLogger(warn, empty): %v", err)
	}
	if _, ok := log.StandardLogger().Formatter.(*log.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", log.StandardLogger().Formatter)
	}
}

func TestSetupLogger_Invalid(t *testing.T) {
	if err := setupLogger("loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := setupLogger("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

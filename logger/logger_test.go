package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitWriterJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	InitWriter(&buf, "debug", "json")
	defer InitWriter(&bytes.Buffer{}, "info", "json")

	Stage("entities").WithField("collaborator", "tagger").Debug("fallback")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["stage"] != "entities" {
		t.Errorf("expected stage field, got %v", line["stage"])
	}
	if line["msg"] != "fallback" {
		t.Errorf("expected msg 'fallback', got %v", line["msg"])
	}
}

func TestInitWriterLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	InitWriter(&bytes.Buffer{}, "bogus", "text")
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level for unknown input, got %s", Log.GetLevel())
	}

	t.Setenv("LOG_LEVEL", "warn")
	InitWriter(&bytes.Buffer{}, "debug", "text")
	if Log.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected LOG_LEVEL to override, got %s", Log.GetLevel())
	}
}

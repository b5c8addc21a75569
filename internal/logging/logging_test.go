package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "not-a-level", "text")
	if logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %s, want warn", logger.GetLevel())
	}

	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", "JSON")
	logger.WithField("month", 3).Debug("paid off")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "paid off" {
		t.Errorf("msg = %v, want 'paid off'", entry["msg"])
	}
	if entry["month"] != float64(3) {
		t.Errorf("month = %v, want 3", entry["month"])
	}
}

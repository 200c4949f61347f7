package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestEntriesCarryServiceField(t *testing.T) {
	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(os.Stdout)

	WithField("image_ref", "site.jpg").Info("Inspection started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "solar-inspector" {
		t.Errorf("Expected service field, got %v", entry["service"])
	}
	if entry["image_ref"] != "site.jpg" {
		t.Errorf("Expected image_ref field, got %v", entry["image_ref"])
	}
	if entry["msg"] != "Inspection started" {
		t.Errorf("Expected message, got %v", entry["msg"])
	}
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(os.Stdout)

	Logger.SetLevel(logrus.InfoLevel)
	Debug("Should be suppressed at default level")
	if buf.Len() != 0 {
		t.Errorf("Expected no output for debug at info level, got %q", buf.String())
	}

	Info("Visible")
	if buf.Len() == 0 {
		t.Error("Expected info output at default level")
	}
}

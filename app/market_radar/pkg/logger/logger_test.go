package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetFormatter(&CustomFormatter{})

	l.Warn("search failed")

	got := buf.String()
	if !strings.Contains(got, "[WARN]") {
		t.Errorf("Format() = %q, want level WARN", got)
	}
	if !strings.HasSuffix(got, "search failed\n") {
		t.Errorf("Format() = %q, want message suffix", got)
	}
}

func TestCustomFormatter_SortedFields(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetFormatter(&CustomFormatter{})

	for i := 0; i < 5; i++ {
		buf.Reset()
		l.WithFields(logrus.Fields{"report_id": "r1", "industry": "fintech", "attempt": 2, "backend": "bing"}).Info("done")
		if got := buf.String(); !strings.HasSuffix(got, "done attempt=2 backend=bing industry=fintech report_id=r1\n") {
			t.Fatalf("Format() = %q, want fields sorted by key", got)
		}
	}
}

func TestKratosLogger(t *testing.T) {
	old := Log
	defer func() { Log = old }()

	var buf bytes.Buffer
	Log = logrus.New()
	Log.SetOutput(&buf)
	Log.SetFormatter(&CustomFormatter{})

	kl := NewKratosLogger()
	if err := kl.Log(log.LevelError, log.DefaultMessageKey, "boom", "path", "/analyze"); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "[ERRO]") || !strings.Contains(got, "boom") || !strings.Contains(got, "path=/analyze") {
		t.Errorf("Log() output = %q", got)
	}
}

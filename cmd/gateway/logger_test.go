package main

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		debug bool
		want  zapcore.Level
	}{
		{debug: false, want: zapcore.InfoLevel},
		{debug: true, want: zapcore.DebugLevel},
	}
	for _, tt := range tests {
		l, err := newLogger(tt.debug)
		if err != nil {
			t.Fatalf("newLogger(%v): %v", tt.debug, err)
		}
		if !l.Core().Enabled(tt.want) {
			t.Fatalf("debug=%v: level %v disabled", tt.debug, tt.want)
		}
		if tt.want == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("debug level enabled without debug flag")
		}
	}
}

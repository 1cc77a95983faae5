package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"quiet", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.debug, false)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			core := logger.Desugar().Core()
			if got := core.Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := core.Enabled(zapcore.WarnLevel); got != tt.wantWarn {
				t.Errorf("warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestLogger_DefaultIsNop(t *testing.T) {
	if Logger == nil {
		t.Fatal("Logger is nil before Init")
	}
	Logger.Infow("discarded", "key", "value")
}

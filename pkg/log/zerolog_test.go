package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
)

// TestZerologProviderJSONOutput tests that records reach the sink as JSON
// with the standard field names
func TestZerologProviderJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(LevelDebug, &buf)

	logger := provider.GetLoggerWithName("tune")
	logger.Info("grid search started", CandidatesKey, 12, WorkersKey, 3)

	out := buf.String()
	if out == "" {
		t.Fatal("Expected log output, got empty string")
	}

	if !strings.Contains(out, `"ml.component":"tune"`) {
		t.Errorf("Component field not found in output: %s", out)
	}

	if !strings.Contains(out, `"tune.candidates":12`) {
		t.Errorf("Candidates field not found in output: %s", out)
	}

	if !strings.Contains(out, `"message":"grid search started"`) {
		t.Errorf("Message not found in output: %s", out)
	}

	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("Level not found in output: %s", out)
	}
}

// TestZerologProviderLevels tests level filtering and SetLevel propagation
func TestZerologProviderLevels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(LevelWarn, &buf)
	logger := provider.GetLogger()
	ctx := context.Background()

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("Logger should not be enabled for Info at Warn level")
	}

	logger.Info("suppressed message")
	logger.Warn("visible warning")

	if strings.Contains(buf.String(), "suppressed message") {
		t.Error("Info message should be suppressed at Warn level")
	}

	if !strings.Contains(buf.String(), "visible warning") {
		t.Error("Warn message should appear at Warn level")
	}

	// SetLevel applies to loggers handed out before the call.
	provider.SetLevel(LevelDebug)

	if !logger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should be enabled for Debug after SetLevel")
	}

	logger.Debug("debug after set level")
	if !strings.Contains(buf.String(), "debug after set level") {
		t.Error("Debug message should appear after SetLevel(LevelDebug)")
	}
}

// TestZerologProviderWith tests contextual field chaining
func TestZerologProviderWith(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(LevelDebug, &buf)

	foldLogger := provider.GetLogger().With(FoldKey, 3, RepeatKey, 1)
	foldLogger.Info("fold scored", AccuracyKey, 0.91)

	out := buf.String()
	if !strings.Contains(out, `"cv.fold":3`) {
		t.Errorf("Fold field not found in output: %s", out)
	}

	if !strings.Contains(out, `"cv.repeat":1`) {
		t.Errorf("Repeat field not found in output: %s", out)
	}

	if !strings.Contains(out, `"metrics.accuracy":0.91`) {
		t.Errorf("Accuracy field not found in output: %s", out)
	}
}

// TestZerologProviderErrorFirst tests the error-first convention on Error
func TestZerologProviderErrorFirst(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(LevelDebug, &buf)

	err := fmt.Errorf("boosting diverged")
	provider.GetLogger().Error("fit failed", err, SamplesKey, 10)

	out := buf.String()
	if !strings.Contains(out, `"error":"boosting diverged"`) {
		t.Errorf("Error field not found in output: %s", out)
	}

	if !strings.Contains(out, `"data.samples":10`) {
		t.Errorf("Samples field not found in output: %s", out)
	}
}

// TestDefaultProviderSwap tests installing a custom package-level provider
func TestDefaultProviderSwap(t *testing.T) {
	old := DefaultProvider()
	defer SetDefaultProvider(old)

	provider, buffer := NewTestLoggerProvider(LevelDebug)
	SetDefaultProvider(provider)

	GetLoggerWithName("dataset").Info("rows loaded", SamplesKey, 100)

	if !strings.Contains(buffer.String(), "rows loaded") {
		t.Error("Message not routed through the swapped provider")
	}

	if !strings.Contains(buffer.String(), "dataset") {
		t.Error("Component name not routed through the swapped provider")
	}
}

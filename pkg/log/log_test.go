package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), "error_code", "TEST_ERROR")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) { // JSON numbers decode as float64
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("leading error should be recorded under the error key")
	}
	if !testLogger.ContainsField("error_code", "TEST_ERROR") {
		t.Error("fields after the error should be kept")
	}
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "RandomForestRegressor",
		ComponentKey, "ensemble",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "RandomForestRegressor") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "ensemble") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden debug")
	testLogger.Info("hidden info")
	testLogger.Warn("shown warn")

	if testLogger.ContainsMessage("hidden") {
		t.Error("records below the level must be dropped")
	}
	if !testLogger.ContainsMessage("shown warn") {
		t.Error("warn record missing")
	}
	if testLogger.Enabled(context.Background(), LevelInfo) {
		t.Error("info should not be enabled at warn level")
	}
}

func TestTestLoggerProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelInfo)

	provider.GetLoggerWithName("pipeline").Info("stage done", StageKey, "encode")
	if !provider.Logger().ContainsField(ComponentKey, "pipeline") {
		t.Error("named logger should tag the component")
	}

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("dropped")
	if provider.Logger().ContainsMessage("dropped") {
		t.Error("SetLevel should apply to existing loggers")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)
	logger := provider.GetLoggerWithName("metrics").With(ModelNameKey, "RandomForestRegressor")

	logger.Info("evaluated", R2ScoreKey, 0.97, SamplesKey, 20)
	logger.Error("failed", errors.NewValueError("Transform", "unknown label"), StageKey, "encode")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var info map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if info["message"] != "evaluated" || info[R2ScoreKey] != 0.97 || info[ComponentKey] != "metrics" {
		t.Errorf("unexpected info record: %v", info)
	}
	if info[ModelNameKey] != "RandomForestRegressor" {
		t.Errorf("With fields missing: %v", info)
	}

	var errRec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &errRec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.Contains(fmt.Sprint(errRec["error"]), "unknown label") {
		t.Errorf("error not attached: %v", errRec)
	}
	if errRec[StageKey] != "encode" {
		t.Errorf("stage field missing: %v", errRec)
	}
}

func TestZerologProviderSetLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	provider.GetLogger().Debug("invisible")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level: %q", buf.String())
	}
	if provider.GetLogger().Enabled(context.Background(), LevelDebug) {
		t.Error("debug should not be enabled")
	}

	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug should be emitted after SetLevel")
	}
}

func TestZerologLoggerNonFiniteFloats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()
	logger.Warn("Ill-conditioned design matrix", "condition", math.Inf(1), R2ScoreKey, math.NaN())

	out := buf.String()
	if strings.Contains(out, "marshaling error") {
		t.Fatalf("non-finite floats should encode cleanly: %s", out)
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not valid JSON: %v (%s)", err, out)
	}
	if rec["condition"] != "+Inf" {
		t.Errorf("condition = %v, want +Inf", rec["condition"])
	}
	if rec[R2ScoreKey] != "NaN" {
		t.Errorf("%s = %v, want NaN", R2ScoreKey, rec[R2ScoreKey])
	}
}

func TestTestLoggerNonFiniteFloats(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	logger.Info("Model evaluated", MAPEKey, math.NaN(), "condition", math.Inf(-1))

	if !logger.ContainsMessage("Model evaluated") {
		t.Fatal("entry with non-finite fields was dropped")
	}
	if !logger.ContainsField(MAPEKey, "NaN") || !logger.ContainsField("condition", "-Inf") {
		t.Error("non-finite floats should be recorded as strings")
	}
}

func TestSetupLogger(t *testing.T) {
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))
	defer errors.SetZerologWarnFunc(nil)

	var buf bytes.Buffer
	if err := SetupLogger("debug", FormatJSON, &buf); err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	GetLoggerWithName("test").Debug("hello")
	errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "zero variance", 0))

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Error("global logger should write to the configured writer")
	}
	if !strings.Contains(out, "UndefinedMetricWarning") && !strings.Contains(out, "ill-defined") {
		t.Errorf("warnings should be routed to zerolog: %q", out)
	}

	if err := SetupLogger("verbose", FormatJSON, &buf); err == nil {
		t.Error("invalid level should fail")
	}
	if err := SetupLogger("info", "xml", &buf); err == nil {
		t.Error("invalid format should fail")
	}
}

func TestExtractStacktrace(t *testing.T) {
	err := errors.NewModelError("Fit", "boom", nil)
	if extractStacktrace(err) == "" {
		t.Error("expected a stack trace from a cockroachdb error")
	}
	if extractStacktrace(fmt.Errorf("plain")) != "" {
		t.Error("plain errors carry no stack")
	}
}

// TestConcurrentLogging ensures TestLogger is safe for concurrent use
func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			testLogger.With(EstimatorIDKey, id).Info("tree fitted")
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries() error = %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 entries, got %d", len(entries))
	}
}

func BenchmarkLogging(b *testing.B) {
	logger := NewZerologProvider(&bytes.Buffer{}, LevelInfo).GetLogger()
	for i := 0; i < b.N; i++ {
		logger.Info("bench", SamplesKey, i)
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/soltixdb/trendscope/internal/analytics"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"field":  "Values",
		"reason": "validation failed",
	}

	err := NewServiceErrorWithDetails(CodeInvalidRequest, "Validation failed", details)

	if err.Code != CodeInvalidRequest {
		t.Errorf("Expected code %s, got '%s'", CodeInvalidRequest, err.Code)
	}
	if err.Details["field"] != "Values" {
		t.Errorf("Expected field 'Values', got '%v'", err.Details["field"])
	}
}

func TestServiceError_JSON(t *testing.T) {
	err := &ServiceError{Code: CodeSourceFailed, Message: "influx down", Err: errors.New("dial tcp")}

	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("Failed to marshal: %v", jerr)
	}
	if strings.Contains(string(data), "dial tcp") {
		t.Errorf("wrapped error must not be serialized: %s", data)
	}
	if !strings.Contains(string(data), `"code":"SOURCE_FAILED"`) {
		t.Errorf("Expected code in JSON, got %s", data)
	}
}

func TestClassify(t *testing.T) {
	malformed := &analytics.MalformedRowError{Row: 4, Field: "Values", Raw: "x", Err: errors.New("bad")}
	invalidWindow := &analytics.InvalidWindowError{Window: -1}
	existing := NewServiceError(CodeInvalidPredicate, "bad op")

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"malformed row", fmt.Errorf("load: %w", malformed), CodeMalformedRow},
		{"invalid window", fmt.Errorf("moving average: %w", invalidWindow), CodeInvalidWindow},
		{"already classified", existing, CodeInvalidPredicate},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), CodeCanceled},
		{"other", errors.New("connection refused"), CodeSourceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := classify(tt.err, CodeSourceFailed)
			if se.Code != tt.wantCode {
				t.Errorf("classify() code = %s, want %s", se.Code, tt.wantCode)
			}
		})
	}

	se := classify(malformed, CodeAnalysisFailed)
	if se.Details["row"] != 4 {
		t.Errorf("Expected row detail 4, got %v", se.Details["row"])
	}
	if !errors.Is(se, analytics.ErrMalformedRow) {
		t.Error("classified error should still match ErrMalformedRow")
	}

	if classify(nil, CodeAnalysisFailed) != nil {
		t.Error("classify(nil) should be nil")
	}
}

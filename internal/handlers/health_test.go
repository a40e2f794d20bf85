package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/models"
)

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]func() error
		wantStatus string
	}{
		{"no checks", nil, "healthy"},
		{"passing check", map[string]func() error{"cache": func() error { return nil }}, "healthy"},
		{"failing check", map[string]func() error{"cache": func() error { return errors.New("redis down") }}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(logging.Nop(), nil, tt.checks)

			app := fiber.New()
			app.Get("/health", handler.Health)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
			if err != nil {
				t.Fatalf("Failed to perform request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Errorf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read response body: %v", err)
			}

			var healthResp models.HealthResponse
			if err := json.Unmarshal(body, &healthResp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}

			if healthResp.Status != tt.wantStatus {
				t.Errorf("Expected status '%s', got '%s'", tt.wantStatus, healthResp.Status)
			}
			if healthResp.Version != Version {
				t.Errorf("Expected version '%s', got '%s'", Version, healthResp.Version)
			}
		})
	}
}

func TestHandler_NotFound(t *testing.T) {
	handler := New(logging.Nop(), nil, nil)

	app := fiber.New()
	app.Use(handler.NotFound)

	resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status %d, got %d", fiber.StatusNotFound, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if errResp.Error.Code != "NOT_FOUND" || errResp.Error.Path != "/nonexistent" {
		t.Errorf("unexpected error body: %+v", errResp.Error)
	}
}

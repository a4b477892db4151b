package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go-vision-gateway/internal/config"
	"go-vision-gateway/internal/logger"
	"go-vision-gateway/internal/observer"
	"go-vision-gateway/internal/repository"
	"go-vision-gateway/internal/service"
	"go-vision-gateway/internal/vision"
	"go-vision-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeProvider struct {
	description *models.ImageDescription
	analysis    *models.ImageAnalysis
	err         error
	calls       int
}

func (p *fakeProvider) DescribeImage(context.Context, string, *vision.DescribeOptions) (*models.ImageDescription, error) {
	p.calls++
	return p.description, p.err
}

func (p *fakeProvider) AnalyzeImage(context.Context, string, *vision.AnalyzeOptions) (*models.ImageAnalysis, error) {
	p.calls++
	return p.analysis, p.err
}

func newTestHandler(t *testing.T, provider vision.Provider) http.Handler {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher(log)
	publisher.Subscribe(metrics)

	svc := service.NewGatewayService(repository.NewURLImageRepository(nil, nil), provider, publisher, log)
	cfg := &config.Config{
		MaxRequestBodySize: 1 << 20,
		CORSAllowedOrigins: []string{"*"},
	}

	handler, err := NewHandler(svc, metrics, cfg)
	if err != nil {
		t.Fatalf("Failed to build handler: %v", err)
	}
	return handler
}

func post(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAnalysisEndpoints_BadRequest(t *testing.T) {
	bodies := map[string]string{
		"no body":     "",
		"empty":       `{}`,
		"null url":    `{"url":null}`,
		"blank url":   `{"url":"   "}`,
		"null body":   `null`,
		"not json":    `url=https://example.com/a.jpg`,
		"numeric url": `{"url":42}`,
	}

	for _, rt := range analysisRoutes {
		for name, body := range bodies {
			t.Run(rt.path+"/"+name, func(t *testing.T) {
				provider := &fakeProvider{}
				handler := newTestHandler(t, provider)

				w := post(handler, rt.path, body)

				if w.Code != http.StatusBadRequest {
					t.Errorf("Expected status 400, got %d", w.Code)
				}
				if got := strings.TrimSpace(w.Body.String()); got != `"Bad request"` {
					t.Errorf(`Expected body "Bad request", got %s`, got)
				}
				if provider.calls != 0 {
					t.Errorf("Expected no provider call, got %d", provider.calls)
				}
			})
		}
	}
}

func TestDescribeEndpoint_Success(t *testing.T) {
	provider := &fakeProvider{description: &models.ImageDescription{}}
	provider.description.Description.Captions = []models.Caption{
		{Text: "a dog sitting on grass", Confidence: 0.87},
		{Text: "a dog", Confidence: 0.95},
	}
	handler := newTestHandler(t, provider)

	w := post(handler, "/imageDescription", `{"url":"https://example.com/dog.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var caption models.Caption
	if err := json.Unmarshal(w.Body.Bytes(), &caption); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if caption.Text != "a dog sitting on grass" || caption.Confidence != 0.87 {
		t.Errorf("Expected the first caption, got %+v", caption)
	}
}

func TestCategoryEndpoint_Success(t *testing.T) {
	provider := &fakeProvider{analysis: &models.ImageAnalysis{
		Categories: []models.Category{
			{Name: "outdoor_grass", Score: 0.3},
			{Name: "animal_dog", Score: 0.9},
		},
	}}
	handler := newTestHandler(t, provider)

	w := post(handler, "/imageCategory", `{"url":"https://example.com/dog.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var categories []models.Category
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "outdoor_grass" || categories[1].Name != "animal_dog" {
		t.Errorf("Expected provider order, got %+v", categories)
	}
}

func TestTagsEndpoint_EmptyList(t *testing.T) {
	provider := &fakeProvider{analysis: &models.ImageAnalysis{}}
	handler := newTestHandler(t, provider)

	w := post(handler, "/imageTags", `{"url":"https://example.com/blank.png"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("Expected an empty JSON array, got %s", got)
	}
}

func TestAnalysisEndpoints_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        &vision.APIError{StatusCode: 404, Code: "InvalidImageUrl", Message: "Image URL is not accessible."},
			wantStatus: http.StatusNotFound,
			wantCode:   "InvalidImageUrl",
		},
		{
			name:       "unauthorized",
			err:        &vision.APIError{StatusCode: 401, Code: "401", Message: "Access denied"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "401",
		},
		{
			name:       "no status code",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeProvider{err: tt.err})

			w := post(handler, "/imageTags", `{"url":"https://example.com/missing.jpg"}`)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if resp.Error.StatusCode != tt.wantStatus {
				t.Errorf("Expected statusCode %d in body, got %d", tt.wantStatus, resp.Error.StatusCode)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, resp.Error.Code)
			}
			if resp.Error.Message == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{})

	w := get(handler, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "available" || resp.Version != Version {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	provider := &fakeProvider{analysis: &models.ImageAnalysis{}}
	handler := newTestHandler(t, provider)

	post(handler, "/imageTags", `{"url":"https://example.com/a.jpg"}`)
	post(handler, "/imageTags", `{"url":"https://example.com/b.jpg"}`)

	w := get(handler, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var snapshot map[string]observer.OperationStats
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got := snapshot[service.OperationTag]; got.Total != 2 || got.Succeeded != 2 {
		t.Errorf("Unexpected tag metrics: %+v", got)
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{analysis: &models.ImageAnalysis{}})

	req := httptest.NewRequest(http.MethodPost, "/imageTags", strings.NewReader(`{"url":"https://example.com/a.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.example.org")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{})

	w := get(handler, "/health")
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected caller request id to be echoed, got %q", got)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	provider := &fakeProvider{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := service.NewGatewayService(repository.NewURLImageRepository(nil, nil), provider, nil, log)

	handler, err := NewHandler(svc, nil, &config.Config{MaxRequestBodySize: 16})
	if err != nil {
		t.Fatalf("Failed to build handler: %v", err)
	}

	w := post(handler, "/imageTags", `{"url":"https://example.com/a-rather-long-name.jpg"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for oversized body, got %d", w.Code)
	}
	if provider.calls != 0 {
		t.Error("Expected no provider call for oversized body")
	}
}

func TestDocs(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{})

	w := get(handler, "/docs/openapi.json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for API document, got %d", w.Code)
	}
	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to decode API document: %v", err)
	}
	if doc.OpenAPI == "" || len(doc.Paths) != 3 {
		t.Errorf("Unexpected API document: openapi=%q paths=%d", doc.OpenAPI, len(doc.Paths))
	}

	w = get(handler, "/docs/")
	if w.Code != http.StatusMovedPermanently || w.Header().Get("Location") != docsIndexPath {
		t.Errorf("Expected redirect to %s, got %d %q", docsIndexPath, w.Code, w.Header().Get("Location"))
	}

	w = get(handler, docsIndexPath)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for docs page, got %d", w.Code)
	}
}

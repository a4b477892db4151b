package container

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-vision-gateway/internal/config"
	"go-vision-gateway/internal/logger"
	"go-vision-gateway/internal/vision"
	"go-vision-gateway/pkg/models"

	"github.com/gin-gonic/gin"
)

type stubProvider struct {
	lastURL string
}

func (p *stubProvider) DescribeImage(_ context.Context, imageURL string, _ *vision.DescribeOptions) (*models.ImageDescription, error) {
	p.lastURL = imageURL
	d := &models.ImageDescription{}
	d.Description.Captions = []models.Caption{{Text: "a cat", Confidence: 0.8}}
	return d, nil
}

func (p *stubProvider) AnalyzeImage(_ context.Context, imageURL string, _ *vision.AnalyzeOptions) (*models.ImageAnalysis, error) {
	p.lastURL = imageURL
	return &models.ImageAnalysis{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "3000",
		RequestTimeout:     time.Second,
		MaxRequestBodySize: 1 << 20,
		CORSAllowedOrigins: []string{"*"},
		Vision: config.VisionConfig{
			Endpoint:      "https://westeurope.api.cognitive.microsoft.com",
			Key:           "test-key",
			Language:      "en",
			MaxCandidates: 1,
		},
		Storage: config.StorageConfig{SASExpiry: 15 * time.Minute},
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Logger.SetOutput(io.Discard)
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Expected container, got %v", err)
	}
	if c.Handler() == nil || c.Service() == nil || c.Metrics() == nil {
		t.Error("Expected all dependencies to be built")
	}
	if _, ok := c.provider.(*vision.Client); !ok {
		t.Errorf("Expected the Azure vision client, got %T", c.provider)
	}
}

func TestNewContainer_MissingEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Vision.Endpoint = ""

	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected an error without a provider endpoint")
	}
}

func TestContainer_SignsStorageURLs(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.AccountName = "acct"
	cfg.Storage.AccountKey = base64.StdEncoding.EncodeToString([]byte("storage-key"))

	provider := &stubProvider{}
	c, err := newContainer(cfg, provider)
	if err != nil {
		t.Fatalf("Expected container, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/imageDescription",
		strings.NewReader(`{"url":"https://acct.blob.core.windows.net/photos/cat.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(provider.lastURL, "sig=") {
		t.Errorf("Expected a signed URL to reach the provider, got %s", provider.lastURL)
	}
	if got := c.Metrics().GetMetrics()["describe"]; got.Succeeded != 1 {
		t.Errorf("Expected the request to be counted, got %+v", got)
	}
}

func TestContainer_AllowlistRejectsHost(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedImageHosts = []string{"images.example.com"}

	provider := &stubProvider{}
	c, err := newContainer(cfg, provider)
	if err != nil {
		t.Fatalf("Expected container, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/imageTags",
		strings.NewReader(`{"url":"https://other.example.com/cat.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if provider.lastURL != "" {
		t.Error("Expected no provider call for a disallowed host")
	}
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-vision-gateway/internal/config"
	apperrors "go-vision-gateway/internal/errors"
	"go-vision-gateway/internal/logger"
	"go-vision-gateway/internal/observer"
	"go-vision-gateway/internal/service"
	"go-vision-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint and the API document
const Version = "1.0.0"

// NewHandler builds the gin engine serving the gateway API
func NewHandler(svc service.GatewayService, metrics *observer.MetricsObserver, cfg *config.Config) (http.Handler, error) {
	doc, err := NewOpenAPIDocument()
	if err != nil {
		return nil, err
	}
	apiDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode API document: %w", err)
	}

	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestID(),
		accessLogger(),
		corsMiddleware(cfg.CORSAllowedOrigins),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	// Configure routes
	for _, rt := range analysisRoutes {
		r.Handle(rt.method, rt.path, rt.handle(svc))
	}
	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsSnapshot(metrics))
	r.GET("/docs/*any", docsHandler(apiDoc))

	return r, nil
}

// analyze binds the request body, runs call and writes its result as JSON
func analyze[T any](operation string, call func(ctx context.Context, imageURL string) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, operation, err)
			return
		}
		if req.URL == nil || strings.TrimSpace(*req.URL) == "" {
			badRequest(c, operation, errors.New("url is required"))
			return
		}

		result, err := call(c.Request.Context(), *req.URL)
		if err != nil {
			respondError(c, operation, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsSnapshot(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, map[string]observer.OperationStats{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func badRequest(c *gin.Context, operation string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"operation":  operation,
		"request_id": c.GetString(requestIDKey),
		"ip":         c.ClientIP(),
	}).Warn("Invalid request")

	c.AbortWithStatusJSON(http.StatusBadRequest, models.BadRequestBody)
}

// respondError writes invalid requests as "Bad request" and everything else
// as {"error": {...}} under the error's status code
func respondError(c *gin.Context, operation string, err error) {
	if apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest) {
		badRequest(c, operation, err)
		return
	}

	code := apperrors.GetStatusCode(err)
	body := models.ProviderErrorBody{
		Message:    err.Error(),
		StatusCode: code,
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.Code
		body.Message = appErr.Message
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"operation":   operation,
		"status_code": code,
		"request_id":  c.GetString(requestIDKey),
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{Error: body})
}

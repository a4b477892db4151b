package container

import (
	"fmt"
	"net/http"

	"go-vision-gateway/internal/config"
	"go-vision-gateway/internal/logger"
	"go-vision-gateway/internal/observer"
	"go-vision-gateway/internal/repository"
	"go-vision-gateway/internal/service"
	"go-vision-gateway/internal/storage"
	"go-vision-gateway/internal/transport"
	"go-vision-gateway/internal/vision"
	"go-vision-gateway/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	provider        vision.Provider
	urlSigner       storage.URLSigner
	imageRepository repository.ImageRepository
	metrics         *observer.MetricsObserver
	gatewayService  service.GatewayService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	provider, err := vision.NewClient(cfg.Vision.Endpoint, cfg.Vision.Key, &vision.ClientOptions{
		Language:      cfg.Vision.Language,
		MaxCandidates: cfg.Vision.MaxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return newContainer(cfg, provider)
}

// newContainer builds the graph around an existing provider
func newContainer(cfg *config.Config, provider vision.Provider) (*Container, error) {
	urlSigner, err := newURLSigner(cfg.Storage)
	if err != nil {
		return nil, err
	}

	validator := validation.NewURLValidatorWithOptions(cfg.AllowedURLSchemes, cfg.AllowedImageHosts)
	imageRepository := repository.NewURLImageRepository(validator, urlSigner)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher(logger.Logger)
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	gatewayService := service.NewGatewayService(imageRepository, provider, events, logger.Logger)
	handler, err := transport.NewHandler(gatewayService, metrics, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	return &Container{
		config:          cfg,
		provider:        provider,
		urlSigner:       urlSigner,
		imageRepository: imageRepository,
		metrics:         metrics,
		gatewayService:  gatewayService,
		handler:         handler,
	}, nil
}

func newURLSigner(cfg config.StorageConfig) (storage.URLSigner, error) {
	if !cfg.Enabled() {
		return storage.NewPassthroughSigner(), nil
	}

	signer, err := storage.NewAzureBlobSigner(cfg.AccountName, cfg.AccountKey, cfg.Containers, cfg.SASExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob signer: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"account":    cfg.AccountName,
		"containers": cfg.Containers,
	}).Info("Blob URL signing enabled")
	return signer, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the gateway service
func (c *Container) Service() service.GatewayService {
	return c.gatewayService
}

// Metrics returns the request metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "go-vision-gateway/internal/errors"
	"go-vision-gateway/internal/observer"
	"go-vision-gateway/internal/repository"
	"go-vision-gateway/internal/vision"
	"go-vision-gateway/pkg/models"

	"github.com/sirupsen/logrus"
)

// Operation names used in logs and metrics
const (
	OperationDescribe   = "describe"
	OperationCategorize = "categorize"
	OperationTag        = "tag"
)

// GatewayService forwards image analysis requests to the vision provider
type GatewayService interface {
	// DescribeImage returns the provider's top-ranked caption for the image
	DescribeImage(ctx context.Context, imageURL string) (*models.Caption, error)

	// CategorizeImage returns the image categories in provider order
	CategorizeImage(ctx context.Context, imageURL string) ([]models.Category, error)

	// TagImage returns the image tags in provider order
	TagImage(ctx context.Context, imageURL string) ([]models.Tag, error)
}

// gatewayService implements GatewayService with a single provider
type gatewayService struct {
	imageRepo repository.ImageRepository
	provider  vision.Provider
	events    observer.Subject
	log       *logrus.Logger
}

// NewGatewayService creates a new gateway service
func NewGatewayService(
	imageRepository repository.ImageRepository,
	provider vision.Provider,
	events observer.Subject,
	log *logrus.Logger,
) GatewayService {
	if events == nil {
		events = observer.NewEventPublisher(log)
	}
	return &gatewayService{
		imageRepo: imageRepository,
		provider:  provider,
		events:    events,
		log:       log,
	}
}

// DescribeImage takes the first caption of the describe result; the provider
// already ranks captions, so no re-sorting happens here.
func (s *gatewayService) DescribeImage(ctx context.Context, imageURL string) (*models.Caption, error) {
	done := s.track(ctx, OperationDescribe, imageURL)

	resolved, err := s.prepare(ctx, imageURL)
	if err != nil {
		return nil, done(err)
	}

	s.entry(OperationDescribe, imageURL).Info("Analyzing URL image to describe...")

	description, err := s.provider.DescribeImage(ctx, resolved, nil)
	if err != nil {
		return nil, done(providerError(err))
	}

	var captions []models.Caption
	if description != nil {
		captions = description.Description.Captions
	}
	if len(captions) == 0 {
		return nil, done(apperrors.NewProviderError(http.StatusBadGateway, "NoCaption", "provider returned no captions", nil))
	}
	caption := captions[0]

	s.entry(OperationDescribe, imageURL).Info(FormatCaption(caption))
	done(nil)
	return &caption, nil
}

// CategorizeImage returns categories unmodified; only the log summary is sorted.
func (s *gatewayService) CategorizeImage(ctx context.Context, imageURL string) ([]models.Category, error) {
	done := s.track(ctx, OperationCategorize, imageURL)

	resolved, err := s.prepare(ctx, imageURL)
	if err != nil {
		return nil, done(err)
	}

	s.entry(OperationCategorize, imageURL).Info("Analyzing category in image...")

	analysis, err := s.provider.AnalyzeImage(ctx, resolved, &vision.AnalyzeOptions{
		VisualFeatures: []vision.VisualFeature{vision.FeatureCategories},
	})
	if err != nil {
		return nil, done(providerError(err))
	}

	var categories []models.Category
	if analysis != nil {
		categories = analysis.Categories
	}
	if categories == nil {
		categories = []models.Category{}
	}

	s.entry(OperationCategorize, imageURL).Info("Categories: " + FormatCategories(categories))
	done(nil)
	return categories, nil
}

// TagImage requests the Tags feature only.
func (s *gatewayService) TagImage(ctx context.Context, imageURL string) ([]models.Tag, error) {
	done := s.track(ctx, OperationTag, imageURL)

	resolved, err := s.prepare(ctx, imageURL)
	if err != nil {
		return nil, done(err)
	}

	s.entry(OperationTag, imageURL).Info("Analyzing tags in image...")

	analysis, err := s.provider.AnalyzeImage(ctx, resolved, &vision.AnalyzeOptions{
		VisualFeatures: []vision.VisualFeature{vision.FeatureTags},
	})
	if err != nil {
		return nil, done(providerError(err))
	}

	var tags []models.Tag
	if analysis != nil {
		tags = analysis.Tags
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	s.entry(OperationTag, imageURL).Info("Tags: " + FormatTags(tags))
	done(nil)
	return tags, nil
}

// prepare validates imageURL and returns the URL handed to the provider
func (s *gatewayService) prepare(ctx context.Context, imageURL string) (string, error) {
	if err := s.imageRepo.ValidateImageURL(imageURL); err != nil {
		return "", apperrors.NewInvalidRequestError("invalid image URL", err)
	}

	resolved, err := s.imageRepo.ResolveImageURL(ctx, imageURL)
	if err != nil {
		return "", apperrors.NewInternalError("failed to resolve image URL", err)
	}
	return resolved, nil
}

// track publishes the started event and returns a func that publishes the
// outcome and passes err through.
func (s *gatewayService) track(ctx context.Context, operation, imageURL string) func(err error) error {
	start := time.Now()
	imageURL = RedactURL(imageURL)
	s.events.NotifyObservers(ctx, observer.GatewayEvent{
		EventType: observer.RequestStarted,
		Operation: operation,
		ImageURL:  imageURL,
	})

	return func(err error) error {
		event := observer.GatewayEvent{
			EventType:      observer.RequestCompleted,
			Operation:      operation,
			ImageURL:       imageURL,
			ProcessingTime: time.Since(start),
		}
		if err != nil {
			event.EventType = observer.RequestFailed
			event.StatusCode = apperrors.GetStatusCode(err)
			event.ErrorMessage = err.Error()
		}
		s.events.NotifyObservers(ctx, event)
		return err
	}
}

// entry logs under the file name only
func (s *gatewayService) entry(operation, imageURL string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"operation": operation,
		"image":     ImageName(imageURL),
	})
}

// providerError maps a provider failure to an AppError carrying the
// provider's status code, or 500 when it reported none
func providerError(err error) *apperrors.AppError {
	var apiErr *vision.APIError
	if errors.As(err, &apiErr) {
		return apperrors.NewProviderError(apiErr.StatusCode, apiErr.Code, apiErr.Message, err)
	}
	return apperrors.NewProviderError(0, "", fmt.Sprintf("provider call failed: %v", err), err)
}

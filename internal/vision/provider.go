package vision

import (
	"context"

	"go-vision-gateway/pkg/models"
)

// VisualFeature selects which parts of an analysis the provider returns
type VisualFeature string

const (
	FeatureCategories  VisualFeature = "Categories"
	FeatureTags        VisualFeature = "Tags"
	FeatureDescription VisualFeature = "Description"
)

// Provider is the external vision-analysis service. The Azure client is the
// production implementation; tests substitute fakes.
type Provider interface {
	// DescribeImage returns captions for the image at imageURL, ranked by
	// confidence with the best caption first.
	DescribeImage(ctx context.Context, imageURL string, options *DescribeOptions) (*models.ImageDescription, error)

	// AnalyzeImage returns the requested visual features for the image at imageURL.
	AnalyzeImage(ctx context.Context, imageURL string, options *AnalyzeOptions) (*models.ImageAnalysis, error)
}

// DescribeOptions contains the optional parameters for DescribeImage
type DescribeOptions struct {
	// MaxCandidates is the number of captions to return; zero uses the client default
	MaxCandidates int
	// Language overrides the client language
	Language string
}

// AnalyzeOptions contains the optional parameters for AnalyzeImage
type AnalyzeOptions struct {
	// VisualFeatures lists the features to compute; empty leaves the choice to the provider
	VisualFeatures []VisualFeature
	// Language overrides the client language
	Language string
}

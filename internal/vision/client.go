package vision

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"go-vision-gateway/pkg/models"
)

const (
	moduleName    = "go-vision-gateway/vision"
	moduleVersion = "v1.0.0"

	apiVersionPath        = "vision/v3.2"
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
)

// ClientOptions configures the Computer Vision client
type ClientOptions struct {
	azcore.ClientOptions

	// Language of captions and tags, e.g. "en"
	Language string
	// MaxCandidates is the default number of captions requested by DescribeImage
	MaxCandidates int
}

// Client calls the Azure Computer Vision REST API. It is safe for concurrent
// use and is meant to be created once per process.
type Client struct {
	endpoint      string
	pl            runtime.Pipeline
	language      string
	maxCandidates int
}

var _ Provider = (*Client)(nil)

// NewClient creates a client for the Computer Vision resource at endpoint,
// authenticated with a subscription key. Failed calls are never retried.
func NewClient(endpoint, key string, options *ClientOptions) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("vision endpoint is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("vision subscription key is required")
	}
	if options == nil {
		options = &ClientOptions{}
	}

	clientOptions := options.ClientOptions
	clientOptions.Retry.MaxRetries = -1

	keyPolicy := runtime.NewKeyCredentialPolicy(
		azcore.NewKeyCredential(key),
		subscriptionKeyHeader,
		&runtime.KeyCredentialPolicyOptions{
			InsecureAllowCredentialWithHTTP: clientOptions.InsecureAllowCredentialWithHTTP,
		},
	)

	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry:               []policy.Policy{keyPolicy},
		AllowedQueryParameters: []string{"visualFeatures", "maxCandidates", "language"},
	}, &clientOptions)

	maxCandidates := options.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 1
	}

	return &Client{
		endpoint:      endpoint,
		pl:            pl,
		language:      options.Language,
		maxCandidates: maxCandidates,
	}, nil
}

// DescribeImage calls the describe operation for a remote image
func (c *Client) DescribeImage(ctx context.Context, imageURL string, options *DescribeOptions) (*models.ImageDescription, error) {
	if options == nil {
		options = &DescribeOptions{}
	}
	maxCandidates := options.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = c.maxCandidates
	}

	query := map[string]string{
		"maxCandidates": strconv.Itoa(maxCandidates),
		"language":      c.languageOr(options.Language),
	}

	var result models.ImageDescription
	if err := c.post(ctx, "describe", query, imageURL, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeImage calls the analyze operation for a remote image
func (c *Client) AnalyzeImage(ctx context.Context, imageURL string, options *AnalyzeOptions) (*models.ImageAnalysis, error) {
	if options == nil {
		options = &AnalyzeOptions{}
	}

	query := map[string]string{
		"language": c.languageOr(options.Language),
	}
	if len(options.VisualFeatures) > 0 {
		features := make([]string, len(options.VisualFeatures))
		for i, f := range options.VisualFeatures {
			features[i] = string(f)
		}
		query["visualFeatures"] = strings.Join(features, ",")
	}

	var result models.ImageAnalysis
	if err := c.post(ctx, "analyze", query, imageURL, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) languageOr(language string) string {
	if language != "" {
		return language
	}
	return c.language
}

type imageURLBody struct {
	URL string `json:"url"`
}

func (c *Client) post(ctx context.Context, operation string, query map[string]string, imageURL string, out any) error {
	req, err := runtime.NewRequest(ctx, http.MethodPost, runtime.JoinPaths(c.endpoint, apiVersionPath, operation))
	if err != nil {
		return err
	}

	params := req.Raw().URL.Query()
	for k, v := range query {
		if v != "" {
			params.Set(k, v)
		}
	}
	req.Raw().URL.RawQuery = params.Encode()
	req.Raw().Header.Set("Accept", "application/json")

	if err := runtime.MarshalAsJSON(req, imageURLBody{URL: imageURL}); err != nil {
		return err
	}

	resp, err := c.pl.Do(req)
	if err != nil {
		return err
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return newAPIError(resp)
	}
	if err := runtime.UnmarshalAsJSON(resp, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

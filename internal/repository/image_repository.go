package repository

import (
	"context"
	"fmt"

	"go-vision-gateway/internal/storage"
	"go-vision-gateway/pkg/validation"
)

// URLImageRepository implements ImageRepository for remote image URLs
type URLImageRepository struct {
	validator *validation.URLValidator
	signer    storage.URLSigner
}

// NewURLImageRepository creates a new URL-based image repository
func NewURLImageRepository(validator *validation.URLValidator, signer storage.URLSigner) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	if signer == nil {
		signer = storage.NewPassthroughSigner()
	}
	return &URLImageRepository{
		validator: validator,
		signer:    signer,
	}
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *URLImageRepository) ValidateImageURL(imageURL string) error {
	if err := r.validator.ValidateImageURL(imageURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}
	return nil
}

// ResolveImageURL returns the URL handed to the provider
func (r *URLImageRepository) ResolveImageURL(ctx context.Context, imageURL string) (string, error) {
	resolved, err := r.signer.SignURL(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	return resolved, nil
}

package repository

import "context"

// ImageRepository locates the images handed to the vision provider
type ImageRepository interface {
	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// ResolveImageURL returns the URL the provider should fetch, e.g. with
	// read access granted for private blobs
	ResolveImageURL(ctx context.Context, imageURL string) (string, error)
}

package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageUnavailable indicates the image URL could not be made readable
	ErrImageUnavailable = errors.New("image unavailable")
)

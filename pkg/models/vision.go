package models

import "encoding/json"

// Caption is a natural-language description of an image
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Category is a coarse classification label for an image.
// Detail carries celebrity/landmark data verbatim when the provider sends it.
type Category struct {
	Name   string          `json:"name"`
	Score  float64         `json:"score"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Tag is a keyword describing image content
type Tag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Hint       string  `json:"hint,omitempty"`
}

// ImageMetadata is the provider's view of the analyzed image
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ImageDescription is the provider response of the describe capability
type ImageDescription struct {
	Description struct {
		Tags     []string  `json:"tags"`
		Captions []Caption `json:"captions"`
	} `json:"description"`
	RequestID    string         `json:"requestId"`
	ModelVersion string         `json:"modelVersion,omitempty"`
	Metadata     *ImageMetadata `json:"metadata,omitempty"`
}

// ImageAnalysis is the provider response of the analyze capability.
// Only the requested visual features are populated.
type ImageAnalysis struct {
	Categories   []Category     `json:"categories,omitempty"`
	Tags         []Tag          `json:"tags,omitempty"`
	RequestID    string         `json:"requestId"`
	ModelVersion string         `json:"modelVersion,omitempty"`
	Metadata     *ImageMetadata `json:"metadata,omitempty"`
}

package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"go-vision-gateway/pkg/models"
)

// ImageName returns the part of imageURL after the last slash, without query
func ImageName(imageURL string) string {
	name := RedactURL(imageURL)
	return name[strings.LastIndex(name, "/")+1:]
}

// RedactURL drops the query string, which may hold a SAS token
func RedactURL(imageURL string) string {
	if i := strings.IndexByte(imageURL, '?'); i >= 0 {
		return imageURL[:i]
	}
	return imageURL
}

// FormatCaption renders a caption for logging
func FormatCaption(caption models.Caption) string {
	return fmt.Sprintf("This may be %s (%.2f confidence)", caption.Text, caption.Confidence)
}

// FormatCategories renders categories by descending score. The input slice
// is left in its original order.
func FormatCategories(categories []models.Category) string {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b models.Category) int {
		return cmp.Compare(b.Score, a.Score)
	})

	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = fmt.Sprintf("%s (%.2f)", c.Name, c.Score)
	}
	return strings.Join(parts, ", ")
}

// FormatTags renders tags in the order given
func FormatTags(tags []models.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf("%s (%.2f)", t.Name, t.Confidence)
	}
	return strings.Join(parts, ", ")
}

package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// NewOpenAPIDocument describes the analysis routes as an OpenAPI 3 document
func NewOpenAPIDocument() (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Vision Gateway API",
			Description: "Describe, categorize and tag images by URL using Azure Computer Vision.",
			Version:     Version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, rt := range analysisRoutes {
		op := openapi3.NewOperation()
		op.OperationID = rt.operationID
		op.Summary = rt.summary
		op.Description = rt.description
		op.Tags = []string{"analysis"}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(analysisRequestSchema()),
		}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Provider result").
					WithJSONSchema(rt.response()),
			}),
			openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Missing or malformed body").
					WithJSONSchema(openapi3.NewStringSchema().WithEnum("Bad request")),
			}),
			openapi3.WithName("default", openapi3.NewResponse().
				WithDescription("Provider failure, returned with the provider's status code").
				WithJSONSchema(errorResponseSchema())),
		)
		doc.AddOperation(rt.path, rt.method, op)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid API document: %w", err)
	}
	return doc, nil
}

func analysisRequestSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("url", openapi3.NewStringSchema()).
		WithRequired([]string{"url"})
}

func confidenceSchema() *openapi3.Schema {
	return openapi3.NewFloat64Schema().WithMin(0).WithMax(1)
}

func captionSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("text", openapi3.NewStringSchema()).
		WithProperty("confidence", confidenceSchema())
}

func categorySchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("score", confidenceSchema()).
		WithProperty("detail", openapi3.NewObjectSchema())
}

func tagSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("confidence", confidenceSchema()).
		WithProperty("hint", openapi3.NewStringSchema())
}

func errorResponseSchema() *openapi3.Schema {
	body := openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("statusCode", openapi3.NewIntegerSchema())
	return openapi3.NewObjectSchema().WithProperty("error", body)
}

package models

// AnalysisRequest is the body accepted by every analysis endpoint.
// URL is a pointer so that a missing field and an explicit null both decode to nil.
type AnalysisRequest struct {
	URL *string `json:"url"`
}

// BadRequestBody is the JSON string returned for malformed requests
const BadRequestBody = "Bad request"

// ProviderErrorBody describes a failed provider call
type ProviderErrorBody struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ErrorResponse wraps a provider failure as {"error": {...}}
type ErrorResponse struct {
	Error ProviderErrorBody `json:"error"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

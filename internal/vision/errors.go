package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// APIError is a non-successful provider response
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	err *azcore.ResponseError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("vision: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("vision: %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the underlying *azcore.ResponseError
func (e *APIError) Unwrap() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// providerErrorBody is the error envelope returned by Computer Vision
type providerErrorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"innererror"`
	} `json:"error"`
	// v2.x responses put the fields at the top level
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAPIError(resp *http.Response) error {
	err := runtime.NewResponseError(resp)
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}

	apiErr := &APIError{
		StatusCode: respErr.StatusCode,
		Code:       respErr.ErrorCode,
		err:        respErr,
	}

	if payload, perr := runtime.Payload(resp); perr == nil && len(payload) > 0 {
		var body providerErrorBody
		if json.Unmarshal(payload, &body) == nil {
			switch {
			case body.Error.InnerError != nil && body.Error.InnerError.Code != "":
				apiErr.Code = body.Error.InnerError.Code
				apiErr.Message = body.Error.InnerError.Message
				if apiErr.Message == "" {
					apiErr.Message = body.Error.Message
				}
			case body.Error.Code != "":
				apiErr.Code = body.Error.Code
				apiErr.Message = body.Error.Message
			case body.Code != "":
				apiErr.Code = body.Code
				apiErr.Message = body.Message
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.StatusCode)
	}
	return apiErr
}

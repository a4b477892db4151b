package transport

import (
	"net/http"

	"go-vision-gateway/internal/service"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

// route is one analysis endpoint. The same table registers the gin handlers
// and generates the OpenAPI document.
type route struct {
	method      string
	path        string
	operationID string
	summary     string
	description string
	response    func() *openapi3.Schema
	handle      func(svc service.GatewayService) gin.HandlerFunc
}

var analysisRoutes = []route{
	{
		method:      http.MethodPost,
		path:        "/imageDescription",
		operationID: "describeImage",
		summary:     "Describe an image",
		description: "Returns the highest ranked caption the provider generated for the image at url.",
		response:    captionSchema,
		handle: func(svc service.GatewayService) gin.HandlerFunc {
			return analyze(service.OperationDescribe, svc.DescribeImage)
		},
	},
	{
		method:      http.MethodPost,
		path:        "/imageCategory",
		operationID: "categorizeImage",
		summary:     "Categorize an image",
		description: "Returns the provider's categories for the image at url, in provider order.",
		response:    func() *openapi3.Schema { return openapi3.NewArraySchema().WithItems(categorySchema()) },
		handle: func(svc service.GatewayService) gin.HandlerFunc {
			return analyze(service.OperationCategorize, svc.CategorizeImage)
		},
	},
	{
		method:      http.MethodPost,
		path:        "/imageTags",
		operationID: "tagImage",
		summary:     "Tag an image",
		description: "Returns the provider's tags for the image at url.",
		response:    func() *openapi3.Schema { return openapi3.NewArraySchema().WithItems(tagSchema()) },
		handle: func(svc service.GatewayService) gin.HandlerFunc {
			return analyze(service.OperationTag, svc.TagImage)
		},
	},
}

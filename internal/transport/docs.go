package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	docsIndexPath = "/docs/index.html"
	openAPIPath   = "/docs/openapi.json"
)

// docsHandler serves the API document at /docs/openapi.json and the
// interactive UI for everything else under /docs
func docsHandler(apiDoc []byte) gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(openAPIPath))

	return func(c *gin.Context) {
		switch c.Param("any") {
		case "/openapi.json":
			c.Data(http.StatusOK, "application/json; charset=utf-8", apiDoc)
		case "", "/":
			c.Redirect(http.StatusMovedPermanently, docsIndexPath)
		default:
			ui(c)
		}
	}
}

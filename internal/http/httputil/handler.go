package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is implemented by every API handler; the HTTP service mounts
// each one under its Root across the public, private, and admin groups.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}

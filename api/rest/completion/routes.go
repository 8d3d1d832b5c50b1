package completion

import "github.com/gin-gonic/gin"

// registers completion routes
func RegisterRoutes(router gin.IRoutes, completer Completer, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, Handler(completer))
	router.POST("/complete", handlers...)
}

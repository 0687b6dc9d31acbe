package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/01moynul/closetline/internal/handlers"
	"github.com/01moynul/closetline/internal/middleware"
)

// Options carries the router settings that come from configuration.
type Options struct {
	AllowedOrigin string
	Development   bool
	// EnquiryLimiter throttles enquiry submissions; nil disables it.
	EnquiryLimiter middleware.Limiter
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// --- Global middleware ---
	// CORS comes first so preflight requests are answered before anything else
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigin))
	router.Use(middleware.RequestLog())
	router.Use(middleware.Recovery(opts.Development))

	// --- Uploaded images ---
	router.GET("/uploads/:name", h.ServeUpload)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		// --- Item Routes ---
		items := api.Group("/items")
		{
			items.GET("/stats", h.GetItemStats)
			items.GET("/search", h.SearchItems)
			items.GET("", h.GetAllItems)
			items.GET("/:id", h.GetItemByID)
			items.POST("", h.CreateItem)
			items.PUT("/:id", h.UpdateItem)
			items.DELETE("/:id", h.DeleteItem)
		}

		// --- Enquiry Routes ---
		mail := api.Group("/email")
		{
			enquiry := []gin.HandlerFunc{h.SubmitEnquiry}
			if opts.EnquiryLimiter != nil {
				enquiry = append([]gin.HandlerFunc{middleware.RateLimit(opts.EnquiryLimiter)}, enquiry...)
			}
			mail.POST("/enquiry", enquiry...)
			mail.GET("/enquiries", h.GetEnquiries)
		}
	}

	router.NoRoute(handlers.NotFound)
	return router
}

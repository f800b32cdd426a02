package routes

import (
	"net/http"
	"time"

	"travellocal/handlers"
	"travellocal/middleware"
	"travellocal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm TravelLocal",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterCalendarRoutes registers the reservation calendar endpoints.
func RegisterCalendarRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	calendar := api.Group("/calendar")
	{
		calendar.GET("", hb.Calendar.GetMonthHandler)
		calendar.PATCH("/reservations/:id/status", hb.Calendar.UpdateStatusHandler)
	}
}

// RegisterTourRoutes registers schedule and unlock endpoints.
func RegisterTourRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	tours := api.Group("/tours/:id")
	{
		tours.GET("/schedule", hb.Tour.GetScheduleHandler)
		tours.GET("/unlock/quote", hb.Tour.GetQuoteHandler)
		tours.POST("/unlock", hb.Tour.UnlockHandler)
		tours.POST("/unlock/payment", hb.Tour.CreatePaymentHandler)
		tours.POST("/unlock/payment/confirm", hb.Tour.ConfirmPaymentHandler)
	}
}

// RegisterTranslationRoutes registers translation endpoints.
func RegisterTranslationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	verified := middleware.RequireVerifiedIdentity()
	api.POST("/translate", verified, hb.Translation.TranslateHandler)
	api.GET("/translate/history", verified, hb.Translation.HistoryHandler)
}

// RegisterTourismRoutes registers public tourism data endpoints.
func RegisterTourismRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	tourism := api.Group("/tourism")
	{
		tourism.GET("/area", hb.Tourism.AreaHandler)
		tourism.GET("/search", hb.Tourism.SearchHandler)
	}
}

// RegisterDeviceRoutes registers device preference endpoints.
func RegisterDeviceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	device := api.Group("/device", middleware.RequireVerifiedIdentity())
	{
		device.GET("/language", hb.Device.GetLanguageHandler)
		device.PUT("/language", hb.Device.SetLanguageHandler)
	}
}

// RegisterChatRoutes registers room creation and the websocket bridge.
func RegisterChatRoutes(r *gin.Engine, api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/chat/rooms", hb.Chat.CreateRoomHandler)
	r.GET("/ws/chat/:roomId",
		middleware.JWTAuthMiddleware(hb.Tokens, hb.Verifier),
		middleware.RequireVerifiedIdentity(),
		hb.Chat.BridgeHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(hb.Tokens, hb.Verifier))

	RegisterCalendarRoutes(api, hb)
	RegisterTourRoutes(api, hb)
	RegisterTranslationRoutes(api, hb)
	RegisterTourismRoutes(api, hb)
	RegisterDeviceRoutes(api, hb)
	RegisterChatRoutes(r, api, hb)
}

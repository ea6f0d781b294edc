package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"agendapro-backend/config"
	"agendapro-backend/controllers"
	"agendapro-backend/metrics"
	"agendapro-backend/utils"
)

type Options struct {
	AllowedOrigins []string
	Auth           gin.HandlerFunc
	// PublicLimit guards the unauthenticated write endpoints.
	PublicLimit gin.HandlerFunc
	Log         logrus.FieldLogger
}

func SetupRouter(h *controllers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.Use(config.PerformanceLogger(opts.Log))
	r.Use(metrics.Middleware())

	limit := opts.PublicLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", limit, h.Register)
		auth.POST("/login", limit, h.Login)
		auth.GET("/me", opts.Auth, h.Me)
	}

	api := r.Group("/api")

	// Public booking page
	api.GET("/salons/:slug", h.GetSalonBySlug)
	api.GET("/salons/:slug/availability", h.GetAvailability)
	api.POST("/appointments", limit, h.CreateBooking)
	api.POST("/whatsapp/send", limit, h.SendWhatsApp)
	api.POST("/payments/create", limit, h.CreatePayment)

	private := api.Group("", opts.Auth)
	{
		private.GET("/dashboard", h.GetDashboardOverview)
		private.GET("/reports", h.GetReportAnalytics)

		appointments := private.Group("/appointments")
		{
			appointments.GET("", h.GetAppointments)
			appointments.POST("/manual", h.CreateAppointment)
			appointments.PATCH("/:id", h.UpdateAppointment)
			appointments.DELETE("/:id", h.DeleteAppointment)
		}

		services := private.Group("/services")
		{
			services.POST("", h.CreateService)
			services.GET("", h.GetServices)
			services.GET("/:id", h.GetService)
			services.PATCH("/:id", h.UpdateService)
			services.DELETE("/:id", h.DeleteService)
		}

		clients := private.Group("/clients")
		{
			clients.POST("", h.CreateClient)
			clients.GET("", h.GetClients)
			clients.GET("/:id", h.GetClient)
			clients.PATCH("/:id", h.UpdateClient)
			clients.DELETE("/:id", h.DeleteClient)
		}

		professionals := private.Group("/professionals")
		{
			professionals.GET("", h.GetProfessionals)
			professionals.POST("", h.AddProfessional)
			professionals.PATCH("/:id", h.UpdateProfessional)
			professionals.DELETE("/:id", h.DeleteProfessional)
		}

		settings := private.Group("/settings")
		{
			settings.GET("", h.GetSettings)
			settings.PUT("", h.UpdateSettings)
			settings.PUT("/templates/:type", h.UpdateTemplate)
		}

		private.GET("/notifications", h.GetNotifications)
		private.POST("/reminders/run", h.RunReminders)
	}

	return r
}

// PrintRoutes logs every registered route.
func PrintRoutes(r *gin.Engine, log logrus.FieldLogger) {
	for _, route := range r.Routes() {
		log.Debugf("%-6s %s", route.Method, route.Path)
	}
}

// NewPublicLimiter builds the per-IP limiter for public write endpoints.
func NewPublicLimiter(perSecond float64, burst int, log logrus.FieldLogger, stop <-chan struct{}) gin.HandlerFunc {
	rl := utils.NewRateLimiter(perSecond, burst, log)
	rl.StartCleanup(10*time.Minute, stop)
	return rl.Middleware()
}

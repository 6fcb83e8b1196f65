package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with every route and its capability guard.
func NewRouter(a *App) *gin.Engine {
	if a.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(a.Cfg.TrustedProxyList()); err != nil {
		a.Log.Error("Ignoring TRUSTED_PROXIES", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(Recovery(a.Log), RequestLogger(a.Log))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	origins := a.Cfg.CORSOriginList()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	// Google redirects here without a bearer token.
	r.GET("/oauth2callback", a.OAuth2CallbackHandler)

	api := r.Group("/api")
	api.GET("/health", a.HealthHandler)

	auth := api.Group("/auth")
	{
		auth.POST("/register", a.RegisterHandler)
		auth.POST("/login", a.LoginHandler)
		auth.GET("/me", a.Authenticate(), a.MeHandler)
	}

	public := api.Group("/public", NewRateLimiter(a.Cfg.PublicRatePerMin, a.Log).Middleware())
	{
		public.GET("/businesses", a.PublicBusinessesHandler)
		public.GET("/businesses/:slug", a.PublicBusinessHandler)
		public.GET("/businesses/:slug/availability", a.AvailabilityHandler)
		public.POST("/businesses/:slug/appointments", a.PublicBookHandler)
	}

	priv := api.Group("", a.Authenticate())
	{
		me := priv.Group("/me")
		me.PUT("", RequireCapability(CapManageProfile), a.UpdateProfileHandler)
		me.PUT("/password", RequireCapability(CapManageProfile), a.ChangePasswordHandler)
		me.GET("/agenda", RequireCapability(CapViewAgenda), a.AgendaHandler)

		biz := priv.Group("/business", RequireCapability(CapManageBusiness))
		biz.GET("", a.GetBusinessHandler)
		biz.PUT("", a.UpdateBusinessHandler)

		services := priv.Group("/services", RequireCapability(CapManageServices))
		services.GET("", a.ListServicesHandler)
		services.POST("", a.CreateServiceHandler)
		services.PUT("/:id", a.UpdateServiceHandler)
		services.DELETE("/:id", a.DeleteServiceHandler)
		services.POST("/:id/image", a.UploadServiceImageHandler)

		employees := priv.Group("/employees")
		employees.GET("", RequireCapability(CapManageEmployees), a.ListEmployeesHandler)
		employees.POST("", RequireCapability(CapManageEmployees), a.CreateEmployeeHandler)
		employees.PUT("/:id", RequireCapability(CapManageEmployees), a.UpdateEmployeeHandler)
		employees.DELETE("/:id", RequireCapability(CapManageEmployees), a.DeleteEmployeeHandler)
		employees.GET("/:id/schedule", RequireCapability(CapManageSchedules), a.GetScheduleHandler)
		employees.PUT("/:id/schedule/:weekday", RequireCapability(CapManageSchedules), a.PutScheduleDayHandler)

		appts := priv.Group("/appointments")
		appts.GET("", RequireCapability(CapManageAppointments), a.ListAppointmentsHandler)
		appts.POST("/sample", RequireCapability(CapSeedAppointments), a.SampleAppointmentHandler)
		appts.PATCH("/:id/status", RequireCapability(CapManageAppointments), a.UpdateAppointmentStatusHandler)
		appts.DELETE("/:id", RequireCapability(CapManageAppointments), a.DeleteAppointmentHandler)

		priv.GET("/dashboard", RequireCapability(CapViewDashboard), a.DashboardHandler)
		priv.GET("/calendar/auth", RequireCapability(CapConnectCalendar), a.CalendarAuthHandler)
		priv.POST("/email", RequireCapability(CapSendEmail), a.SendEmailHandler)
	}

	return r
}

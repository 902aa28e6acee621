package router

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"arogyam-go/internal/config"
	"arogyam-go/internal/handlers"
	"arogyam-go/internal/performance"
	"arogyam-go/internal/preferences"
	"arogyam-go/internal/telemetry"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// AdminStore is everything the router needs from admin persistence.
type AdminStore interface {
	handlers.AdminStore
	TokenVerifier
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Log *zap.Logger
	// Config returns the current configuration. Session and cookie settings
	// are read once; token TTL, telemetry origins and the booking limit are
	// read on every request so a reload applies without a restart.
	Config func() *config.Config
	Clock  clock.Clock

	Consultations handlers.ConsultationStore
	Patients      handlers.PatientStore
	Prescriptions handlers.PrescriptionStore
	Admins        AdminStore
	Metrics       handlers.MetricStore
	Stats         handlers.StatsStore

	Catalog     handlers.CatalogSource
	Prober      *performance.Prober
	Hub         *telemetry.Hub
	Preferences *preferences.Store
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", fmt.Sprintf("%.0f", time.Until(info.ResetTime).Seconds()))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests. Try again later."})
}

func limiter(rate time.Duration, limit uint) gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  rate,
		Limit: limit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
}

// reloadingLimiter rebuilds the limiter when the configured limit changes.
// Counts start over after a change.
func reloadingLimiter(rate time.Duration, limit func() uint) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		current uint
		handler gin.HandlerFunc
	)
	return func(c *gin.Context) {
		mu.Lock()
		if l := limit(); handler == nil || l != current {
			current, handler = l, limiter(rate, l)
		}
		h := handler
		mu.Unlock()
		h(c)
	}
}

func Setup(d Deps) *gin.Engine {
	log := d.Log
	conf := d.Config()

	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(Recovery(log))

	store := cookie.NewStore([]byte(conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("arogyam_session", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(NonceMiddleware())
	router.Use(PatientLoaderMiddleware(log, d.Patients))

	router.Use(func(c *gin.Context) {
		nonce := c.GetString(CspNonceContextKey)
		csp := fmt.Sprintf(
			"script-src 'self' 'nonce-%s'; style-src 'self' https://fonts.googleapis.com 'unsafe-inline'; font-src 'self' https://fonts.gstatic.com",
			nonce,
		)
		c.Header("Content-Security-Policy", csp)
		c.Next()
	})

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	router.Static("/assets", "./assets")

	// Handlers and routes
	consultationsHandler := handlers.NewConsultationsHandler(log, d.Consultations)
	patientsHandler := handlers.NewPatientsHandler(log, d.Patients, d.Prescriptions)
	prescriptionsHandler := handlers.NewPrescriptionsHandler(log, d.Prescriptions, d.Patients)
	authHandler := handlers.NewAuthHandler(log, d.Admins, d.Clock, func() time.Duration {
		return d.Config().Server.AdminTokenTTL
	})
	statsHandler := handlers.NewStatsHandler(log, d.Stats, d.Clock)
	telemetryHandler := handlers.NewTelemetryHandler(log, d.Hub, func() []string {
		return d.Config().Server.AllowedOrigins
	})
	bookingHandler := handlers.NewBookingHandler(log, d.Consultations, d.Catalog, d.Clock)
	performanceHandler := handlers.NewPerformanceHandler(log, d.Prober, d.Metrics, d.Hub, d.Clock)
	portalAuthHandler := handlers.NewPortalAuthHandler(log, d.Patients)
	portalHandler := handlers.NewPortalHandler(log, d.Consultations, d.Prescriptions, d.Preferences)
	pagesHandler := handlers.NewPagesHandler(log, d.Prober, d.Catalog)

	loginLimiter := limiter(time.Minute, 5)
	bookingLimiter := reloadingLimiter(time.Hour, func() uint {
		return uint(d.Config().Booking.RequestsPerHour)
	})

	router.GET("/", CSRFToken(), pagesHandler.Home)

	// Public API
	api := router.Group("/api")
	{
		api.GET("/consultation-types", bookingHandler.Types)
		api.POST("/consultations", bookingLimiter, CSRFToken(), CSRFProtection(), bookingHandler.Create)

		// Beacons cannot carry a CSRF header; these endpoints only accept
		// anonymous telemetry.
		api.POST("/performance/profile", performanceHandler.Profile)
		api.POST("/performance/metrics", performanceHandler.Metrics)
	}

	// Admin API, bearer authenticated
	router.POST("/api/admin/login", loginLimiter, authHandler.Login)
	admin := router.Group("/api/admin")
	admin.Use(AdminAuth(log, d.Admins, d.Clock))
	{
		admin.POST("/logout", authHandler.Logout)

		admin.GET("/consultations", consultationsHandler.List)
		admin.PATCH("/consultations/:id", consultationsHandler.UpdateStatus)
		admin.DELETE("/consultations/:id", consultationsHandler.Delete)
		admin.PUT("/consultations/:id/patient", consultationsHandler.LinkPatient)

		admin.GET("/patients", patientsHandler.List)
		admin.POST("/patients", patientsHandler.Create)
		admin.GET("/patients/:id", patientsHandler.Get)
		admin.PATCH("/patients/:id", patientsHandler.Update)
		admin.DELETE("/patients/:id", patientsHandler.Delete)
		admin.GET("/patients/:id/prescriptions", patientsHandler.Prescriptions)

		admin.GET("/prescriptions", prescriptionsHandler.List)
		admin.POST("/prescriptions", prescriptionsHandler.Create)
		admin.DELETE("/prescriptions/:id", prescriptionsHandler.Delete)

		admin.GET("/stats/consultations", statsHandler.Consultations)
		admin.GET("/stats/performance", statsHandler.Performance)
		admin.GET("/telemetry/ws", telemetryHandler.Stream)
	}

	// Patient portal, cookie session
	portal := router.Group("/portal")
	portal.Use(CSRFToken(), CSRFProtection())
	{
		portal.POST("/login", loginLimiter, portalAuthHandler.Login)
		portal.POST("/register", loginLimiter, portalAuthHandler.Register)
		portal.POST("/logout", portalAuthHandler.Logout)
	}

	portalAPI := router.Group("/api/portal")
	portalAPI.Use(CSRFToken(), CSRFProtection(), PortalAuthRequired())
	{
		portalAPI.GET("/consultations", portalHandler.Consultations)
		portalAPI.GET("/prescriptions", portalHandler.Prescriptions)
		portalAPI.GET("/preferences", portalHandler.GetPreferences)
		portalAPI.PUT("/preferences", portalHandler.PutPreferences)
	}

	return router
}

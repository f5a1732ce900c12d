package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"medisched/internal/logger"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const statusOK = "ok"

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services      *service.Service
	log           *logger.Logger
	secureCookies bool
	limiter       *RateLimiter
}

// Option customizes a Handler.
type Option func(*Handler)

// WithSecureCookies marks session and flash cookies as HTTPS-only.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) { h.secureCookies = secure }
}

// WithRateLimiter throttles the login and registration endpoints per client IP.
func WithRateLimiter(l *RateLimiter) Option {
	return func(h *Handler) { h.limiter = l }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)
	router.SetHTMLTemplate(pageTemplates)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerWebRoutes(router)
	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerWebRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login") })

	limited := h.limitRequests(h.tooManyAttemptsPage)
	r.GET("/register", h.registerPage)
	r.POST("/register", limited, h.register)
	r.GET("/login", h.loginPage)
	r.POST("/login", limited, h.login)

	web := r.Group("/", h.requireLogin)
	{
		web.GET("/logout", h.logout)
		web.GET("/dashboard", h.dashboard)
		web.GET("/book", h.bookPage)
		web.POST("/book", h.book)
		web.GET("/edit/:id", h.editPage)
		web.POST("/edit/:id", h.edit)
		web.GET("/delete/:id", h.deleteAppointment)
	}
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	limited := h.limitRequests(h.tooManyRequestsJSON)
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", limited, h.signUp)
		auth.POST("/sign-in", limited, h.signIn)
		auth.POST("/sign-out", h.requireAPIUser, h.signOut)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireAPIUser)
	{
		appointments := api.Group("/appointments")
		{
			appointments.GET("", h.listAppointmentsJSON)
			appointments.POST("", h.createAppointmentJSON)
			appointments.GET("/:id", h.getAppointmentJSON)
			appointments.PUT("/:id", h.updateAppointmentJSON)
			appointments.DELETE("/:id", h.deleteAppointmentJSON)
		}
		api.GET("/ws", h.wsConnect)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

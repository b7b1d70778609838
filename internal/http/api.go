package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"qrcode-api/internal/auth"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/service"
)

// Config carries the collaborators and settings of the HTTP layer.
type Config struct {
	Users    service.UserService
	QRCodes  service.QRCodeService
	Resolver *auth.Resolver
	Tokens   *auth.Tokens
	TokenTTL time.Duration
	Paging   pagination.Policy
	Logger   logrus.FieldLogger

	// StaticDir, when set, is served under StaticPrefix.
	StaticDir    string
	StaticPrefix string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	qrcodes  service.QRCodeService
	resolver *auth.Resolver
	tokens   *auth.Tokens
	tokenTTL time.Duration
	paging   pagination.Policy
	logger   logrus.FieldLogger

	staticDir    string
	staticPrefix string
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		users:        cfg.Users,
		qrcodes:      cfg.QRCodes,
		resolver:     cfg.Resolver,
		tokens:       cfg.Tokens,
		tokenTTL:     cfg.TokenTTL,
		paging:       cfg.Paging,
		logger:       cfg.Logger,
		staticDir:    cfg.StaticDir,
		staticPrefix: cfg.StaticPrefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger), metricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if h.staticDir != "" && h.staticPrefix != "" {
		router.Static(h.staticPrefix, h.staticDir)
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	v1 := api.Group("/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/access-token", h.accessToken)
		authRoutes.POST("/signup", h.signUp)
		authRoutes.POST("/api-key", h.authenticate(auth.Active), h.rotateAPIKey)
	}

	users := v1.Group("/users")
	{
		users.GET("/me", h.authenticate(auth.Active), h.getMe)
		users.PUT("/me", h.authenticate(auth.Active), h.updateMe)
		users.GET("", h.authenticate(auth.Superuser), h.listUsers)
		users.POST("", h.authenticate(auth.Superuser), h.createUser)
		users.PATCH("/:id", h.authenticate(auth.Superuser), h.updateUserFlags)
	}

	qrcodes := v1.Group("/qrcodes")
	{
		qrcodes.POST("", h.authenticate(auth.Active), h.createBasicQRCode)
		qrcodes.POST("/location", h.authenticate(auth.Active), h.createLocationQRCode)
		qrcodes.POST("/wifi", h.authenticate(auth.Active), h.createWiFiQRCode)
		qrcodes.POST("/vcard", h.authenticate(auth.Active), h.createVCardQRCode)
		qrcodes.POST("/vCard", h.authenticate(auth.Active), h.createVCardQRCode)
		qrcodes.GET("/mine", h.authenticate(auth.Active), h.listMyQRCodes)
		qrcodes.GET("", h.authenticate(auth.Superuser), h.listQRCodes)
		qrcodes.DELETE("/:id", h.authenticate(auth.Superuser), h.deleteQRCode)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qrcode-api/internal/auth"
	"qrcode-api/internal/domain"
)

const (
	apiKeyQueryParam = "api_key"
	apiKeyHeader     = "X-API-Key"
	userContextKey   = "auth.user"
)

// credentialFromRequest reads the API key (query parameter first, then
// header) and the bearer token, then applies the precedence rule.
func credentialFromRequest(c *gin.Context) auth.Credential {
	apiKey := c.Query(apiKeyQueryParam)
	if strings.TrimSpace(apiKey) == "" {
		apiKey = c.GetHeader(apiKeyHeader)
	}
	return auth.SelectCredential(apiKey, bearerToken(c.GetHeader("Authorization")))
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authenticate resolves the caller and runs guard on every request; nothing
// is cached between requests.
func (h *Handler) authenticate(guard auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.resolver.Resolve(c.Request.Context(), credentialFromRequest(c))
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				h.logger.WithFields(logrus.Fields{
					"path":   c.FullPath(),
					"reason": authErr.Kind.String(),
				}).Debug("authentication rejected")
			}
			h.abortWithError(c, err)
			return
		}
		if err := guard(user); err != nil {
			h.abortWithError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the user placed in the context by authenticate.
func currentUser(c *gin.Context) *domain.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if user := currentUser(c); user != nil {
			fields["user_id"] = user.ID
		}
		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		default:
			entry.Info("request handled")
		}
	}
}

package middleware

import (
	"net/http"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/logger"
	"github.com/dealledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tenant context keys and headers
const (
	TenantIDKey     = "tenant_id"
	UserIDKey       = "user_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// HeaderEnabled accepts X-Tenant-ID and X-User-ID when no JWT claim is present
	HeaderEnabled bool
	// SkipPaths are paths that don't require tenant context
	SkipPaths []string
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		SkipPaths:     []string{"/health", "/api/v1/health"},
	}
}

// Tenant resolves the tenant with the default configuration
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig resolves the tenant of every request. A verified JWT claim
// wins over the X-Tenant-ID header. A request without a tenant is rejected
// with 400. The tenant and user are added to the request logger.
func TenantWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		raw, userRaw := GetJWTTenantID(c), GetJWTUserID(c)
		if raw == "" && cfg.HeaderEnabled {
			raw = c.GetHeader(TenantHeaderKey)
			userRaw = c.GetHeader(UserHeaderKey)
		}
		if raw == "" {
			abortBadRequest(c, shared.ErrTenantRequired.Code, "Tenant identification required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortBadRequest(c, "INVALID_TENANT", "Invalid tenant ID format")
			return
		}
		c.Set(TenantIDKey, tenantID)

		ctx := c.Request.Context()
		fields := []zap.Field{zap.String("tenant_id", tenantID.String())}
		if userRaw != "" {
			userID, err := uuid.Parse(userRaw)
			if err != nil {
				abortBadRequest(c, "INVALID_USER", "Invalid user ID format")
				return
			}
			c.Set(UserIDKey, userID)
			fields = append(fields, zap.String("user_id", userID.String()))
		}

		reqLogger := logger.FromContext(ctx).With(fields...)
		ctx = logger.WithContext(logger.WithTenantID(ctx, tenantID.String()), reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortBadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantUUID returns the tenant resolved by the Tenant middleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetUserUUID returns the acting user, or nil when the request names none
func GetUserUUID(c *gin.Context) *uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}

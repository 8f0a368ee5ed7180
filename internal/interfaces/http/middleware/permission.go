package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Permissions checked by the editor tools
const (
	// PermissionAll is the admin wildcard and passes every check
	PermissionAll = "*:*"
	// PermissionEditorsPrefix matches any Editors:<action> permission
	PermissionEditorsPrefix = "Editors:"
	// PermissionEditorsMOTD allows changing the editors' message of the day
	PermissionEditorsMOTD = "Admin:EditorsMOTD"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// GrantsPermission reports whether the held permissions satisfy required.
// A required value ending in ":*" is a group and matches any permission of
// that group, and "*:*" satisfies everything.
func GrantsPermission(held []string, required string) bool {
	if slices.Contains(held, PermissionAll) {
		return true
	}
	if group, ok := strings.CutSuffix(required, "*"); ok {
		return slices.ContainsFunc(held, func(p string) bool { return strings.HasPrefix(p, group) })
	}
	return slices.Contains(held, required)
}

// RequireAnyPermission requires at least one of the permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig requires at least one of the permissions
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, permissions, "No authentication claims found")
			return
		}
		if !hasAny(claims, permissions) {
			handlePermissionDenied(c, cfg, permissions, "User lacks required permission")
			return
		}
		c.Next()
	}
}

// RequireEditor allows members of any Editors group and admins
func RequireEditor(log *zap.Logger) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{Logger: log}, PermissionEditorsPrefix+"*")
}

func hasAny(claims *auth.Claims, permissions []string) bool {
	return slices.ContainsFunc(permissions, func(p string) bool {
		return GrantsPermission(claims.Permissions, p)
	})
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, required []string, reason string) {
	cfg.Logger.Warn("Permission denied",
		zap.String("user_id", GetJWTUserID(c)),
		zap.Strings("required_any", required),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeForbidden,
		"You do not have permission to access this resource",
		GetRequestID(c),
	))
}

// HasPermission reports whether the authenticated user holds the permission
func HasPermission(c *gin.Context, permission string) bool {
	return GrantsPermission(GetJWTPermissions(c), permission)
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/models"
	"hotel-management/services"
	"hotel-management/session"
)

const CtxUser = "currentUser"

// LoadUser resolves the logged-in user, if any, for every request.
func LoadUser(auth *services.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok, err := auth.CurrentUser(c.Request.Context(), session.Default(c))
		if err != nil {
			log.Error("load current user failed", zap.Error(err))
		} else if ok {
			c.Set(CtxUser, user)
		}
		c.Next()
	}
}

// CurrentUser returns the user set by LoadUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return requireRole(func(r models.Role) bool { return r.IsStaff() })
}

func RequireAdmin() gin.HandlerFunc {
	return requireRole(func(r models.Role) bool { return r == models.RoleAdmin })
}

func requireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !allowed(u.Role) {
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

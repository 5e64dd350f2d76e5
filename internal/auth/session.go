package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"akili/pkg/models"
)

// Session is the authenticated admin for one request. It is built by the
// middleware from the token and a fresh AdminUser read, and travels in the
// request context.
type Session struct {
	User   *models.AdminUser
	Claims *Claims
}

func (s *Session) Can(perm string) bool {
	return s != nil && s.User.Can(perm)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// GetSession returns the request's session, or nil outside AuthMiddleware.
func GetSession(c *gin.Context) *Session {
	return SessionFrom(c.Request.Context())
}

// MustGetSession returns the request's session and panics if there is none.
// Use it only in handlers mounted behind AuthMiddleware.
func MustGetSession(c *gin.Context) *Session {
	s := GetSession(c)
	if s == nil || s.User == nil {
		panic("auth: no session in request context")
	}
	return s
}

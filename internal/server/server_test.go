package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akili/internal/auth"
	"akili/internal/testutil"
	"akili/pkg/models"
)

func debugRouter(u *models.AdminUser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/admin", func(c *gin.Context) {
		if u != nil {
			c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), &auth.Session{User: u}))
		}
		c.Next()
	})
	Debug(admin, func() gin.H { return gin.H{"db": "/srv/akili.db", "ws_clients": 2} })
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDebugNeedsManageUsers(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, get(debugRouter(nil), "/admin/debug").Code)

	author := &models.AdminUser{ID: "au", Role: models.RoleAuthor, IsActive: true, Permissions: models.DefaultPermissions}
	w := get(debugRouter(author), "/admin/debug")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "akili.db")

	root := &models.AdminUser{ID: "root", Role: models.RoleSuperAdmin, IsActive: true}
	r := debugRouter(root)
	w = get(r, "/admin/debug")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"db":"/srv/akili.db","ws_clients":2}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(r, "/debug").Code)
}

func TestProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Probes(r, testutil.NewDB(t), func() gin.H { return gin.H{"ws_clients": 0} })

	w := get(r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.EqualValues(t, 0, body["ws_clients"])

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
}

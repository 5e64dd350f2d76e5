package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akili/internal/testutil"
	"akili/pkg/models"
)

const testPassword = "correct-horse"

type fixture struct {
	router *gin.Engine
	repo   *Repo
	tokens TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewRepo(testutil.NewDB(t))
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "akili-test", Duration: time.Hour}
	h := NewHandler(repo, tokens, nil)

	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	admin := r.Group("/admin", AuthMiddleware(tokens, repo))
	h.RegisterUserRoutes(admin)
	admin.GET("/analytics-only", RequirePermission(models.PermViewAnalytics), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &fixture{router: r, repo: repo, tokens: tokens}
}

func (f *fixture) createUser(t *testing.T, email, role string) *models.AdminUser {
	t.Helper()
	u, err := CreateAdmin(context.Background(), f.repo, NewAdmin{Email: email, Password: testPassword, Role: role}, "")
	require.NoError(t, err)
	return u
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, email, password string) (int, string) {
	t.Helper()
	w := f.do(http.MethodPost, "/auth/login", "", loginReq{Email: email, Password: password})
	var body struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body.Token
}

func TestCreateAdminDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, " Writer@Akili.Test ", "")

	assert.Equal(t, "writer@akili.test", u.Email)
	assert.Equal(t, "writer", u.DisplayName)
	assert.Equal(t, models.RoleAuthor, u.Role)
	assert.Equal(t, models.DefaultPermissions, u.Permissions)
	assert.True(t, u.IsActive)
	assert.Equal(t, u.ID, u.CreatedBy)

	_, err := CreateAdmin(context.Background(), f.repo, NewAdmin{Email: "writer@akili.test", Password: testPassword}, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = CreateAdmin(context.Background(), f.repo, NewAdmin{Email: "x@akili.test", Password: "short"}, "")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = CreateAdmin(context.Background(), f.repo, NewAdmin{Email: "x@akili.test", Password: testPassword, Role: "owner"}, "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "ed@akili.test", models.RoleEditor)

	code, _ := f.login(t, "ed@akili.test", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.login(t, "nobody@akili.test", testPassword)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, token := f.login(t, "ED@akili.test", testPassword)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, token)

	w := f.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.AdminUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, u.ID, me.ID)
	assert.NotNil(t, me.LastLogin)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ed@akili.test", models.RoleEditor)
	_, token := f.login(t, "ed@akili.test", testPassword)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", token, nil).Code)
}

func TestChangePasswordRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ed@akili.test", models.RoleEditor)
	_, token := f.login(t, "ed@akili.test", testPassword)

	w := f.do(http.MethodPost, "/auth/change-password", token, changePasswordReq{OldPassword: "bad-guess", NewPassword: "new-password-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/auth/change-password", token, changePasswordReq{OldPassword: testPassword, NewPassword: "new-password-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", token, nil).Code)

	code, _ := f.login(t, "ed@akili.test", "new-password-1")
	assert.Equal(t, http.StatusOK, code)
}

func TestInactiveAdminRejected(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "ed@akili.test", models.RoleEditor)

	// token issued while active stops working once the account is disabled
	token, _, err := f.tokens.Sign(u)
	require.NoError(t, err)

	inactive := false
	_, err = f.repo.Update(context.Background(), u.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	code, _ := f.login(t, "ed@akili.test", testPassword)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", token, nil).Code)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "ed@akili.test", models.RoleEditor)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", "not-a-jwt", nil).Code)

	other := TokenService{Secret: []byte("other"), Issuer: "akili-test", Duration: time.Hour}
	forged, _, err := other.Sign(u)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", forged, nil).Code)

	expired := TokenService{Secret: f.tokens.Secret, Issuer: f.tokens.Issuer, Duration: -time.Minute}
	old, _, err := expired.Sign(u)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/auth/me", old, nil).Code)
}

func TestRequirePermission(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "author@akili.test", models.RoleAuthor)
	f.createUser(t, "root@akili.test", models.RoleSuperAdmin)

	_, authorToken := f.login(t, "author@akili.test", testPassword)
	_, rootToken := f.login(t, "root@akili.test", testPassword)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin/analytics-only", authorToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin/analytics-only", rootToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin/users", authorToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin/users", rootToken, nil).Code)
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t)
	root := f.createUser(t, "root@akili.test", models.RoleSuperAdmin)
	_, token := f.login(t, "root@akili.test", testPassword)

	w := f.do(http.MethodPost, "/admin/users", token, NewAdmin{Email: "new@akili.test", Password: testPassword, Role: models.RoleEditor})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.AdminUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, root.ID, created.CreatedBy)

	assert.Equal(t, http.StatusConflict,
		f.do(http.MethodPost, "/admin/users", token, NewAdmin{Email: "new@akili.test", Password: testPassword}).Code)

	role := models.RoleAuthor
	w = f.do(http.MethodPatch, "/admin/users/"+created.ID, token, UserPatch{Role: &role})
	require.Equal(t, http.StatusOK, w.Code)

	off := false
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/admin/users/"+root.ID, token, UserPatch{IsActive: &off}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPatch, "/admin/users/missing", token, UserPatch{Role: &role}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/admin/users/"+created.ID, token, UserPatch{}).Code)
}

func TestWebsocketQueryToken(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "ed@akili.test", models.RoleEditor)
	token, _, err := f.tokens.Sign(u)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me?token="+token, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, GetSession(c))
	assert.Panics(t, func() { MustGetSession(c) })

	u := &models.AdminUser{ID: "u1", IsActive: true}
	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), &Session{User: u}))
	assert.Same(t, u, GetSession(c).User)
	assert.NotPanics(t, func() { assert.Equal(t, "u1", MustGetSession(c).User.ID) })
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"agencydesk/internal/authz"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(roles ...authz.Role) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(secret))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": RoleOf(c)})
	}
	if len(roles) > 0 {
		r.GET("/deals", RequireRoles(roles...), handler)
	} else {
		r.GET("/deals", handler)
	}
	r.GET("/deals/board/ws", handler)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	token, err := SignToken(secret, "u-1", authz.RoleAdmin, time.Hour)
	require.NoError(t, err)

	t.Run("public path", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, httptest.NewRequest(http.MethodGet, "/deals", nil)).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/deals", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := do(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u-1","role":"admin"}`, w.Body.String())
	})

	t.Run("wrong secret", func(t *testing.T) {
		bad, err := SignToken([]byte("other"), "u-1", authz.RoleAdmin, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/deals", nil)
		req.Header.Set("Authorization", "Bearer "+bad)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := SignToken(secret, "u-1", authz.RoleAdmin, -time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/deals", nil)
		req.Header.Set("Authorization", "Bearer "+old)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1", Role: authz.RoleAdmin}).SignedString(secret)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/deals", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok, err := SignToken(secret, "u-1", authz.Role("root"), time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/deals", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("query token only for websocket upgrades", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/deals/board/ws?token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

		req = httptest.NewRequest(http.MethodGet, "/deals/board/ws?token="+token, nil)
		req.Header.Set("Upgrade", "websocket")
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	})
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(authz.RoleAdmin)

	admin, _ := SignToken(secret, "a", authz.RoleAdmin, time.Hour)
	employee, _ := SignToken(secret, "e", authz.RoleEmployee, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/deals", nil)
	req.Header.Set("Authorization", "Bearer "+employee)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	bare := gin.New()
	bare.GET("/x", RequireRoles(authz.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, do(bare, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/deals", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodOptions, "/deals", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", authz.LandingPath(authz.RoleAdmin))
	assert.Equal(t, "/admin/calendar/posts", authz.LandingPath(authz.RoleEmployee))
	assert.Equal(t, "/dashboard", authz.LandingPath(authz.RoleClient))
	assert.Equal(t, "/login", authz.LandingPath("root"))
	assert.True(t, authz.IsStaff(authz.RoleEmployee))
	assert.False(t, authz.IsStaff(authz.RoleClient))
}

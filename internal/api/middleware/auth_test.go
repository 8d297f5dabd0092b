package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexquest/apexquest/internal/auth"
	"github.com/apexquest/apexquest/internal/model"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := auth.NewSessionManager("test-secret", time.Hour)

	r := gin.New()
	authed := r.Group("", Session(sessions))
	authed.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	authed.GET("/staff", RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, sessions
}

func doRequest(r *gin.Engine, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddleware(t *testing.T) {
	r, sessions := newAuthRouter(t)

	token, err := sessions.Issue(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	w := doRequest(r, token, "/whoami")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "", "/whoami").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "not-a-token", "/whoami").Code)
}

func TestRoleGates(t *testing.T) {
	r, sessions := newAuthRouter(t)

	issue := func(role model.Role) string {
		token, err := sessions.Issue(&model.User{ID: "u-" + string(role), Role: role})
		require.NoError(t, err)
		return token
	}
	user, mod, admin := issue(model.RoleUser), issue(model.RoleModerator), issue(model.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, doRequest(r, user, "/staff").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, mod, "/staff").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, admin, "/staff").Code)

	assert.Equal(t, http.StatusForbidden, doRequest(r, mod, "/admin").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, admin, "/admin").Code)
}

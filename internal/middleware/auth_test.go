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

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/pkg/auth"
)

func protectedRouter(secret string, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mw := NewAuthMiddleware(auth.NewJWTService(secret))

	engine := gin.New()
	group := engine.Group("/", mw.Authenticate())
	if len(roles) > 0 {
		group.Use(mw.RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("userEmail")})
	})
	return engine
}

func bearerToken(t *testing.T, secret, email, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Role:  role,
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func doRequest(engine *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticateValidToken(t *testing.T) {
	engine := protectedRouter("secret")
	token := bearerToken(t, "secret", "biller@example.com", model.RoleStaff)

	w := doRequest(engine, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "biller@example.com")
}

func TestAuthenticateMissingHeader(t *testing.T) {
	engine := protectedRouter("secret")

	w := doRequest(engine, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	engine := protectedRouter("secret")

	w := doRequest(engine, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBadSignature(t *testing.T) {
	engine := protectedRouter("secret")
	token := bearerToken(t, "wrong", "biller@example.com", model.RoleStaff)

	w := doRequest(engine, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	engine := protectedRouter("secret", model.RoleAdmin, model.RoleStaff)

	staff := bearerToken(t, "secret", "biller@example.com", model.RoleStaff)
	assert.Equal(t, http.StatusOK, doRequest(engine, "Bearer "+staff).Code)

	outsider := bearerToken(t, "secret", "guest@example.com", "guest")
	assert.Equal(t, http.StatusForbidden, doRequest(engine, "Bearer "+outsider).Code)
}

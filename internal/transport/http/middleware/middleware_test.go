package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgpt/internal/model"
	"quickgpt/internal/pkg/jwtutil"
)

const secret = "middleware-secret"

type stubUsers map[uint]*model.User

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*model.User, error) {
	return s[id], nil
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", mw, func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Name)
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT(t *testing.T) {
	users := stubUsers{1: {ID: 1, Name: "ada"}}
	r := newEngine(AuthJWT(secret, users))

	valid, err := jwtutil.GenerateToken(secret, time.Hour, 1, "ada")
	require.NoError(t, err)
	rec := get(r, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "garbage").Code)

	orphan, err := jwtutil.GenerateToken(secret, time.Hour, 2, "ghost")
	require.NoError(t, err)
	rec = get(r, orphan)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"not authorized, user not found"}`, rec.Body.String())
}

func TestOptionalAuthJWT(t *testing.T) {
	users := stubUsers{1: {ID: 1, Name: "ada"}}
	r := newEngine(OptionalAuthJWT(secret, users))

	valid, err := jwtutil.GenerateToken(secret, time.Hour, 1, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", get(r, valid).Body.String())
	assert.Equal(t, "anonymous", get(r, "").Body.String())
	assert.Equal(t, "anonymous", get(r, "garbage").Body.String())
}

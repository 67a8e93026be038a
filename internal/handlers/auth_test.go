package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/retail-backend/internal/models"
)

func TestRegisterCreatesUserAndCustomer(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":   "alice",
		"password":   "s3cret",
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@example.com",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, env.DB.Where("username = ?", "alice").First(&user).Error)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)

	var customer models.Customer
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&customer).Error)
	require.Equal(t, "Alice", customer.FirstName)

	// Duplicate usernames are rejected.
	rec, c = env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "other",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginIssuesTokens(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "bob",
		"password": "hunter2",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "bob",
		"password": "hunter2",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	cookies := rec.Result().Cookies()
	names := make([]string, len(cookies))
	for i, ck := range cookies {
		names[i] = ck.Name
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")

	// The refresh token is persisted for later revocation.
	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.False(t, stored.Revoked)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("carol", models.RoleCustomer)

	_, c := env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "carol",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "dave",
		"password": "pw",
	})
	require.NoError(t, env.Auth.Register(c))

	rec, c := env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "dave",
		"password": "pw",
	})
	require.NoError(t, env.Auth.Login(c))

	var resp struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec, c = env.doJSON(http.MethodPost, "/api/v1/auth/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: resp.RefreshToken})
	require.NoError(t, env.Auth.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.True(t, stored.Revoked)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("erin", models.RoleAdmin)

	rec, c := env.doJSON(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set("userID", user.ID)
	require.NoError(t, env.Auth.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.ID)
	require.Equal(t, models.RoleAdmin, resp.Role)
}

package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-jwt-server/auth"
	"github.com/jrsteele09/go-jwt-server/internal/config"
	"github.com/jrsteele09/go-jwt-server/server"
	"github.com/jrsteele09/go-jwt-server/token/jwt"
	"github.com/jrsteele09/go-jwt-server/token/keys"
	"github.com/jrsteele09/go-jwt-server/token/refresh"
	fakeuserrepo "github.com/jrsteele09/go-jwt-server/users/repofake"
	"github.com/stretchr/testify/require"
)

type tokenBody struct {
	Type         string  `json:"type"`
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
	ExpiresIn    int     `json:"expiresIn"`
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

type testFixture struct {
	server      *server.Server
	refreshRepo *refresh.InMemoryRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	settings := config.Settings{
		Port:             "8080",
		AppName:          "test",
		Env:              "TEST",
		AccessSecret:     base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 64))),
		RefreshSecret:    base64.StdEncoding.EncodeToString([]byte(strings.Repeat("r", 64))),
		AccessTokenTTL:   5 * time.Minute,
		RefreshTokenTTL:  720 * time.Hour,
		RefreshStore:     string(config.StoreMemory),
		RefreshKeyPrefix: "jwt:refresh:",
		AllowedOrigins:   []string{"https://app.example"},
	}
	c, err := config.FromSettings(settings)
	require.NoError(t, err)

	ring, err := keys.NewKeyRing(c.GetAccessSecret(), c.GetRefreshSecret())
	require.NoError(t, err)
	provider, err := jwt.NewProvider(ring, jwt.WithTokenTTL(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL()))
	require.NoError(t, err)

	refreshRepo := refresh.NewInMemoryRepo()
	authService, err := auth.NewAuthService(fakeuserrepo.NewSeededUserRepo(), refreshRepo, provider)
	require.NoError(t, err)

	s, err := server.New(c, authService)
	require.NoError(t, err)

	return &testFixture{server: s, refreshRepo: refreshRepo}
}

func (f *testFixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) login(t *testing.T, login, password string) tokenBody {
	t.Helper()
	rec := f.do(t, http.MethodPost, server.RouteAPIAuthLogin, server.LoginRequest{Login: login, Password: password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tb tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
	require.NotNil(t, tb.AccessToken)
	require.NotNil(t, tb.RefreshToken)
	return tb
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestServerNew(t *testing.T) {
	_, err := server.New(nil, nil)
	require.Error(t, err)
}

func TestLoginHandler(t *testing.T) {
	t.Run("issues a token pair", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.do(t, http.MethodPost, server.RouteAPIAuthLogin, server.LoginRequest{Login: "anton", Password: "1234"}, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var tb tokenBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
		require.Equal(t, "Bearer", tb.Type)
		require.NotEmpty(t, *tb.AccessToken)
		require.NotEmpty(t, *tb.RefreshToken)
		require.Equal(t, 300, tb.ExpiresIn)
		require.Equal(t, *tb.RefreshToken, f.refreshRepo.Snapshot()["anton"])
	})

	t.Run("unknown login and wrong password look the same", func(t *testing.T) {
		f := setupTestFixture(t)
		unknown := f.do(t, http.MethodPost, server.RouteAPIAuthLogin, server.LoginRequest{Login: "nobody", Password: "x"}, nil)
		wrong := f.do(t, http.MethodPost, server.RouteAPIAuthLogin, server.LoginRequest{Login: "anton", Password: "x"}, nil)

		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.Equal(t, unknown.Body.String(), wrong.Body.String())
	})

	t.Run("bad requests", func(t *testing.T) {
		f := setupTestFixture(t)

		req := httptest.NewRequest(http.MethodPost, server.RouteAPIAuthLogin, strings.NewReader("{"))
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPost, server.RouteAPIAuthLogin, server.LoginRequest{Login: "anton"}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodGet, server.RouteAPIAuthLogin, nil, nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAccessTokenHandler(t *testing.T) {
	t.Run("renews the access token only", func(t *testing.T) {
		f := setupTestFixture(t)
		tb := f.login(t, "anton", "1234")

		rec := f.do(t, http.MethodPost, server.RouteAPIAuthToken, server.RefreshTokenRequest{RefreshToken: *tb.RefreshToken}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"refreshToken":null`)

		var renewed tokenBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &renewed))
		require.NotNil(t, renewed.AccessToken)
		require.Nil(t, renewed.RefreshToken)
		require.Equal(t, *tb.RefreshToken, f.refreshRepo.Snapshot()["anton"])
	})

	t.Run("unusable refresh token answers 200 with null tokens", func(t *testing.T) {
		f := setupTestFixture(t)
		tb := f.login(t, "anton", "1234")

		for _, token := range []string{"garbage", "", *tb.AccessToken} {
			rec := f.do(t, http.MethodPost, server.RouteAPIAuthToken, server.RefreshTokenRequest{RefreshToken: token}, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var renewed tokenBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &renewed))
			require.Equal(t, "Bearer", renewed.Type)
			require.Nil(t, renewed.AccessToken)
			require.Nil(t, renewed.RefreshToken)
		}
	})
}

func TestRefreshHandler(t *testing.T) {
	f := setupTestFixture(t)
	tb := f.login(t, "anton", "1234")

	rec := f.do(t, http.MethodPost, server.RouteAPIAuthRefresh, server.RefreshTokenRequest{RefreshToken: *tb.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotNil(t, rotated.RefreshToken)
	require.NotEqual(t, *tb.RefreshToken, *rotated.RefreshToken)

	// replaying the consumed token
	rec = f.do(t, http.MethodPost, server.RouteAPIAuthRefresh, server.RefreshTokenRequest{RefreshToken: *tb.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	require.Equal(t, "invalid_grant", eb.Error)
}

func TestProtectedRoutes(t *testing.T) {
	f := setupTestFixture(t)
	anton := f.login(t, "anton", "1234")
	admin := f.login(t, "admin", "admin")

	tests := []struct {
		name   string
		path   string
		header http.Header
		status int
	}{
		{"user route with user token", server.RouteAPIHelloUser, bearer(*anton.AccessToken), http.StatusOK},
		{"admin route with admin token", server.RouteAPIHelloAdmin, bearer(*admin.AccessToken), http.StatusOK},
		{"admin route with user token", server.RouteAPIHelloAdmin, bearer(*anton.AccessToken), http.StatusForbidden},
		{"no authorization header", server.RouteAPIHelloUser, nil, http.StatusUnauthorized},
		{"wrong scheme", server.RouteAPIHelloUser, http.Header{"Authorization": []string{"Basic abc"}}, http.StatusUnauthorized},
		{"refresh token as bearer", server.RouteAPIHelloUser, bearer(*anton.RefreshToken), http.StatusUnauthorized},
		{"garbage bearer", server.RouteAPIHelloUser, bearer("x.y.z"), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, nil, tt.header)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	t.Run("greets with the first name from the token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, server.RouteAPIHelloUser, nil, bearer(*anton.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message        string              `json:"message"`
			Authentication auth.Authentication `json:"authentication"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "Hello user Антон!", body.Message)
		require.Equal(t, "anton", body.Authentication.Login)
		require.Equal(t, []string{"USER"}, body.Authentication.Roles)
	})
}

func TestCorsMiddleware(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, server.RouteAPIAuthLogin, nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodOptions, server.RouteAPIAuthLogin, nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, f.server.RecoverMiddleware)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	rec := f.do(t, http.MethodGet, server.RouteHealth, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, f.server.Routes(), "POST "+server.RouteAPIAuthRefresh)
}

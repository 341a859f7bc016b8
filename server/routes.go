package server

import (
	"net/http"

	"github.com/jrsteele09/go-jwt-server/users"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Token issuance; rotation answers 401 while renewal soft-fails with null tokens
	s.RegisterRouteHandler("POST "+RouteAPIAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIAuthToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware(s.NoStoreMiddleware)...))

	// Bearer protected routes
	s.RegisterRouteHandler("GET "+RouteAPIHelloUser, ChainMiddleware(s.HelloHandler("user"), s.APIMiddleware(s.RequireAuth(), s.RequireRole(users.RoleUser))...))
	s.RegisterRouteHandler("GET "+RouteAPIHelloAdmin, ChainMiddleware(s.HelloHandler("admin"), s.APIMiddleware(s.RequireAuth(), s.RequireRole(users.RoleAdmin))...))

	// CORS preflight for the API
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}

package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth API Routes
	RouteAPIAuthLogin   = "/api/auth/login"
	RouteAPIAuthToken   = "/api/auth/token"
	RouteAPIAuthRefresh = "/api/auth/refresh"

	// Protected example routes
	RouteAPIHelloUser  = "/api/hello/user"
	RouteAPIHelloAdmin = "/api/hello/admin"

	RouteHealth = "/healthz"
)

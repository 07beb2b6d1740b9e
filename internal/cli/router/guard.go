package router

// AuthState is the read-only view of the session the guard needs
type AuthState interface {
	IsAuthenticated() bool
}

// AuthGuard redirects anonymous users to the login route. The login route
// itself is always reachable, also for users that are already logged in,
// so they can switch accounts. The check reads the in-memory session only;
// revalidating the token is left to the API client's 401 handling.
func AuthGuard(state AuthState) Guard {
	return func(from, to string) Decision {
		if to == RouteLogin {
			return Allow()
		}
		if !state.IsAuthenticated() {
			return RedirectTo(RouteLogin)
		}
		return Allow()
	}
}

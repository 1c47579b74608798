package router

// Name identifies a navigable route.
type Name string

const (
	RouteHome          Name = "home"
	RouteLogin         Name = "login"
	RouteSettings      Name = "settings"
	RouteSync          Name = "sync"
	RouteAnalytics     Name = "analytics"
	RouteGraph         Name = "graph"
	RouteArtistProfile Name = "artist-profile"
	RouteOAuthCallback Name = "oauth-callback"
	RouteOAuthError    Name = "oauth-error"
)

// Route is a named, parameterized identifier derived from the current
// location.
type Route struct {
	Name   Name
	Params map[string]string
}

// Param returns the named parameter, or the empty string if absent.
func (r Route) Param(key string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[key]
}

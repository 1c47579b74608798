package router

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/log"
)

func TestResolveKnownPaths(t *testing.T) {
	tests := []struct {
		path string
		want Name
	}{
		{"/", RouteHome},
		{"/home", RouteHome},
		{"/dashboard", RouteHome},
		{"/login", RouteLogin},
		{"/register", RouteLogin},
		{"/settings", RouteSettings},
		{"/sync", RouteSync},
		{"/analytics", RouteAnalytics},
		{"/graph", RouteGraph},
		{"/no-such-page", RouteHome},
		{"/settings/extra/segments", RouteSettings},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route := Resolve(location.Parse(tt.path))
			assert.Equal(t, tt.want, route.Name)
		})
	}
}

func TestResolveArtistProfile(t *testing.T) {
	route := Resolve(location.Parse("/artists/a-42"))
	assert.Equal(t, RouteArtistProfile, route.Name)
	assert.Equal(t, "a-42", route.Param("id"))

	// Missing id still resolves to the profile route with an empty param
	route = Resolve(location.Parse("/artists"))
	assert.Equal(t, RouteArtistProfile, route.Name)
	assert.Equal(t, "", route.Param("id"))
}

func TestResolveOAuthCallback(t *testing.T) {
	route := Resolve(location.Parse("/auth/spotify/callback?code=abc&state=xyz"))
	assert.Equal(t, RouteOAuthCallback, route.Name)
	assert.Equal(t, "spotify", route.Param("provider"))
}

func TestResolveOAuthCallbackProviderFromQuery(t *testing.T) {
	route := Resolve(location.Parse("/oauth/callback?provider=tidal&code=abc"))
	assert.Equal(t, RouteOAuthCallback, route.Name)
	assert.Equal(t, "tidal", route.Param("provider"))
}

func TestResolveCallbackWinsOverErrorFlag(t *testing.T) {
	// A trailing callback segment takes precedence even when an error
	// flag is present in the query
	route := Resolve(location.Parse("/auth/spotify/callback?code=abc&error=stale"))
	assert.Equal(t, RouteOAuthCallback, route.Name)
}

func TestResolveOAuthError(t *testing.T) {
	route := Resolve(location.Parse("/sync?error=access_denied&error_description=user+cancelled"))
	assert.Equal(t, RouteOAuthError, route.Name)
	assert.Equal(t, "access_denied", route.Param("error"))
	assert.Equal(t, "user cancelled", route.Param("error_description"))
}

func TestResolveErrorFlagOnAnyPath(t *testing.T) {
	route := Resolve(location.Parse("/?error=server_error"))
	assert.Equal(t, RouteOAuthError, route.Name)
}

func TestResolverInitializeSetsCurrentSynchronously(t *testing.T) {
	src := location.NewProcessSource("/settings")
	r := NewResolver(src, log.NullLogger())

	r.Initialize()

	assert.Equal(t, RouteSettings, r.Current().Name)
}

func TestResolverFollowsLocationChanges(t *testing.T) {
	src := location.NewProcessSource("/")
	r := NewResolver(src, log.NullLogger())

	changed := make(chan Route, 8)
	r.Subscribe(func(route Route) { changed <- route })

	r.Initialize()
	require.Equal(t, RouteHome, (<-changed).Name)

	src.Navigate("/analytics")

	select {
	case route := <-changed:
		assert.Equal(t, RouteAnalytics, route.Name)
	case <-time.After(time.Second):
		t.Fatal("resolver did not follow the location change")
	}
}

func TestResolverReinitializeDoesNotDoubleSubscribe(t *testing.T) {
	src := location.NewProcessSource("/")
	r := NewResolver(src, log.NullLogger())

	changed := make(chan Route, 8)
	r.Subscribe(func(route Route) { changed <- route })

	r.Initialize()
	<-changed
	r.Initialize() // e.g. a bootstrap retry
	<-changed

	src.Navigate("/graph")

	select {
	case route := <-changed:
		assert.Equal(t, RouteGraph, route.Name)
	case <-time.After(time.Second):
		t.Fatal("resolver did not follow the location change")
	}

	// A second listener would deliver the same change twice
	select {
	case route := <-changed:
		t.Fatalf("unexpected duplicate route notification: %v", route.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouteParamMissingKey(t *testing.T) {
	route := Route{Name: RouteHome, Params: map[string]string{}}
	assert.Equal(t, "", route.Param("id"))

	var nilParams Route
	assert.Equal(t, "", nilParams.Param("id"))
}

func TestResolveSchemeLink(t *testing.T) {
	loc := location.Parse("nodrake://artists/a-7")
	route := Resolve(loc)
	assert.Equal(t, RouteArtistProfile, route.Name)
	assert.Equal(t, "a-7", route.Param("id"))
}

func TestResolveEmptyQueryValues(t *testing.T) {
	route := Resolve(location.Location{Path: "/sync", Query: url.Values{}})
	assert.Equal(t, RouteSync, route.Name)
}

package router_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgdl/go-sgdl-client/router"
	"github.com/sgdl/go-sgdl-client/users"
	"github.com/stretchr/testify/require"
)

// fakeSessionState implements router.SessionState for guard tests.
type fakeSessionState struct {
	mu            sync.Mutex
	authenticated bool
	user          *users.User
	fetchedUser   *users.User
	fetchErr      error
	fetchCalls    int
	fetched       chan struct{}
}

func newFakeSessionState() *fakeSessionState {
	return &fakeSessionState{fetched: make(chan struct{}, 8)}
}

func (f *fakeSessionState) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeSessionState) CurrentUser() *users.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeSessionState) FetchCurrentUser(ctx context.Context) error {
	f.mu.Lock()
	f.fetchCalls++
	if f.fetchErr == nil {
		f.user = f.fetchedUser
	}
	err := f.fetchErr
	f.mu.Unlock()
	f.fetched <- struct{}{}
	return err
}

func (f *fakeSessionState) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func setupGuard(t *testing.T, state *fakeSessionState) *router.Guard {
	t.Helper()
	guard, err := router.NewGuard(state)
	require.NoError(t, err)
	return guard
}

func route(t *testing.T, name string) router.Route {
	t.Helper()
	r, ok := router.DefaultRoutes().Lookup(name)
	require.True(t, ok, "route %s not in table", name)
	return r
}

func TestPublicRoutesNeverRequireAuthentication(t *testing.T) {
	state := newFakeSessionState()
	guard := setupGuard(t, state)

	for _, name := range []string{router.RouteLogin, router.RouteResetConfirm, router.RouteAccessDenied, router.RouteError} {
		decision := guard.Evaluate(context.Background(), route(t, name))
		require.True(t, decision.Allowed, "route %s should be public", name)
	}
}

func TestProtectedRouteRedirectsToLoginWhenLoggedOut(t *testing.T) {
	state := newFakeSessionState()
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteDemandas))

	require.False(t, decision.Allowed)
	require.Equal(t, router.LoginPath, decision.RedirectTo)
}

func TestAuthenticatedSessionCannotReenterLogin(t *testing.T) {
	state := newFakeSessionState()
	state.authenticated = true
	state.user = &users.User{ID: 7, Perfil: users.PerfilVereador}
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteLogin))

	require.False(t, decision.Allowed)
	require.Equal(t, router.RootPath, decision.RedirectTo)
}

func TestPerfilRestrictedRoute(t *testing.T) {
	tests := []struct {
		name    string
		perfil  users.Perfil
		allowed bool
	}{
		{name: "gestor allowed on relatorios", perfil: users.PerfilGestor, allowed: true},
		{name: "protocolo allowed on relatorios", perfil: users.PerfilProtocolo, allowed: true},
		{name: "vereador denied on relatorios", perfil: users.PerfilVereador, allowed: false},
		{name: "secretaria denied on relatorios", perfil: users.PerfilSecretaria, allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := newFakeSessionState()
			state.authenticated = true
			state.user = &users.User{ID: 7, Perfil: tc.perfil}
			guard := setupGuard(t, state)

			decision := guard.Evaluate(context.Background(), route(t, router.RouteRelatorios))

			require.Equal(t, tc.allowed, decision.Allowed)
			if !tc.allowed {
				require.Equal(t, router.AccessDeniedPath, decision.RedirectTo)
			}
		})
	}
}

// An unrestricted route with a stale profile cache proceeds immediately and
// refreshes the cache in the background.
func TestStaleProfileRefreshedInBackground(t *testing.T) {
	state := newFakeSessionState()
	state.authenticated = true
	state.fetchedUser = &users.User{ID: 7, Perfil: users.PerfilVereador}
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteDemandas))
	require.True(t, decision.Allowed)

	select {
	case <-state.fetched:
	case <-time.After(time.Second):
		t.Fatal("background profile fetch never happened")
	}
	require.Equal(t, 1, state.fetchCount())
}

// A perfil-restricted route blocks on profile resolution: the check cannot
// run against an unresolved profile.
func TestStaleProfileResolvedBeforePerfilCheck(t *testing.T) {
	state := newFakeSessionState()
	state.authenticated = true
	state.fetchedUser = &users.User{ID: 7, Perfil: users.PerfilGestor}
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteRelatorios))

	require.True(t, decision.Allowed)
	require.Equal(t, 1, state.fetchCount())
}

func TestProfileResolutionFailureRedirectsToLogin(t *testing.T) {
	state := newFakeSessionState()
	state.authenticated = true
	state.fetchErr = errors.New("current user fetch failed")
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteRelatorios))

	require.False(t, decision.Allowed)
	require.Equal(t, router.LoginPath, decision.RedirectTo)
}

func TestUnrestrictedRouteWithResolvedProfileSkipsFetch(t *testing.T) {
	state := newFakeSessionState()
	state.authenticated = true
	state.user = &users.User{ID: 7, Perfil: users.PerfilSecretaria}
	guard := setupGuard(t, state)

	decision := guard.Evaluate(context.Background(), route(t, router.RouteDemandas))

	require.True(t, decision.Allowed)
	require.Zero(t, state.fetchCount())
}

// Package router implements the navigation guard evaluated before every
// route transition: authentication gating, the login re-entry redirect and
// perfil-restricted routes.
package router

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sgdl/go-sgdl-client/users"
)

// SessionState is the read view of the session the guard needs, plus the
// ability to trigger a profile refresh when the cache is stale.
type SessionState interface {
	IsAuthenticated() bool
	CurrentUser() *users.User
	FetchCurrentUser(ctx context.Context) error
}

// Decision is the outcome of evaluating one route transition.
type Decision struct {
	Allowed    bool
	RedirectTo string // target path when not allowed
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirect(path string) Decision {
	return Decision{RedirectTo: path}
}

// Guard gates route transitions against the session.
type Guard struct {
	state SessionState
	log   zerolog.Logger
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(log zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

// NewGuard creates a navigation guard over the given session state.
func NewGuard(state SessionState, options ...GuardOption) (*Guard, error) {
	if state == nil {
		return nil, errors.New("[NewGuard] session state is required")
	}
	g := &Guard{state: state, log: zerolog.Nop()}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Evaluate applies the navigation policy to a target route:
//
//  1. An authenticated session never re-enters the login route; it is sent
//     to the application root instead.
//  2. Public routes are always allowed.
//  3. Everything else requires authentication; otherwise redirect to login.
//  4. A stale profile cache (authenticated, nothing cached) triggers a
//     refresh: in the background for unrestricted routes, blocking for
//     perfil-restricted ones, because the perfil check needs a resolved
//     profile.
//  5. Perfil-restricted routes require membership in the allowed set;
//     otherwise redirect to the access-denied page.
func (g *Guard) Evaluate(ctx context.Context, target Route) Decision {
	authenticated := g.state.IsAuthenticated()

	if target.Name == RouteLogin && authenticated {
		g.log.Debug().Msg("already authenticated, login route redirected to root")
		return redirect(RootPath)
	}
	if target.Public {
		return allow()
	}
	if !authenticated {
		g.log.Debug().Str("route", target.Name).Msg("unauthenticated, redirecting to login")
		return redirect(LoginPath)
	}

	if g.state.CurrentUser() == nil {
		if len(target.Perfis) == 0 {
			// Refresh the cache without holding up the transition. The
			// result lands in the session; a failure there follows the
			// unrecoverable-fetch path and terminates the session.
			go func() {
				_ = g.state.FetchCurrentUser(context.WithoutCancel(ctx))
			}()
			return allow()
		}
		if err := g.state.FetchCurrentUser(ctx); err != nil {
			g.log.Warn().Err(err).Str("route", target.Name).Msg("profile resolution failed during guard")
			return redirect(LoginPath)
		}
	}

	if !g.state.CurrentUser().HasPerfil(target.Perfis...) {
		g.log.Debug().Str("route", target.Name).Msg("perfil not allowed for route")
		return redirect(AccessDeniedPath)
	}
	return allow()
}

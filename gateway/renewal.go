package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// State is the renewal machine's state. It exists for observability and for
// making the dedup invariant checkable; transitions are driven entirely by
// renewAccessToken.
type State int

const (
	// StateNormal: no renewal in flight; requests go straight through.
	StateNormal State = iota
	// StateRenewing: one renewal call is in flight; concurrent 401s wait
	// for its outcome instead of issuing their own.
	StateRenewing
	// StateFailed: the last renewal was rejected or unreachable; the
	// session has been terminated.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateRenewing:
		return "renewing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// renewer serialises token renewal. At most one renewal call is in flight
// at a time; every caller that arrives while one is running shares its
// outcome.
type renewer struct {
	mu       sync.Mutex
	state    State
	inflight *renewalFlight
}

type renewalFlight struct {
	done chan struct{} // closed once err is settled
	err  error
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// RenewalState returns the current state of the renewal machine.
func (c *Client) RenewalState() State {
	c.renewer.mu.Lock()
	defer c.renewer.mu.Unlock()
	return c.renewer.state
}

// renewAccessToken exchanges the refresh token for a new access token,
// deduplicating concurrent callers. On success the session's access token
// has been swapped and the machine is back in StateNormal. On failure the
// session has been terminated and the returned error wraps ErrRenewalFailed.
func (c *Client) renewAccessToken(ctx context.Context) error {
	c.renewer.mu.Lock()
	if flight := c.renewer.inflight; flight != nil {
		c.renewer.mu.Unlock()
		select {
		case <-flight.done:
			return flight.err
		case <-ctx.Done():
			// The caller went away; the in-flight renewal settles on its
			// own and its result is picked up by the remaining waiters.
			return errors.Wrap(ctx.Err(), "[Client.renewAccessToken] canceled while awaiting renewal")
		}
	}
	refresh := c.session.RefreshToken()
	if refresh == "" {
		c.renewer.mu.Unlock()
		c.terminateSession("no refresh token")
		return errors.Wrap(ErrRenewalFailed, "[Client.renewAccessToken] no refresh token")
	}
	flight := &renewalFlight{done: make(chan struct{})}
	c.renewer.inflight = flight
	c.renewer.state = StateRenewing
	c.renewer.mu.Unlock()

	c.log.Debug().Msg("renewing access token")
	access, err := c.requestRenewal(ctx, refresh)

	c.renewer.mu.Lock()
	if err != nil {
		c.renewer.state = StateFailed
		flight.err = errors.Wrapf(ErrRenewalFailed, "[Client.renewAccessToken] %v", err)
	} else {
		// The swap happens before waiters are released so no replay can
		// read the stale token.
		if storeErr := c.session.SetAccessToken(access); storeErr != nil {
			c.log.Warn().Err(storeErr).Msg("renewed token not persisted")
		}
		c.renewer.state = StateNormal
	}
	c.renewer.inflight = nil
	c.renewer.mu.Unlock()
	close(flight.done)

	if flight.err != nil {
		c.terminateSession("renewal failed")
		return flight.err
	}
	c.log.Debug().Msg("access token renewed")
	return nil
}

// requestRenewal performs the actual call to the token-renewal endpoint.
// It goes through roundTrip directly: the 401-interception path must not
// apply to the renewal call itself.
func (c *Client) requestRenewal(ctx context.Context, refresh string) (string, error) {
	body, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return "", errors.Wrap(err, "[Client.requestRenewal] json.Marshal")
	}
	statusCode, respBody, err := c.roundTrip(ctx, http.MethodPost, TokenRefreshPath, "application/json", body, uuid.New().String(), c.session.AccessToken())
	if err != nil {
		return "", err
	}
	if statusCode != http.StatusOK {
		return "", &APIError{StatusCode: statusCode, Body: respBody}
	}
	var parsed refreshResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, "[Client.requestRenewal] json.Unmarshal")
	}
	if parsed.Access == "" {
		return "", errors.New("[Client.requestRenewal] empty access token in renewal response")
	}
	return parsed.Access, nil
}

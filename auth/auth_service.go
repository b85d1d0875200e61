// Package auth owns the session lifecycle: login, logout, current-user
// refresh and profile maintenance. It is the only component that mutates
// the Session; everything else reads it through its accessors.
package auth

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sgdl/go-sgdl-client/gateway"
	"github.com/sgdl/go-sgdl-client/sessions"
	"github.com/sgdl/go-sgdl-client/users"
)

const (
	currentUserPath    = "users/me/"
	changePasswordPath = "users/me/change-password/"
	passwordResetPath  = "password-reset/"
	resetConfirmPath   = "password-reset-confirm/"

	defaultLoginPath = "/login"
)

// Service is the session manager.
type Service struct {
	session   *sessions.Session
	gw        *gateway.Client
	navigator gateway.Navigator
	log       zerolog.Logger
	loginPath string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNavigator sets the receiver of the forced navigation on logout.
func WithNavigator(navigator gateway.Navigator) ServiceOption {
	return func(s *Service) {
		s.navigator = navigator
	}
}

// WithLogger sets the service's logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithLoginPath overrides the login entry point used on logout.
func WithLoginPath(path string) ServiceOption {
	return func(s *Service) {
		s.loginPath = path
	}
}

// NewService initializes a Service bound to a session and a gateway.
func NewService(session *sessions.Session, gw *gateway.Client, options ...ServiceOption) (*Service, error) {
	if session == nil {
		return nil, errors.New("[NewService] session is required")
	}
	if gw == nil {
		return nil, errors.New("[NewService] gateway is required")
	}
	s := &Service{
		session:   session,
		gw:        gw,
		navigator: gateway.NopNavigator{},
		log:       zerolog.Nop(),
		loginPath: defaultLoginPath,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Session exposes the session for read access by collaborators (the guard,
// the UI). Mutation stays inside this package.
func (s *Service) Session() *sessions.Session {
	return s.session
}

// IsAuthenticated reports whether an access token is present.
func (s *Service) IsAuthenticated() bool {
	return s.session.IsAuthenticated()
}

// CurrentUser returns the cached profile, or nil when none is cached.
func (s *Service) CurrentUser() *users.User {
	return s.session.CurrentUser()
}

type tokenPairRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair and then fetches the current
// user's profile. Login is atomic: when the profile fetch fails, the tokens
// stored by the token step are rolled back and prior session state wins.
func (s *Service) Login(ctx context.Context, username, password string, rememberMe bool) error {
	var pair tokenPairResponse
	err := s.gw.Post(ctx, gateway.TokenPath, tokenPairRequest{
		Username:   username,
		Password:   password,
		RememberMe: rememberMe,
	}, &pair)
	if err != nil {
		if gateway.IsStatus(err, http.StatusUnauthorized) {
			return errors.Wrap(InvalidCredentialsErr, "[Service.Login] token endpoint rejected credentials")
		}
		return errors.Wrap(err, "[Service.Login] token request")
	}

	if err := s.session.SetTokens(pair.Access, pair.Refresh); err != nil {
		s.log.Warn().Err(err).Msg("token pair not persisted, session will not survive restart")
	}

	if err := s.fetchCurrentUser(ctx); err != nil {
		s.session.Clear()
		return errors.Wrap(err, "[Service.Login] profile fetch after token issuance")
	}
	s.log.Info().Str("username", username).Msg("login succeeded")
	return nil
}

// FetchCurrentUser refreshes the cached profile from the backend. With no
// access token present it is a no-op. A backend rejection is treated as
// unrecoverable and logs the session out; a transport failure is propagated
// and leaves the session alone.
func (s *Service) FetchCurrentUser(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return nil
	}
	if err := s.fetchCurrentUser(ctx); err != nil {
		if errors.Is(err, gateway.ErrNetwork) {
			return err
		}
		if !errors.Is(err, gateway.ErrRenewalFailed) {
			// Renewal failure already terminated the session; anything else
			// means the token the gateway considered valid is not. Assume
			// the worst and log out.
			s.Logout()
		}
		return errors.Wrap(ProfileFetchFailedErr, err.Error())
	}
	return nil
}

func (s *Service) fetchCurrentUser(ctx context.Context) error {
	var u users.User
	if err := s.gw.Get(ctx, currentUserPath, nil, &u); err != nil {
		return err
	}
	if err := s.session.SetCurrentUser(&u); err != nil {
		s.log.Warn().Err(err).Msg("profile cache not persisted")
	}
	return nil
}

// Logout clears the session and forces navigation to the login entry point.
// Idempotent: logging out an already-logged-out session only repeats the
// navigation.
func (s *Service) Logout() {
	s.session.Clear()
	s.navigator.Navigate(s.loginPath)
	s.log.Info().Msg("logged out")
}

// UpdateCurrentUser merges a partial edit into the cached profile without a
// round trip, after a successful profile edit elsewhere.
func (s *Service) UpdateCurrentUser(update users.ProfileUpdate) error {
	return errors.Wrap(s.session.UpdateCurrentUser(update), "[Service.UpdateCurrentUser]")
}

// UpdateProfile PATCHes users/me/ and replaces the cached profile with the
// backend's response.
func (s *Service) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	var u users.User
	if err := s.gw.Patch(ctx, currentUserPath, update, &u); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateProfile]")
	}
	if err := s.session.SetCurrentUser(&u); err != nil {
		s.log.Warn().Err(err).Msg("profile cache not persisted")
	}
	return &u, nil
}

// UpdateProfileWithAvatar is UpdateProfile with a binary avatar attached,
// sent as multipart form data.
func (s *Service) UpdateProfileWithAvatar(ctx context.Context, update users.ProfileUpdate, avatarName string, avatar []byte) (*users.User, error) {
	form := gateway.NewMultipart()
	if update.Email != nil {
		form.Field("email", *update.Email)
	}
	if update.FirstName != nil {
		form.Field("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		form.Field("last_name", *update.LastName)
	}
	if update.Telefone != nil {
		form.Field("telefone", *update.Telefone)
	}
	form.File("avatar", avatarName, avatar)

	var u users.User
	if err := s.gw.PatchMultipart(ctx, currentUserPath, form, &u); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateProfileWithAvatar]")
	}
	if err := s.session.SetCurrentUser(&u); err != nil {
		s.log.Warn().Err(err).Msg("profile cache not persisted")
	}
	return &u, nil
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword changes the logged-in user's password.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	err := s.gw.Post(ctx, changePasswordPath, changePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
	return errors.Wrap(err, "[Service.ChangePassword]")
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset asks the backend to send a reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	err := s.gw.Post(ctx, passwordResetPath, passwordResetRequest{Email: email}, nil)
	return errors.Wrap(err, "[Service.RequestPasswordReset]")
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ConfirmPasswordReset completes a password reset with the emailed token.
func (s *Service) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	err := s.gw.Post(ctx, resetConfirmPath, passwordResetConfirmRequest{
		Token:    resetToken,
		Password: newPassword,
	}, nil)
	return errors.Wrap(err, "[Service.ConfirmPasswordReset]")
}

package sessions_test

import (
	"testing"

	"github.com/sgdl/go-sgdl-client/internal/utils"
	"github.com/sgdl/go-sgdl-client/sessions"
	"github.com/sgdl/go-sgdl-client/sessions/storefakes"
	"github.com/sgdl/go-sgdl-client/users"
	"github.com/stretchr/testify/require"
)

func TestSessionStartsEmpty(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())

	require.False(t, session.IsAuthenticated())
	require.Empty(t, session.AccessToken())
	require.Empty(t, session.RefreshToken())
	require.Nil(t, session.CurrentUser())
	require.True(t, session.Loading())

	session.FinishLoading()
	require.False(t, session.Loading())
}

func TestSessionHydratesFromStore(t *testing.T) {
	store := sessions.NewMemoryStore()
	require.NoError(t, store.Set(sessions.KeyAccessToken, "access-1"))
	require.NoError(t, store.Set(sessions.KeyRefreshToken, "refresh-1"))
	require.NoError(t, store.Set(sessions.KeyCurrentUser, `{"id":7,"username":"vereador1","perfil":"VEREADOR"}`))

	session := sessions.New(store)

	require.True(t, session.IsAuthenticated())
	require.Equal(t, "access-1", session.AccessToken())
	require.Equal(t, "refresh-1", session.RefreshToken())
	user := session.CurrentUser()
	require.NotNil(t, user)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, users.PerfilVereador, user.Perfil)
}

func TestSessionIgnoresCorruptCachedUser(t *testing.T) {
	store := sessions.NewMemoryStore()
	require.NoError(t, store.Set(sessions.KeyAccessToken, "access-1"))
	require.NoError(t, store.Set(sessions.KeyCurrentUser, "{not json"))

	session := sessions.New(store)

	require.True(t, session.IsAuthenticated())
	require.Nil(t, session.CurrentUser())
}

// isAuthenticated is a pure presence check on the access token.
func TestIsAuthenticatedTracksAccessTokenPresence(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())
	require.False(t, session.IsAuthenticated())

	require.NoError(t, session.SetTokens("access-1", "refresh-1"))
	require.True(t, session.IsAuthenticated())

	require.NoError(t, session.SetAccessToken(""))
	require.False(t, session.IsAuthenticated())

	require.NoError(t, session.SetAccessToken("access-2"))
	require.True(t, session.IsAuthenticated())

	session.Clear()
	require.False(t, session.IsAuthenticated())
}

func TestSetTokensPersists(t *testing.T) {
	store := storefakes.NewFakeStore()
	session := sessions.New(store)

	require.NoError(t, session.SetTokens("access-1", "refresh-1"))

	access, ok := store.Get(sessions.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", access)
	refresh, ok := store.Get(sessions.KeyRefreshToken)
	require.True(t, ok)
	require.Equal(t, "refresh-1", refresh)
}

func TestSetAccessTokenLeavesRefreshTokenAlone(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())
	require.NoError(t, session.SetTokens("access-1", "refresh-1"))

	require.NoError(t, session.SetAccessToken("access-2"))

	require.Equal(t, "access-2", session.AccessToken())
	require.Equal(t, "refresh-1", session.RefreshToken())
}

func TestCurrentUserReturnsACopy(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())
	require.NoError(t, session.SetCurrentUser(&users.User{ID: 1, Username: "vereador1"}))

	first := session.CurrentUser()
	first.Username = "mutated"

	require.Equal(t, "vereador1", session.CurrentUser().Username)
}

func TestUpdateCurrentUserMergesPartial(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())
	require.NoError(t, session.SetCurrentUser(&users.User{
		ID:        1,
		Username:  "vereador1",
		Email:     "old@camara.gov.br",
		FirstName: "Ana",
		Perfil:    users.PerfilVereador,
	}))

	require.NoError(t, session.UpdateCurrentUser(users.ProfileUpdate{
		Email:    utils.Ptr("new@camara.gov.br"),
		LastName: utils.Ptr("Souza"),
	}))

	user := session.CurrentUser()
	require.Equal(t, "new@camara.gov.br", user.Email)
	require.Equal(t, "Souza", user.LastName)
	require.Equal(t, "Ana", user.FirstName)
	require.Equal(t, users.PerfilVereador, user.Perfil)
}

func TestUpdateCurrentUserWithoutCachedProfileIsNoop(t *testing.T) {
	session := sessions.New(sessions.NewMemoryStore())
	require.NoError(t, session.UpdateCurrentUser(users.ProfileUpdate{Email: utils.Ptr("x@y.z")}))
	require.Nil(t, session.CurrentUser())
}

func TestClearIsIdempotent(t *testing.T) {
	store := sessions.NewMemoryStore()
	session := sessions.New(store)
	require.NoError(t, session.SetTokens("access-1", "refresh-1"))
	require.NoError(t, session.SetCurrentUser(&users.User{ID: 1}))

	session.Clear()
	session.Clear()

	require.False(t, session.IsAuthenticated())
	require.Empty(t, session.RefreshToken())
	require.Nil(t, session.CurrentUser())
	_, ok := store.Get(sessions.KeyAccessToken)
	require.False(t, ok)
	_, ok = store.Get(sessions.KeyCurrentUser)
	require.False(t, ok)
}

// A store that refuses writes degrades the session to memory-only; the
// in-memory state keeps working.
func TestSessionSurvivesFailingStore(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.FailSets = true
	session := sessions.New(store)

	err := session.SetTokens("access-1", "refresh-1")
	require.Error(t, err)
	require.True(t, session.IsAuthenticated())
	require.Equal(t, "access-1", session.AccessToken())
}

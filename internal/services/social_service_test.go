package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/services"
)

const testStateSecret = "state-secret"

func fakeProvider(t *testing.T, profile services.SocialProfile) *services.SocialProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &services.SocialProvider{
		Config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://cafe.test/auth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		ProfileURL: srv.URL + "/me",
	}
}

func newSocialService(t *testing.T, store *repotest.Store, profile services.SocialProfile) *services.SocialService {
	svc := services.NewSocialService(store.TxManager(), store.Users(), store.SocialLogins(), testStateSecret)
	svc.Register(services.ProviderGoogle, fakeProvider(t, profile))
	return svc
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestSocialLoginCreatesVerifiedUser(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	seedUser(t, store, "aiko", "matcha2024", func(u *models.User) { u.Email = "someone-else@example.com" })
	svc := newSocialService(t, store, services.SocialProfile{Sub: "g-42", Name: "Aiko Tanaka", Email: "aiko@example.com"})

	authURL, err := svc.AuthURL(services.ProviderGoogle, "nonce-1")
	require.NoError(t, err)

	user, err := svc.Callback(ctx, services.ProviderGoogle, stateFrom(t, authURL), "nonce-1", "code")
	require.NoError(t, err)
	assert.Equal(t, "aiko1", user.Username, "taken usernames get a counter")
	assert.Equal(t, "aiko@example.com", user.Email)
	assert.Equal(t, "Aiko Tanaka", user.FullName)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.PasswordHash)
	assert.NotNil(t, store.User(user.ID).LastLogin)

	again, err := svc.Callback(ctx, services.ProviderGoogle, stateFrom(t, authURL), "nonce-1", "code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "linked account is reused")
}

func TestSocialLoginLinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	existing := seedUser(t, store, "aiko", "matcha2024")
	svc := newSocialService(t, store, services.SocialProfile{ID: "fb-7", Name: "Aiko", Email: existing.Email})

	authURL, err := svc.AuthURL(services.ProviderGoogle, "n")
	require.NoError(t, err)
	user, err := svc.Callback(ctx, services.ProviderGoogle, stateFrom(t, authURL), "n", "code")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	link, err := store.SocialLogins().Find(ctx, services.ProviderGoogle, "fb-7")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, link.UserID)
}

func TestSocialLoginRejectsBadState(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	svc := newSocialService(t, store, services.SocialProfile{Sub: "g-1", Email: "a@example.com"})

	authURL, err := svc.AuthURL(services.ProviderGoogle, "nonce-1")
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	_, err = svc.Callback(ctx, services.ProviderGoogle, state, "other-nonce", "code")
	assert.ErrorIs(t, err, apperrors.ErrSocialAuthFailed)
	_, err = svc.Callback(ctx, services.ProviderGoogle, "garbage", "nonce-1", "code")
	assert.ErrorIs(t, err, apperrors.ErrSocialAuthFailed)
	_, err = svc.Callback(ctx, services.ProviderGoogle, state, "nonce-1", "")
	assert.ErrorIs(t, err, apperrors.ErrSocialAuthFailed)
}

func TestSocialLoginUnknownProvider(t *testing.T) {
	store := repotest.NewStore()
	svc := services.NewSocialService(store.TxManager(), store.Users(), store.SocialLogins(), testStateSecret)
	svc.Register(services.ProviderFacebook, services.FacebookProvider("", "", ""))

	_, err := svc.AuthURL(services.ProviderFacebook, "n")
	assert.ErrorIs(t, err, apperrors.ErrUnknownProvider, "providers without credentials stay disabled")
	_, err = svc.AuthURL("twitter", "n")
	assert.ErrorIs(t, err, apperrors.ErrUnknownProvider)
}

func TestSocialLoginRequiresEmailForNewAccounts(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	svc := newSocialService(t, store, services.SocialProfile{ID: "fb-9", Name: "No Mail"})

	authURL, err := svc.AuthURL(services.ProviderGoogle, "n")
	require.NoError(t, err)
	_, err = svc.Callback(ctx, services.ProviderGoogle, stateFrom(t, authURL), "n", "code")
	assert.ErrorIs(t, err, apperrors.ErrSocialAuthFailed)
}

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/session"
)

type stubRestorer struct {
	user  *models.User
	token string
}

func (r stubRestorer) Restore(_ context.Context, token string) (*models.User, error) {
	if token != r.token || r.user == nil {
		return nil, apperrors.ErrInvalidOrExpired
	}
	return r.user, nil
}

type testApp struct {
	app   *fiber.App
	store *session.MemoryStore
}

func newTestApp(restorer middleware.Restorer) *testApp {
	store := session.NewMemoryStore()
	mgr := middleware.NewSessionManager(store, restorer, time.Hour, false)
	app := fiber.New()
	app.Use(mgr.Handler())

	app.Get("/state", func(c *fiber.Ctx) error {
		sess := middleware.Current(c)
		return c.JSON(fiber.Map{
			"csrf":    sess.Data.CSRFToken,
			"user":    sess.Data.UserID,
			"flashes": sess.PopFlashes(),
		})
	})
	app.Post("/login", func(c *fiber.Ctx) error {
		return middleware.Current(c).Login(uuid.New(), "aiko", "Aiko")
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		middleware.Current(c).Destroy()
		return nil
	})
	app.Post("/protected",
		middleware.Guard(middleware.GuardConfig{Auth: true, CSRF: true, Action: "redeem_reward", Fallback: "/profile"}),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	app.Post("/json",
		middleware.Guard(middleware.GuardConfig{Auth: true, CSRF: true, JSON: true}),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	return &testApp{app: app, store: store}
}

type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]string
}

func (ta *testApp) client(t *testing.T) *client {
	return &client{t: t, app: ta, cookies: map[string]string{}}
}

func (cl *client) do(method, path string, form url.Values, headers map[string]string) *http.Response {
	cl.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := cl.app.app.Test(req)
	require.NoError(cl.t, err)
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

type stateBody struct {
	CSRF    string          `json:"csrf"`
	User    uuid.UUID       `json:"user"`
	Flashes []session.Flash `json:"flashes"`
}

func (cl *client) state() stateBody {
	cl.t.Helper()
	resp := cl.do(http.MethodGet, "/state", nil, nil)
	var body stateBody
	require.NoError(cl.t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSessionPersistsCSRFToken(t *testing.T) {
	cl := newTestApp(nil).client(t)

	first := cl.state()
	require.Len(t, first.CSRF, 64)
	assert.Equal(t, first.CSRF, cl.state().CSRF)
}

func TestLoginRotatesSessionCookie(t *testing.T) {
	ta := newTestApp(nil)
	cl := ta.client(t)

	csrf := cl.state().CSRF
	before := cl.cookies[middleware.SessionCookie]

	cl.do(http.MethodPost, "/login", nil, nil)
	after := cl.cookies[middleware.SessionCookie]
	assert.NotEqual(t, before, after)

	_, err := ta.store.Get(context.Background(), before)
	assert.ErrorIs(t, err, session.ErrNotFound, "pre-login session is dropped")

	state := cl.state()
	assert.NotEqual(t, uuid.Nil, state.User)
	assert.Equal(t, csrf, state.CSRF)
}

func TestLogoutDestroysSession(t *testing.T) {
	ta := newTestApp(nil)
	cl := ta.client(t)
	cl.do(http.MethodPost, "/login", nil, nil)
	id := cl.cookies[middleware.SessionCookie]

	cl.do(http.MethodPost, "/logout", nil, nil)
	_, err := ta.store.Get(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, uuid.Nil, cl.state().User)
}

func TestRememberCookieRestoresLogin(t *testing.T) {
	user := &models.User{Username: "aiko", FullName: "Aiko"}
	user.ID = uuid.New()
	cl := newTestApp(stubRestorer{user: user, token: "remember-me"}).client(t)

	cl.cookies[middleware.RememberCookie] = "remember-me"
	assert.Equal(t, user.ID, cl.state().User)
}

func TestInvalidRememberCookieIsCleared(t *testing.T) {
	cl := newTestApp(stubRestorer{token: "other"}).client(t)

	cl.cookies[middleware.RememberCookie] = "stale"
	assert.Equal(t, uuid.Nil, cl.state().User)
	assert.NotContains(t, cl.cookies, middleware.RememberCookie)
}

func TestGuardOrder(t *testing.T) {
	t.Run("anonymous is sent home", func(t *testing.T) {
		cl := newTestApp(nil).client(t)
		csrf := cl.state().CSRF
		resp := cl.do(http.MethodPost, "/protected", url.Values{"csrf_token": {csrf}, "action": {"redeem_reward"}}, nil)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		flashes := cl.state().Flashes
		require.Len(t, flashes, 1)
		assert.Equal(t, "Please log in to continue", flashes[0].Message)
	})

	t.Run("bad token goes back to referer", func(t *testing.T) {
		cl := newTestApp(nil).client(t)
		cl.do(http.MethodPost, "/login", nil, nil)
		resp := cl.do(http.MethodPost, "/protected",
			url.Values{"csrf_token": {"forged"}, "action": {"redeem_reward"}},
			map[string]string{"Referer": "http://example.com/menu?x=1"})
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/menu", resp.Header.Get("Location"))
		flashes := cl.state().Flashes
		require.Len(t, flashes, 1)
		assert.Equal(t, session.FlashError, flashes[0].Kind)
		assert.Equal(t, "Invalid security token", flashes[0].Message)
	})

	t.Run("foreign referer falls back", func(t *testing.T) {
		cl := newTestApp(nil).client(t)
		cl.do(http.MethodPost, "/login", nil, nil)
		resp := cl.do(http.MethodPost, "/protected",
			url.Values{"csrf_token": {"forged"}},
			map[string]string{"Referer": "https://evil.test/phish"})
		assert.Equal(t, "/profile", resp.Header.Get("Location"))
	})

	t.Run("wrong action", func(t *testing.T) {
		cl := newTestApp(nil).client(t)
		cl.do(http.MethodPost, "/login", nil, nil)
		csrf := cl.state().CSRF
		resp := cl.do(http.MethodPost, "/protected", url.Values{"csrf_token": {csrf}, "action": {"other"}}, nil)
		assert.Equal(t, "/profile", resp.Header.Get("Location"))
		assert.Equal(t, "Invalid action", cl.state().Flashes[0].Message)
	})

	t.Run("all checks pass", func(t *testing.T) {
		cl := newTestApp(nil).client(t)
		cl.do(http.MethodPost, "/login", nil, nil)
		csrf := cl.state().CSRF
		resp := cl.do(http.MethodPost, "/protected", url.Values{"csrf_token": {csrf}, "action": {"redeem_reward"}}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestGuardJSON(t *testing.T) {
	cl := newTestApp(nil).client(t)

	resp := cl.do(http.MethodPost, "/json", url.Values{}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cl.do(http.MethodPost, "/login", nil, nil)
	resp = cl.do(http.MethodPost, "/json", url.Values{}, map[string]string{middleware.CSRFHeader: "nope"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid security token", body["message"])

	csrf := cl.state().CSRF
	resp = cl.do(http.MethodPost, "/json", url.Values{}, map[string]string{middleware.CSRFHeader: csrf})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

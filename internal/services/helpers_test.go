package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/utils"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// tokenFrom pulls the token query value out of a mailed link.
func tokenFrom(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "token=")
	require.NotEqual(t, -1, i, "no link in mail body")
	rest := body[i+len("token="):]
	if j := strings.IndexAny(rest, "\n "); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func seedUser(t *testing.T, store *repotest.Store, username, password string, mutate ...func(*models.User)) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := models.User{
		Username:      username,
		Email:         username + "@example.com",
		FullName:      "Test User",
		PasswordHash:  hash,
		EmailVerified: true,
	}
	for _, fn := range mutate {
		fn(&u)
	}
	return store.PutUser(u)
}

func seedItem(store *repotest.Store, name, price string, stock int) models.MenuItem {
	return store.PutMenuItem(models.MenuItem{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
	})
}

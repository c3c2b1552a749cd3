// Package repotest provides in-memory repositories with transactional
// rollback for service and handler tests.
package repotest

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

var errDuplicate = errors.New("duplicate key value violates unique constraint")

type data struct {
	users      map[uuid.UUID]models.User
	attempts   []models.LoginAttempt
	tokens     map[models.TokenKind]map[uuid.UUID]models.Token
	categories map[uuid.UUID]models.Category
	menu       map[uuid.UUID]models.MenuItem
	orders     map[uuid.UUID]models.Order
	rewards    []models.UserReward
	reviews    map[uuid.UUID]models.Review
	reviewCats []models.ReviewCategory
	replies    []models.ReviewReply
	reactions  map[uuid.UUID]models.ReviewReaction
	social     []models.SocialLogin
	manga      []models.Manga
}

func newData() data {
	return data{
		users:      map[uuid.UUID]models.User{},
		tokens:     map[models.TokenKind]map[uuid.UUID]models.Token{},
		categories: map[uuid.UUID]models.Category{},
		menu:       map[uuid.UUID]models.MenuItem{},
		orders:     map[uuid.UUID]models.Order{},
		reviews:    map[uuid.UUID]models.Review{},
		reactions:  map[uuid.UUID]models.ReviewReaction{},
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	c.attempts = append(c.attempts, d.attempts...)
	for kind, rows := range d.tokens {
		c.tokens[kind] = map[uuid.UUID]models.Token{}
		for k, v := range rows {
			c.tokens[kind][k] = v
		}
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.menu {
		c.menu[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	c.rewards = append(c.rewards, d.rewards...)
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	c.reviewCats = append(c.reviewCats, d.reviewCats...)
	c.replies = append(c.replies, d.replies...)
	for k, v := range d.reactions {
		c.reactions[k] = v
	}
	c.social = append(c.social, d.social...)
	c.manga = append(c.manga, d.manga...)
	return c
}

// Store is an in-memory database. Transactions run one at a time and roll
// back every write made inside them when the callback fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    data
	fail map[string]error
}

func NewStore() *Store {
	return &Store{d: newData(), fail: map[string]error{}}
}

// Fail makes the named operation return err until cleared with a nil err.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) failure(op string) error {
	return s.fail[op]
}

func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) TxManager() repository.TransactionManager { return s }

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) LoginAttempts() repository.LoginAttemptRepository { return &attemptRepo{s} }
func (s *Store) Tokens() repository.TokenRepository               { return &tokenRepo{s} }
func (s *Store) Menu() repository.MenuRepository                  { return &menuRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return &orderRepo{s} }
func (s *Store) Rewards() repository.RewardRepository             { return &rewardRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return &reviewRepo{s} }
func (s *Store) SocialLogins() repository.SocialLoginRepository   { return &socialRepo{s} }
func (s *Store) Manga() repository.MangaRepository                { return &mangaRepo{s} }

// Set returns every repository backed by this store.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Tx:            s.TxManager(),
		Users:         s.Users(),
		LoginAttempts: s.LoginAttempts(),
		Tokens:        s.Tokens(),
		Menu:          s.Menu(),
		Orders:        s.Orders(),
		Rewards:       s.Rewards(),
		Reviews:       s.Reviews(),
		SocialLogins:  s.SocialLogins(),
		Manga:         s.Manga(),
	}
}

// Seed helpers.

func (s *Store) PutUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.d.users[u.ID] = u
	return u
}

func (s *Store) User(id uuid.UUID) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.users[id]
}

func (s *Store) PutMenuItem(item models.MenuItem) models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CategoryID != uuid.Nil {
		if cat, ok := s.d.categories[item.CategoryID]; ok {
			item.Category = &cat
		}
	}
	s.d.menu[item.ID] = item
	return item
}

func (s *Store) PutCategory(cat models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cat.ID == uuid.Nil {
		cat.ID = uuid.New()
	}
	s.d.categories[cat.ID] = cat
	return cat
}

func (s *Store) MenuItem(id uuid.UUID) models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.menu[id]
}

func (s *Store) PutToken(kind models.TokenKind, t models.Token) models.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if s.d.tokens[kind] == nil {
		s.d.tokens[kind] = map[uuid.UUID]models.Token{}
	}
	s.d.tokens[kind][t.ID] = t
	return t
}

func (s *Store) TokensFor(kind models.TokenKind, userID uuid.UUID) []models.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Token
	for _, t := range s.d.tokens[kind] {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) AttemptCount(ip string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.d.attempts {
		if a.IPAddress == ip {
			n++
		}
	}
	return n
}

func (s *Store) AllOrders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.d.orders))
	for _, o := range s.d.orders {
		out = append(out, o)
	}
	return out
}

func (s *Store) AllRewards() []models.UserReward {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserReward(nil), s.d.rewards...)
}

func (s *Store) PutReview(r models.Review) models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.d.reviews[r.ID] = r
	return r
}

func (s *Store) Review(id uuid.UUID) models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.reviews[id]
}

func (s *Store) PutReviewCategory(name string) models.ReviewCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.ReviewCategory{Name: name}
	c.ID = uuid.New()
	s.d.reviewCats = append(s.d.reviewCats, c)
	return c
}

func (s *Store) Replies() []models.ReviewReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ReviewReply(nil), s.d.replies...)
}

func (s *Store) PutManga(m models.Manga) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.d.manga = append(s.d.manga, m)
}

package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

func stamp(b *models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.create"); err != nil {
		return err
	}
	for _, u := range r.s.d.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errDuplicate
		}
	}
	stamp(&user.BaseModel)
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *userRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.FindByID(ctx, id)
}

func (r *userRepo) FindByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Username == username || u.Email == email })
	return err == nil, nil
}

func (r *userRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Username == username })
	return err == nil, nil
}

func (r *userRepo) EmailTakenByOther(_ context.Context, email string, userID uuid.UUID) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Email == email && u.ID != userID })
	return err == nil, nil
}

func (r *userRepo) update(id uuid.UUID, op string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(op); err != nil {
		return err
	}
	u, ok := r.s.d.users[id]
	if !ok {
		return nil
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.s.d.users[id] = u
	return nil
}

func (r *userRepo) UpdateProfile(_ context.Context, id uuid.UUID, fullName, email, phone string) error {
	return r.update(id, "users.update_profile", func(u *models.User) {
		u.FullName, u.Email, u.Phone = fullName, email, phone
	})
}

func (r *userRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, "users.update_password", func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatar string) error {
	return r.update(id, "users.update_avatar", func(u *models.User) { u.Avatar = avatar })
}

func (r *userRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	return r.update(id, "users.mark_verified", func(u *models.User) { u.EmailVerified = true })
}

func (r *userRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, "users.touch_last_login", func(u *models.User) { u.LastLogin = &at })
}

func (r *userRepo) AddPoints(_ context.Context, id uuid.UUID, delta int) error {
	return r.update(id, "users.add_points", func(u *models.User) { u.Points += delta })
}

type attemptRepo struct{ s *Store }

func (r *attemptRepo) Record(_ context.Context, ip string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := models.LoginAttempt{IPAddress: ip, AttemptTime: at}
	stamp(&a.BaseModel)
	r.s.d.attempts = append(r.s.d.attempts, a)
	return nil
}

func (r *attemptRepo) Window(_ context.Context, ip string, since time.Time) (int64, time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	var oldest time.Time
	for _, a := range r.s.d.attempts {
		if a.IPAddress != ip || a.AttemptTime.Before(since) {
			continue
		}
		count++
		if oldest.IsZero() || a.AttemptTime.Before(oldest) {
			oldest = a.AttemptTime
		}
	}
	return count, oldest, nil
}

func (r *attemptRepo) Clear(_ context.Context, ip string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.d.attempts[:0]
	for _, a := range r.s.d.attempts {
		if a.IPAddress != ip {
			kept = append(kept, a)
		}
	}
	r.s.d.attempts = kept
	return nil
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(_ context.Context, kind models.TokenKind, token *models.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tokens.create"); err != nil {
		return err
	}
	stamp(&token.BaseModel)
	if r.s.d.tokens[kind] == nil {
		r.s.d.tokens[kind] = map[uuid.UUID]models.Token{}
	}
	r.s.d.tokens[kind][token.ID] = *token
	return nil
}

func (r *tokenRepo) FindValid(_ context.Context, kind models.TokenKind, token string, now time.Time) (*models.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.d.tokens[kind] {
		if t.Token == token && t.Usable(now) {
			found := t
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *tokenRepo) Consume(_ context.Context, kind models.TokenKind, id uuid.UUID, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.d.tokens[kind][id]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	t.UsedAt = &now
	r.s.d.tokens[kind][id] = t
	return true, nil
}

func (r *tokenRepo) InvalidateForUser(_ context.Context, kind models.TokenKind, userID uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.d.tokens[kind] {
		if t.UserID == userID && !t.Used {
			t.Used = true
			t.UsedAt = &now
			r.s.d.tokens[kind][id] = t
		}
	}
	return nil
}

func (r *tokenRepo) Delete(_ context.Context, kind models.TokenKind, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.d.tokens[kind] {
		if t.Token == token {
			delete(r.s.d.tokens[kind], id)
		}
	}
	return nil
}

type menuRepo struct{ s *Store }

func (r *menuRepo) FindByID(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.d.menu[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (r *menuRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return r.FindByID(ctx, id)
}

func (r *menuRepo) ListAvailable(_ context.Context) ([]models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []models.MenuItem
	for _, item := range r.s.d.menu {
		if item.IsAvailable {
			items = append(items, item)
		}
	}
	categoryName := func(i models.MenuItem) string {
		if i.Category == nil {
			return ""
		}
		return i.Category.Name
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := categoryName(items[i]), categoryName(items[j])
		if ci != cj {
			return ci < cj
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *menuRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("menu.decrement_stock"); err != nil {
		return err
	}
	item := r.s.d.menu[id]
	item.Stock -= quantity
	r.s.d.menu[id] = item
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("orders.create"); err != nil {
		return err
	}
	stamp(&order.BaseModel)
	for i := range order.Items {
		stamp(&order.Items[i].BaseModel)
		order.Items[i].OrderID = order.ID
	}
	if order.Payment != nil {
		stamp(&order.Payment.BaseModel)
		order.Payment.OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	r.s.d.orders[order.ID] = stored
	return nil
}

func (r *orderRepo) FindForUser(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.d.orders[id]
	if !ok || order.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &order, nil
}

func (r *orderRepo) ListForUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.Order
	for _, o := range r.s.d.orders {
		if o.UserID == userID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *orderRepo) Totals(_ context.Context, userID uuid.UUID) (int64, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	spent := decimal.Zero
	for _, o := range r.s.d.orders {
		if o.UserID == userID {
			count++
			spent = spent.Add(o.TotalAmount)
		}
	}
	return count, spent, nil
}

type rewardRepo struct{ s *Store }

func (r *rewardRepo) Create(_ context.Context, reward *models.UserReward) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("rewards.create"); err != nil {
		return err
	}
	stamp(&reward.BaseModel)
	r.s.d.rewards = append(r.s.d.rewards, *reward)
	return nil
}

func (r *rewardRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]models.UserReward, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.UserReward
	for i := len(r.s.d.rewards) - 1; i >= 0; i-- {
		if r.s.d.rewards[i].UserID == userID {
			out = append(out, r.s.d.rewards[i])
		}
	}
	return out, nil
}

type socialRepo struct{ s *Store }

func (r *socialRepo) Find(_ context.Context, provider, socialID string) (*models.SocialLogin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.d.social {
		if l.Provider == provider && l.SocialID == socialID {
			found := l
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *socialRepo) Create(_ context.Context, link *models.SocialLogin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&link.BaseModel)
	r.s.d.social = append(r.s.d.social, *link)
	return nil
}

type mangaRepo struct{ s *Store }

func (r *mangaRepo) List(_ context.Context, genre, search string) ([]models.Manga, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Manga
	for _, m := range r.s.d.manga {
		if genre != "" && m.Genre != genre {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *mangaRepo) Genres(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var genres []string
	for _, m := range r.s.d.manga {
		if !seen[m.Genre] {
			seen[m.Genre] = true
			genres = append(genres, m.Genre)
		}
	}
	sort.Strings(genres)
	return genres, nil
}

var _ repository.ReviewRepository = (*reviewRepo)(nil)

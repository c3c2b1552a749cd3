package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/utils"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"

	stateTTL = 10 * time.Minute
)

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SocialProvider is an OAuth2 client plus the endpoint returning the
// signed-in account.
type SocialProvider struct {
	Config     *oauth2.Config
	ProfileURL string
}

// SocialProfile is the subset of provider account data used for login.
type SocialProfile struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p SocialProfile) subject() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Sub
}

// GoogleProvider returns a provider configured for Google sign-in.
func GoogleProvider(clientID, clientSecret, redirectURL string) *SocialProvider {
	return &SocialProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		ProfileURL: "https://www.googleapis.com/oauth2/v3/userinfo",
	}
}

func FacebookProvider(clientID, clientSecret, redirectURL string) *SocialProvider {
	return &SocialProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Facebook,
			Scopes:       []string{"email", "public_profile"},
		},
		ProfileURL: "https://graph.facebook.com/v12.0/me?fields=id,name,email",
	}
}

type SocialService struct {
	txm       repository.TransactionManager
	users     repository.UserRepository
	links     repository.SocialLoginRepository
	providers map[string]*SocialProvider
	secret    string
	Now       func() time.Time
}

func NewSocialService(txm repository.TransactionManager, users repository.UserRepository, links repository.SocialLoginRepository, secret string) *SocialService {
	return &SocialService{
		txm:       txm,
		users:     users,
		links:     links,
		providers: map[string]*SocialProvider{},
		secret:    secret,
		Now:       time.Now,
	}
}

// Register enables a provider. Providers without a client id are skipped.
func (s *SocialService) Register(name string, p *SocialProvider) {
	if p == nil || p.Config.ClientID == "" {
		return
	}
	s.providers[name] = p
}

func (s *SocialService) provider(name string) (*SocialProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, apperrors.ErrUnknownProvider
	}
	return p, nil
}

// AuthURL builds the provider consent URL. The state is signed and bound
// to nonce, which the caller keeps in the session.
func (s *SocialService) AuthURL(name, nonce string) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	state, err := utils.GenerateState(s.secret, name, nonce, stateTTL)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return p.Config.AuthCodeURL(state), nil
}

// Callback completes the code exchange and returns the local account,
// linking or creating it as needed.
func (s *SocialService) Callback(ctx context.Context, name, state, nonce, code string) (*models.User, error) {
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}
	if err := utils.ParseState(s.secret, state, name, nonce); err != nil {
		log.Printf("[Social] rejected %s state: %v", name, err)
		return nil, apperrors.ErrSocialAuthFailed
	}
	if code == "" {
		return nil, apperrors.ErrSocialAuthFailed
	}

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		log.Printf("[Social] %s code exchange failed: %v", name, err)
		return nil, apperrors.ErrSocialAuthFailed
	}
	profile, err := fetchProfile(ctx, p, token)
	if err != nil {
		log.Printf("[Social] %s profile fetch failed: %v", name, err)
		return nil, apperrors.ErrSocialAuthFailed
	}

	user, err := s.resolve(ctx, name, profile)
	if err != nil {
		if errors.Is(err, apperrors.ErrSocialAuthFailed) {
			return nil, err
		}
		log.Printf("[Social] %s login for %s failed: %v", name, profile.subject(), err)
		return nil, apperrors.ErrSocialAuthFailed
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, s.Now()); err != nil {
		log.Printf("[Social] failed to update last login for %s: %v", user.ID, err)
	}
	return user, nil
}

func fetchProfile(ctx context.Context, p *SocialProvider, token *oauth2.Token) (*SocialProfile, error) {
	client := p.Config.Client(ctx, token)
	resp, err := client.Get(p.ProfileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}
	var profile SocialProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if profile.subject() == "" {
		return nil, errors.New("profile has no account id")
	}
	return &profile, nil
}

// resolve finds the user already linked to the provider account, then a
// user with the same email, and otherwise creates one.
func (s *SocialService) resolve(ctx context.Context, provider string, profile *SocialProfile) (*models.User, error) {
	subject := profile.subject()

	link, err := s.links.Find(ctx, provider, subject)
	if err == nil {
		return s.users.FindByID(ctx, link.UserID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("find link: %w", err)
	}

	if profile.Email == "" {
		return nil, apperrors.ErrSocialAuthFailed
	}

	var user *models.User
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.users.FindByEmail(txCtx, profile.Email)
		switch {
		case err == nil:
			user = existing
		case errors.Is(err, apperrors.ErrNotFound):
			user, err = s.createUser(txCtx, profile)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("find by email: %w", err)
		}
		return s.links.Create(txCtx, &models.SocialLogin{UserID: user.ID, Provider: provider, SocialID: subject})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SocialService) createUser(ctx context.Context, profile *SocialProfile) (*models.User, error) {
	username, err := s.uniqueUsername(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = username
	}
	user := &models.User{
		Username:      username,
		Email:         profile.Email,
		FullName:      name,
		EmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// uniqueUsername derives a username from the email local part and appends
// a counter until it is free.
func (s *SocialService) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) > 16 {
		base = base[:16]
	}
	if len(base) < 3 {
		base = "user" + base
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

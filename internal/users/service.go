package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/shared/auth"
	"visaverse-backend/internal/shared/telemetry"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Sign(id auth.Identity) (string, time.Time, error)
}

// Auditor records admin mutations.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	Repo   Repo
	Tokens TokenIssuer
	Audit  Auditor
	Cost   int
	Now    func() time.Time
}

func NewService(repo Repo, tokens TokenIssuer, auditor Auditor) *Service {
	return &Service{Repo: repo, Tokens: tokens, Audit: auditor, Cost: bcrypt.DefaultCost, Now: time.Now}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Roles       []string  `json:"roles"`
}

// CreateInput describes a new admin user.
type CreateInput struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	OrganizationID string   `json:"organization_id"`
	Roles          []string `json:"roles"`
}

// Login verifies credentials and issues a token. When no user exists yet,
// the first login creates that account as admin.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if s == nil || s.Repo == nil || s.Tokens == nil {
		return LoginResult{}, errors.New("users service not configured")
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		count, cerr := s.Repo.Count(ctx)
		if cerr != nil {
			return LoginResult{}, cerr
		}
		if count > 0 {
			return LoginResult{}, ErrInvalidCredentials
		}
		user, err = s.newUser(CreateInput{Email: email, Password: password, Roles: []string{RoleAdmin}})
		if err != nil {
			return LoginResult{}, err
		}
		if err := s.Repo.CreateFirst(ctx, user); err != nil {
			if errors.Is(err, ErrUsersExist) || errors.Is(err, ErrEmailTaken) {
				return LoginResult{}, ErrInvalidCredentials
			}
			return LoginResult{}, err
		}
		s.record(ctx, audit.Actor{UserID: user.ID}, user, "user.bootstrap")
	case err != nil:
		return LoginResult{}, err
	default:
		if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return LoginResult{}, ErrInvalidCredentials
		}
	}

	token, exp, err := s.Tokens.Sign(auth.Identity{
		UserID:         user.ID,
		Email:          user.Email,
		Roles:          user.Roles,
		OrganizationID: user.OrganizationID,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{AccessToken: token, TokenType: "bearer", ExpiresAt: exp, Roles: user.Roles}, nil
}

// Create adds a user. Without explicit roles the user becomes an editor.
func (s *Service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if len(input.Roles) == 0 {
		input.Roles = []string{RoleEditor}
	}
	if input.OrganizationID == "" {
		input.OrganizationID = actor.OrganizationID
	}
	user, err := s.newUser(input)
	if err != nil {
		return User{}, err
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	s.record(ctx, actor, user, "user.create")
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

func (s *Service) newUser(input CreateInput) (User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	roles := dedupeRoles(input.Roles)
	for _, role := range roles {
		if !ValidRole(role) {
			return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC()
	return User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		OrganizationID: strings.TrimSpace(input.OrganizationID),
		Roles:          roles,
		IsActive:       true,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}, nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, user User, action string) {
	if s.Audit == nil {
		return
	}
	after := fmt.Sprintf("%s|%s|%s", user.Email, strings.Join(user.Roles, ","), user.OrganizationID)
	err := s.Audit.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		ResourceType: "user",
		ResourceID:   user.ID,
		After:        &after,
	})
	if err != nil {
		telemetry.Error("audit.record.failed", map[string]any{"action": action, "resource_id": user.ID, "err": err})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func dedupeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if _, ok := seen[r]; ok || r == "" {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

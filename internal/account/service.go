package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/bizassess/internal/apperr"
	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
	"github.com/mind-engage/bizassess/internal/rbac"
)

type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, u *User) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	UpsertAdmin(ctx context.Context, u *User) error
	SetPassword(ctx context.Context, id string, hash []byte) error
	List(ctx context.Context, role string) ([]User, error)
	SetAccess(ctx context.Context, id, role string, active bool) error
}

type Tokens interface {
	IssuePair(id auth.Identity) (auth.Pair, error)
	Parse(token string, want auth.TokenType) (*auth.Claims, error)
}

type Service struct {
	store  Store
	tokens Tokens
	log    *zap.Logger
	cost   int
	now    func() time.Time
	idGen  func() string
}

func NewService(store Store, tokens Tokens, bcryptCost int, log *zap.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		tokens: tokens,
		log:    log,
		cost:   bcryptCost,
		now:    func() time.Time { return time.Now().UTC() },
		idGen:  uuid.NewString,
	}
}

type RegisterResult struct {
	View
	auth.Pair
}

type LoginResult struct {
	auth.Pair
	User View `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}
	u := &User{
		ID:           s.idGen(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         rbac.RoleUser,
		IsActive:     true,
		CreatedAt:    s.now().Truncate(time.Second),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, err
	}
	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return &RegisterResult{View: u.View(), Pair: pair}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	norm, ok := NormalizeEmail(email)
	if !ok || strings.TrimSpace(password) == "" {
		return nil, apperr.Invalid("Validation failed",
			apperr.FieldError{Field: "email", Message: "Valid email and password required"})
	}
	u, err := s.store.FindByEmail(ctx, norm)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	now := s.now().Truncate(time.Second)
	if err := s.store.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Pair: pair, User: u.View()}, nil
}

// Refresh exchanges a refresh token of an active user for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return auth.Pair{}, apperr.Invalid("Refresh token required")
	}
	c, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return auth.Pair{}, apperr.Unauthorized("Invalid refresh token")
	}
	u, err := s.store.FindByID(ctx, c.Sub)
	if err != nil {
		return auth.Pair{}, err
	}
	if u == nil || !u.IsActive {
		return auth.Pair{}, apperr.Unauthorized("User not found")
	}
	return s.tokens.IssuePair(identity(u))
}

func (s *Service) Me(ctx context.Context, userID string) (View, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if u == nil {
		return View{}, apperr.NotFound("User not found")
	}
	return u.View(), nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if msg := ValidatePassword(next); msg != "" {
		return apperr.Invalid("Validation failed", apperr.FieldError{Field: "newPassword", Message: msg})
	}
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found")
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)) != nil {
		return apperr.Forbidden("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("account: hash password: %w", err)
	}
	return s.store.SetPassword(ctx, userID, hash)
}

// Users lists accounts, optionally only those with role.
func (s *Service) Users(ctx context.Context, role string) ([]View, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != "" && !rbac.KnownRole(role) {
		return nil, apperr.Invalid("Invalid role", apperr.FieldError{Field: "role", Message: "must be user or admin"})
	}
	users, err := s.store.List(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out, nil
}

// UpdateAccess changes another user's role or active flag. The last active
// administrator cannot be demoted or deactivated.
func (s *Service) UpdateAccess(ctx context.Context, id string, in AccessUpdate) (View, error) {
	if in.Role == nil && in.IsActive == nil {
		return View{}, apperr.Invalid("No fields to update")
	}
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	if u == nil {
		return View{}, apperr.NotFound("User not found")
	}
	role, active := u.Role, u.IsActive
	if in.Role != nil {
		role = strings.ToLower(strings.TrimSpace(*in.Role))
		if !rbac.KnownRole(role) {
			return View{}, apperr.Invalid("Invalid role", apperr.FieldError{Field: "role", Message: "must be user or admin"})
		}
	}
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if err := s.store.SetAccess(ctx, id, role, active); err != nil {
		if errors.Is(err, ErrLastAdmin) {
			return View{}, apperr.Conflict("Cannot demote or deactivate the last administrator")
		}
		return View{}, err
	}
	u.Role, u.IsActive = role, active
	s.log.Info("user access updated", zap.String("user_id", id), zap.String("role", role), zap.Bool("active", active))
	return u.View(), nil
}

// EnsureAdmin creates or updates the administrator from a pre-computed bcrypt hash.
func (s *Service) EnsureAdmin(ctx context.Context, email, passHash string) error {
	norm, ok := NormalizeEmail(email)
	if !ok {
		return fmt.Errorf("account: invalid admin email %q", email)
	}
	if _, err := bcrypt.Cost([]byte(passHash)); err != nil {
		return fmt.Errorf("account: admin password hash: %w", err)
	}
	u := &User{
		ID:            s.idGen(),
		Email:         norm,
		PasswordHash:  []byte(passHash),
		FullName:      "Administrator",
		Role:          rbac.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		CreatedAt:     s.now(),
	}
	if err := s.store.UpsertAdmin(ctx, u); err != nil {
		return err
	}
	s.log.Info("admin account ensured", zap.String("email", norm))
	return nil
}

func identity(u *User) auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/bizassess/internal/apperr"
)

type Store interface {
	ByUser(ctx context.Context, userID string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
}

type Service struct {
	store Store
	now   func() time.Time
	idGen func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		idGen: uuid.NewString,
	}
}

// Create registers the caller's single business profile.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*Profile, error) {
	now := s.now()
	p := &Profile{ID: s.idGen(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	if in.EmployeeCount == nil {
		return nil, apperr.Invalid("Validation failed",
			apperr.FieldError{Field: "employeeCount", Message: "Employee count is required"})
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	existing, err := s.store.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Business profile already exists")
	}
	if err := s.store.Insert(ctx, p); err != nil {
		if errors.Is(err, ErrExists) {
			return nil, apperr.Conflict("Business profile already exists")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Mine(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.store.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Business profile not found")
	}
	return p, nil
}

// Update applies the provided fields to the caller's profile.
func (s *Service) Update(ctx context.Context, userID string, in Input) (*Profile, error) {
	if in.empty() {
		return nil, apperr.Invalid("No fields to update")
	}
	p, err := s.Mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

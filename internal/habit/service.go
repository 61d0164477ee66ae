package habit

import (
	"context"
	"database/sql"

	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/pkg/models"
)

// Service is the request-facing surface over habit storage. It owns the
// boundary-level validation and visibility scoping; the repository re-checks
// the same invariants inside its write transaction, so neither layer can be
// bypassed on its own.
type Service struct {
	habits *database.HabitRepository
}

// NewService creates a habit service over the given repository.
func NewService(habits *database.HabitRepository) *Service {
	return &Service{habits: habits}
}

// Input carries the client-supplied fields of a habit write. The owner is
// never part of it; it comes from the authenticated caller.
type Input struct {
	Place          *string
	Time           models.TimeOfDay
	Action         string
	IsPleasant     bool
	RelatedHabitID *int64
	Frequency      int
	Reward         *string
	Duration       int
	IsPublic       bool
}

func (in Input) apply(h *models.Habit) {
	h.Place = nullString(in.Place)
	h.Time = in.Time
	h.Action = in.Action
	h.IsPleasant = in.IsPleasant
	h.RelatedHabitID = nullInt64(in.RelatedHabitID)
	h.Frequency = in.Frequency
	if h.Frequency == 0 {
		h.Frequency = 1 // daily
	}
	h.Reward = nullString(in.Reward)
	h.Duration = in.Duration
	h.IsPublic = in.IsPublic
}

// Create validates and stores a new habit owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID int64, in Input) (*models.Habit, error) {
	h := &models.Habit{UserID: ownerID}
	in.apply(h)

	if err := s.validate(ctx, h); err != nil {
		return nil, err
	}
	if err := s.habits.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Update validates and stores changes to a habit. Requests against habits
// the requester does not own report not found, indistinguishable from a
// missing row.
func (s *Service) Update(ctx context.Context, requesterID, id int64, in Input) (*models.Habit, error) {
	h, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.UserID != requesterID {
		return nil, database.ErrNotFound
	}
	in.apply(h)

	if err := s.validate(ctx, h); err != nil {
		return nil, err
	}
	if err := s.habits.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes a habit owned by requesterID.
func (s *Service) Delete(ctx context.Context, requesterID, id int64) error {
	return s.habits.Delete(ctx, id, requesterID)
}

// Get returns a habit if it is the requester's own or public.
func (s *Service) Get(ctx context.Context, requesterID, id int64) (*models.Habit, error) {
	h, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.UserID != requesterID && !h.IsPublic {
		return nil, database.ErrNotFound
	}
	return h, nil
}

// List returns the habits visible to the requester: their own plus public
// ones.
func (s *Service) List(ctx context.Context, requesterID int64) ([]models.Habit, error) {
	return s.habits.FindByOwnerOrPublic(ctx, requesterID)
}

// validate is the boundary-level invariant check, resolving the related
// habit when one is referenced.
func (s *Service) validate(ctx context.Context, h *models.Habit) error {
	var related *models.Habit
	if h.HasRelated() {
		var err error
		related, err = s.habits.GetByID(ctx, h.RelatedHabitID.Int64)
		if err != nil {
			return err
		}
	}
	return models.Validate(h, related)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

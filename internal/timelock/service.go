// Package timelock holds the time-lock access-control engine: a secret is
// deposited with a hold duration and withheld from every reader until that
// duration elapses, at which point the first detail read both discloses the
// value and retires the record from the active set.
package timelock

import (
	"context"
	"fmt"
	"time"

	"timelock.keep/internal/logger"
	"timelock.keep/internal/models"
	"timelock.keep/internal/store"

	"github.com/google/uuid"
)

// Clock supplies the current instant. It is injected so expiry decisions
// can be exercised in tests without real time passing.
type Clock func() time.Time

// Service orchestrates the record lifecycle over an injected store. There is
// no background sweeper: expiry is observed lazily, on read traffic only.
type Service struct {
	store       store.Store
	now         Clock
	minHoldDays int
	maxHoldDays int
	log         *logger.Logger
}

func NewService(st store.Store, clock Clock, minHoldDays, maxHoldDays int, log *logger.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:       st,
		now:         clock,
		minHoldDays: minHoldDays,
		maxHoldDays: maxHoldDays,
		log:         log,
	}
}

type CreateInput struct {
	Value       string
	HoldDays    int
	Description string
}

// RecordView is the metadata any read may see. The secret value never
// travels in a RecordView.
type RecordView struct {
	ID          string
	Description string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	IsExpired   bool
	Remaining   Remaining
}

// Detail is a single-record read result. Value is set only when Disclosed
// is true, which happens on exactly one read per record.
type Detail struct {
	RecordView
	Value     string
	Disclosed bool
}

// Create validates the hold duration, persists a new record and returns its
// metadata. The expiry instant is creation time plus the hold in whole days.
func (s *Service) Create(ctx context.Context, in CreateInput) (*RecordView, error) {
	if in.HoldDays < s.minHoldDays || in.HoldDays > s.maxHoldDays {
		return nil, fmt.Errorf("%w: hold_days must be between %d and %d", ErrHoldOutOfRange, s.minHoldDays, s.maxHoldDays)
	}

	now := s.now()
	rec := &models.SecretRecord{
		ID:          uuid.NewString(),
		Value:       in.Value,
		Description: in.Description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(in.HoldDays) * 24 * time.Hour),
		Active:      true,
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", rec.ID).Time("expires_at", rec.ExpiresAt).Msg("record created")

	v := view(rec, Evaluate(now, rec.ExpiresAt))
	return &v, nil
}

// Observe runs the expiry evaluation for rec at the current instant and, if
// the record has expired while still active, retires it. The returned bool
// reports whether this call performed the retirement; the evaluation is
// always the pre-retirement one. A failed retire is returned as an error and
// is never treated as if retirement occurred.
func (s *Service) Observe(ctx context.Context, rec *models.SecretRecord) (Evaluation, bool, error) {
	eval := Evaluate(s.now(), rec.ExpiresAt)
	if !eval.IsExpired || !rec.Active {
		return eval, false, nil
	}

	retired, err := s.store.Retire(ctx, rec.ID)
	if err != nil {
		return eval, false, fmt.Errorf("retiring expired record %s: %w", rec.ID, err)
	}
	if retired {
		s.log.Info().Str("id", rec.ID).Msg("record retired after expiry")
	}
	return eval, retired, nil
}

// ListActive returns metadata for every record that was active when fetched.
// Records observed expired are retired as a side effect but still appear in
// this call's results; they will be gone from the next listing.
func (s *Service) ListActive(ctx context.Context) ([]RecordView, error) {
	recs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		eval, _, err := s.Observe(ctx, rec)
		if err != nil {
			return nil, err
		}
		views = append(views, view(rec, eval))
	}
	return views, nil
}

// Get returns a record's metadata and, when this call is the one that
// observed expiry first, the secret value. A caller that loses the
// retirement race sees store.ErrNotFound, the same as for a retired or
// unknown id.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	rec, err := s.store.FindActive(ctx, id)
	if err != nil {
		return nil, err
	}

	eval, retired, err := s.Observe(ctx, rec)
	if err != nil {
		return nil, err
	}

	d := &Detail{RecordView: view(rec, eval)}
	if eval.IsExpired {
		if !retired {
			return nil, store.ErrNotFound
		}
		d.Value = rec.Value
		d.Disclosed = true
	}
	return d, nil
}

// Delete retires a record unconditionally, before or after expiry, without
// ever touching its value. Deleting an already retired record succeeds;
// an id that never existed yields store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	retired, err := s.store.Retire(ctx, id)
	if err != nil {
		return err
	}
	if retired {
		s.log.Info().Str("id", id).Msg("record retired on request")
	}
	return nil
}

func view(rec *models.SecretRecord, eval Evaluation) RecordView {
	return RecordView{
		ID:          rec.ID,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
		IsExpired:   eval.IsExpired,
		Remaining:   eval.Remaining,
	}
}

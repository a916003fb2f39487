// Package repotest provides an in-memory implementation of the repositories for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"gorm.io/gorm"
)

// Store is an in-memory stand-in for the gorm repositories. One mutex plays the
// role of the database: InsertSchedule and the compare-and-set writes are atomic.
type Store struct {
	mu           sync.Mutex
	obligations  map[uint]models.Obligation
	installments map[uint]models.Installment
	nextID       uint

	// BeforeInsert runs inside InsertSchedule before the existing count is checked
	BeforeInsert func()
	// CancelInstallment runs for every installment CancelCascade voids. An error
	// aborts the cascade and discards all of its writes.
	CancelInstallment func(models.Installment) error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		obligations:  make(map[uint]models.Obligation),
		installments: make(map[uint]models.Installment),
	}
}

// Repositories returns repositories backed by the store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Obligation:  &obligationRepo{s},
		Installment: &installmentRepo{s},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// childrenLocked returns the installments of an obligation ordered by number
func (s *Store) childrenLocked(obligationID uint) []models.Installment {
	var out []models.Installment
	for _, inst := range s.installments {
		if inst.ObligationID == obligationID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out
}

// SeedInstallments stores installments directly, bypassing the generator
func (s *Store) SeedInstallments(obligationID uint, installments ...models.Installment) []models.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range installments {
		installments[i].ID = s.id()
		installments[i].ObligationID = obligationID
		if installments[i].InstallmentNumber == 0 {
			installments[i].InstallmentNumber = i + 1
		}
		s.installments[installments[i].ID] = installments[i]
	}
	return installments
}

// Installment returns a copy of the stored installment
func (s *Store) Installment(id uint) models.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installments[id]
}

// Obligation returns a copy of the stored obligation
func (s *Store) Obligation(id uint) models.Obligation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obligations[id]
}

// CountInstallments returns how many installments an obligation owns
func (s *Store) CountInstallments(obligationID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.childrenLocked(obligationID))
}

// CountObligations returns how many obligations are stored
func (s *Store) CountObligations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.obligations)
}

// UpdateInstallment rewrites a stored installment, simulating a concurrent writer
func (s *Store) UpdateInstallment(id uint, fn func(*models.Installment)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst := s.installments[id]
	fn(&inst)
	s.installments[id] = inst
}

type obligationRepo struct{ s *Store }

func (r *obligationRepo) FindByID(ctx context.Context, id uint) (*models.Obligation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.obligations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *obligationRepo) FindByIDWithInstallments(ctx context.Context, id uint) (*models.Obligation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.obligations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.Installments = r.s.childrenLocked(id)
	return &o, nil
}

func (r *obligationRepo) Create(ctx context.Context, obligation *models.Obligation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	obligation.ID = r.s.id()
	obligation.CreatedAt = time.Now()
	obligation.UpdatedAt = obligation.CreatedAt
	stored := *obligation
	stored.Installments = nil
	r.s.obligations[obligation.ID] = stored
	return nil
}

func (r *obligationRepo) UpdateStatusLocked(ctx context.Context, id uint, derive func(*models.Obligation) (bool, error)) (*models.Obligation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.obligations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.Installments = r.s.childrenLocked(id)

	changed, err := derive(&o)
	if err != nil {
		return nil, err
	}
	if changed {
		stored := r.s.obligations[id]
		stored.Status = o.Status
		r.s.obligations[id] = stored
	}
	return &o, nil
}

func (r *obligationRepo) CancelCascade(ctx context.Context, obligation *models.Obligation, from string) (int64, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.obligations[obligation.ID]
	if !ok || stored.Status != from {
		return 0, false, nil
	}

	// stage every write so a failure leaves the store untouched
	var voided []models.Installment
	for _, inst := range r.s.childrenLocked(obligation.ID) {
		if !inst.MayCancel() {
			continue
		}
		if r.s.CancelInstallment != nil {
			if err := r.s.CancelInstallment(inst); err != nil {
				return 0, false, err
			}
		}
		inst.Status = models.StatusCancelled
		voided = append(voided, inst)
	}

	stored.Status = obligation.Status
	stored.CancelledAt = obligation.CancelledAt
	r.s.obligations[obligation.ID] = stored
	for _, inst := range voided {
		r.s.installments[inst.ID] = inst
	}
	return int64(len(voided)), true, nil
}

func (r *obligationRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.obligations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for instID, inst := range r.s.installments {
		if inst.ObligationID == id {
			delete(r.s.installments, instID)
		}
	}
	delete(r.s.obligations, id)
	return nil
}

func (r *obligationRepo) List(ctx context.Context, query *repository.ObligationQuery) ([]models.Obligation, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Obligation
	for _, o := range r.s.obligations {
		if query.Kind != "" && o.Kind != query.Kind {
			continue
		}
		if query.Status != "" && o.Status != query.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *obligationRepo) FindWithExpiredPending(ctx context.Context, today time.Time) ([]models.Obligation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Obligation
	for _, o := range r.s.obligations {
		if o.Status == models.StatusCancelled {
			continue
		}
		children := r.s.childrenLocked(o.ID)
		for _, inst := range children {
			if inst.Status == models.StatusPending && inst.DueDate.Before(today) {
				o.Installments = children
				out = append(out, o)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *obligationRepo) FindOpenEndedRecurring(ctx context.Context) ([]models.Obligation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Obligation
	for _, o := range r.s.obligations {
		if o.Kind == models.KindCostFixed && o.EndMonth == nil && o.Status != models.StatusCancelled {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type installmentRepo struct{ s *Store }

func (r *installmentRepo) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inst, ok := r.s.installments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &inst, nil
}

func (r *installmentRepo) FindByObligation(ctx context.Context, obligationID uint) ([]models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.childrenLocked(obligationID), nil
}

func (r *installmentRepo) InsertSchedule(ctx context.Context, obligationID uint, expectedExisting int, installments []models.Installment) error {
	if r.s.BeforeInsert != nil {
		r.s.BeforeInsert()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.obligations[obligationID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if len(r.s.childrenLocked(obligationID)) != expectedExisting {
		return repository.ErrScheduleConflict
	}
	for i := range installments {
		installments[i].ID = r.s.id()
		installments[i].ObligationID = obligationID
		r.s.installments[installments[i].ID] = installments[i]
	}
	return nil
}

func (r *installmentRepo) Transition(ctx context.Context, installment *models.Installment, from string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.installments[installment.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = installment.Status
	stored.PaidDate = installment.PaidDate
	stored.PaymentNotes = installment.PaymentNotes
	r.s.installments[installment.ID] = stored
	return true, nil
}

func (r *installmentRepo) UpdateNotes(ctx context.Context, id uint, notes *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.installments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PaymentNotes = notes
	r.s.installments[id] = stored
	return nil
}

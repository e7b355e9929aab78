// Package lifecycletest provides in-memory doubles for the lifecycle ports.
package lifecycletest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

// MemoryStore is a lifecycle.Store backed by a map. It honours the version
// check and counts writes so tests can assert that a rejected call wrote nothing.
type MemoryStore struct {
	mu     sync.Mutex
	apps   map[uuid.UUID]model.ApplicationModel
	orders map[uuid.UUID]model.ExternalOrderModel

	Writes int

	// FailNext makes the next write return this error.
	FailNext error
	// ConflictsBeforeWrite makes the next N UpdateFields calls return ErrConflict.
	ConflictsBeforeWrite int
}

var _ lifecycle.Store = (*MemoryStore)(nil)

func NewMemoryStore(apps ...model.ApplicationModel) *MemoryStore {
	s := &MemoryStore{
		apps:   map[uuid.UUID]model.ApplicationModel{},
		orders: map[uuid.UUID]model.ExternalOrderModel{},
	}
	for _, a := range apps {
		s.Put(a)
	}
	return s
}

// Put inserts or replaces a record, filling the defaults a DB insert would.
func (s *MemoryStore) Put(a model.ApplicationModel) model.ApplicationModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = a.BeforeCreate(nil)
	s.apps[a.ApplicationID] = a
	return a
}

func (s *MemoryStore) PutOrder(o model.ExternalOrderModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ExternalOrderApplicationID] = o
}

func (s *MemoryStore) Order(id uuid.UUID) (model.ExternalOrderModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// Snapshot returns the stored record without going through the port.
func (s *MemoryStore) Snapshot(id uuid.UUID) model.ApplicationModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[id]
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) List(_ context.Context, f lifecycle.ListFilter) ([]model.ApplicationModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ApplicationModel
	for _, a := range s.apps {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApplicationCreatedAt.Before(out[j].ApplicationCreatedAt)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(a model.ApplicationModel, f lifecycle.ListFilter) bool {
	if len(f.Statuses) > 0 && !contains(f.Statuses, a.ApplicationStatus) {
		return false
	}
	if len(f.PaymentStatuses) > 0 && !contains(f.PaymentStatuses, a.ApplicationPaymentStatus) {
		return false
	}
	if len(f.Offices) > 0 && (a.ApplicationOffice == nil || !contains(f.Offices, *a.ApplicationOffice)) {
		return false
	}
	if f.SubmittedBefore != nil && (a.ApplicationSubmittedAt == nil || !a.ApplicationSubmittedAt.Before(*f.SubmittedBefore)) {
		return false
	}
	if f.SubmittedAfter != nil && (a.ApplicationSubmittedAt == nil || a.ApplicationSubmittedAt.Before(*f.SubmittedAfter)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(a.ApplicationFirstName + " " + a.ApplicationLastName + " " + a.ApplicationEmail)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func (s *MemoryStore) takeFailure() error {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	return nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, id uuid.UUID, version int64, f lifecycle.Fields) (*model.ApplicationModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	a, ok := s.apps[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	if s.ConflictsBeforeWrite > 0 {
		s.ConflictsBeforeWrite--
		return nil, lifecycle.ErrConflict
	}
	if a.ApplicationVersion != version {
		return nil, lifecycle.ErrConflict
	}

	f.Apply(&a)
	a.ApplicationVersion++
	a.ApplicationUpdatedAt = time.Now().UTC()
	s.apps[id] = a
	s.Writes++

	if f.Status.Set && f.Status.Value != nil {
		if o, ok := s.orders[id]; ok {
			o.ExternalOrderStatus = *f.Status.Value
			s.orders[id] = o
		}
	}
	return &a, nil
}

func (s *MemoryStore) Submit(_ context.Context, id uuid.UUID, version int64, submittedAt time.Time, educations []model.EducationModel) (*model.ApplicationModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	a, ok := s.apps[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	if a.ApplicationVersion != version {
		return nil, lifecycle.ErrConflict
	}

	a.ApplicationStatus = model.ApplicationStatusSubmitted
	t := submittedAt
	a.ApplicationSubmittedAt = &t
	for _, e := range educations {
		e.EducationApplicationID = id
		if e.EducationID == uuid.Nil {
			e.EducationID = uuid.New()
		}
		a.Educations = append(a.Educations, e)
	}
	a.ApplicationVersion++
	s.apps[id] = a
	s.Writes++
	return &a, nil
}

func (s *MemoryStore) ExpirePending(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	var flipped []uuid.UUID
	for _, id := range ids {
		a, ok := s.apps[id]
		if !ok || a.ApplicationPaymentStatus != model.PaymentStatusPending {
			continue
		}
		a.ApplicationPaymentStatus = model.PaymentStatusExpired
		a.ApplicationVersion++
		s.apps[id] = a
		flipped = append(flipped, id)
	}
	if len(flipped) > 0 {
		s.Writes++
	}
	return flipped, nil
}

/* ===================== Notifier ===================== */

type Notification struct {
	Template string
	App      model.ApplicationModel
}

// RecordingNotifier captures notifications synchronously.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *RecordingNotifier) Notify(_ context.Context, template string, app model.ApplicationModel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{Template: template, App: app})
}

func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}

// Package submission persists DealSubmission aggregates.
//
// Every successful write stamps a fresh opaque version token; Save rejects a
// stale token with sentinel.ErrVersionMismatch so concurrent editors race
// detectably instead of overwriting each other.
package submission

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
	"dealdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. It hands out deep copies so callers
// never alias stored state.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.SubmissionID]*models.DealSubmission
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.SubmissionID]*models.DealSubmission)}
}

func (s *InMemory) Create(_ context.Context, sub *models.DealSubmission) (*models.DealSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[sub.ID]; exists {
		return nil, sentinel.ErrAlreadyExists
	}
	stored := sub.Clone()
	stored.Version = uuid.NewString()
	s.items[sub.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, submissionID id.SubmissionID) (*models.DealSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.items[submissionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *InMemory) ListByBroker(_ context.Context, brokerID id.CompanyID) ([]*models.DealSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DealSubmission
	for _, stored := range s.items {
		if stored.BrokerID == brokerID {
			out = append(out, stored.Clone())
		}
	}
	return out, nil
}

// Save writes the submission if the caller's version token matches the stored
// one, and returns the stored copy carrying the new token.
func (s *InMemory) Save(_ context.Context, sub *models.DealSubmission) (*models.DealSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[sub.ID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if stored.Version != sub.Version {
		return nil, sentinel.ErrVersionMismatch
	}
	next := sub.Clone()
	next.Version = uuid.NewString()
	s.items[sub.ID] = next
	return next.Clone(), nil
}

// Package feedback persists SubmissionFeedback aggregates with the same
// version-token discipline as the submission store.
package feedback

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
	"dealdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store handing out deep copies.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.FeedbackID]*models.SubmissionFeedback
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.FeedbackID]*models.SubmissionFeedback)}
}

func (s *InMemory) Create(_ context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[fb.ID]; exists {
		return nil, sentinel.ErrAlreadyExists
	}
	stored := fb.Clone()
	stored.Version = uuid.NewString()
	s.items[fb.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, feedbackID id.FeedbackID) (*models.SubmissionFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.items[feedbackID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *InMemory) ListBySubmission(_ context.Context, submissionID id.SubmissionID) ([]*models.SubmissionFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubmissionFeedback
	for _, stored := range s.items {
		if stored.SubmissionID == submissionID {
			out = append(out, stored.Clone())
		}
	}
	return out, nil
}

// Save writes the feedback if the caller's version token matches the stored
// one, and returns the stored copy carrying the new token.
func (s *InMemory) Save(_ context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[fb.ID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if stored.Version != fb.Version {
		return nil, sentinel.ErrVersionMismatch
	}
	next := fb.Clone()
	next.Version = uuid.NewString()
	s.items[fb.ID] = next
	return next.Clone(), nil
}

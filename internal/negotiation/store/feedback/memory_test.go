package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
	"dealdesk/pkg/platform/sentinel"
)

func newFeedback(t *testing.T, submissionID id.SubmissionID) *models.SubmissionFeedback {
	t.Helper()
	insurerID, err := id.ParseCompanyID("5e8b1c2d-7f3a-4b6c-9d0e-1a2b3c4d5e6f")
	require.NoError(t, err)
	sub := &models.DealSubmission{ID: submissionID}
	fb, err := models.NewSubmissionFeedback(id.NewFeedbackID(), sub, insurerID, "Atlas Underwriting", time.Now().UTC())
	require.NoError(t, err)
	return fb
}

func TestInMemory_CreateAndFind(t *testing.T) {
	store := NewInMemory()
	fb := newFeedback(t, id.NewSubmissionID())

	created, err := store.Create(context.Background(), fb)
	require.NoError(t, err)
	assert.NotEmpty(t, created.Version)

	found, err := store.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.InsurerName, found.InsurerName)

	_, err = store.FindByID(context.Background(), id.NewFeedbackID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemory_ListBySubmission(t *testing.T) {
	store := NewInMemory()
	submissionID := id.NewSubmissionID()
	_, err := store.Create(context.Background(), newFeedback(t, submissionID))
	require.NoError(t, err)
	_, err = store.Create(context.Background(), newFeedback(t, submissionID))
	require.NoError(t, err)
	_, err = store.Create(context.Background(), newFeedback(t, id.NewSubmissionID()))
	require.NoError(t, err)

	listed, err := store.ListBySubmission(context.Background(), submissionID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestInMemory_SaveRejectsStaleToken(t *testing.T) {
	store := NewInMemory()
	created, err := store.Create(context.Background(), newFeedback(t, id.NewSubmissionID()))
	require.NoError(t, err)

	first := created.Clone()
	first.Notes = "first edit"
	_, err = store.Save(context.Background(), first)
	require.NoError(t, err)

	second := created.Clone()
	second.Notes = "second edit"
	_, err = store.Save(context.Background(), second)
	assert.ErrorIs(t, err, sentinel.ErrVersionMismatch)

	stored, err := store.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first edit", stored.Notes)
}

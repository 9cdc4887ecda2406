package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
)

func validFeedback(t *testing.T) *SubmissionFeedback {
	t.Helper()
	sub := validSubmission(t)
	fb, err := NewSubmissionFeedback(id.NewFeedbackID(), sub, id.NewCompanyID(), "Hiscox", time.Now())
	require.NoError(t, err)
	return fb
}

func TestNewSubmissionFeedback(t *testing.T) {
	t.Run("snapshots submission pricing", func(t *testing.T) {
		sub := validSubmission(t)
		fb, err := NewSubmissionFeedback(id.NewFeedbackID(), sub, id.NewCompanyID(), "Hiscox", time.Now())
		require.NoError(t, err)
		assert.True(t, fb.Pricing.Premium.Equal(sub.Pricing.Premium))
		assert.True(t, fb.IsLive)
		assert.Nil(t, fb.Pricing.CounterPremium)
	})

	t.Run("requires parent submission", func(t *testing.T) {
		_, err := NewSubmissionFeedback(id.NewFeedbackID(), nil, id.NewCompanyID(), "x", time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires insurer", func(t *testing.T) {
		_, err := NewSubmissionFeedback(id.NewFeedbackID(), validSubmission(t), id.CompanyID{}, "x", time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestFeedbackTransitions(t *testing.T) {
	now := time.Now()

	t.Run("submit requires NDA", func(t *testing.T) {
		fb := validFeedback(t)
		require.Error(t, fb.CanSubmit())

		require.NoError(t, fb.AcceptNda(now))
		require.NoError(t, fb.CanSubmit())
		fb.ApplySubmit(now)
		assert.True(t, fb.Submitted)
		assert.True(t, fb.ForReview)
	})

	t.Run("accept requires submitted live feedback", func(t *testing.T) {
		fb := validFeedback(t)
		require.Error(t, fb.CanAccept(), "nothing submitted yet")

		require.NoError(t, fb.AcceptNda(now))
		fb.ApplySubmit(now)
		require.NoError(t, fb.CanAccept())

		require.NoError(t, fb.Withdraw(now))
		require.Error(t, fb.CanAccept(), "withdrawn feedback cannot be accepted")
	})

	t.Run("declined is terminal", func(t *testing.T) {
		fb := validFeedback(t)
		require.NoError(t, fb.CanDecline())
		fb.ApplyDecline(now)

		assert.True(t, fb.Terminal())
		assert.Error(t, fb.CanSubmit())
		assert.Error(t, fb.CanDecline())
		assert.Error(t, fb.CanAccept())
		assert.Error(t, fb.AcceptNda(now))
		assert.Error(t, fb.Withdraw(now))
	})

	t.Run("accepted is terminal", func(t *testing.T) {
		fb := validFeedback(t)
		require.NoError(t, fb.AcceptNda(now))
		fb.ApplySubmit(now)
		fb.ApplyAccept(now)

		assert.True(t, fb.Terminal())
		assert.False(t, fb.ForReview)
		assert.Error(t, fb.Withdraw(now))
	})
}

func TestFeedbackClone(t *testing.T) {
	fb := validFeedback(t)
	counter := MoneyFromFloat(99, "EUR")
	fb.Pricing.CounterPremium = &counter
	fb.Enhancements = []Enhancement{{Title: "tax covenant", InsurerOffers: true}}

	clone := fb.Clone()
	clone.Enhancements[0].InsurerOffers = false
	clone.Pricing.CounterPremium.Amount = MoneyFromFloat(1, "EUR").Amount

	assert.True(t, fb.Enhancements[0].InsurerOffers)
	assert.True(t, fb.Pricing.CounterPremium.Equal(counter))
}

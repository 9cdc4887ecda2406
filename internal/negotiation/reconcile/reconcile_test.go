package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
)

func fixtureSubmission(t *testing.T) *models.DealSubmission {
	t.Helper()
	sub, err := models.NewDealSubmission(
		id.NewSubmissionID(),
		"Project Aurora",
		id.CompanyID(mustUUID()),
		"Fenwick Brokers",
		models.BasicTerms{Industry: "software", TargetJurisdiction: "UK"},
		models.SubmissionPricing{
			EnterpriseValue: models.MoneyFromFloat(50_000_000, "GBP"),
			Premium:         models.MoneyFromFloat(120_000, "GBP"),
			UnderwritingFee: models.MoneyFromFloat(15_000, "GBP"),
			Retention:       models.MoneyFromFloat(500_000, "GBP"),
			Limit:           models.NewLimit(decimal.Zero, decimal.NewFromFloat(0.2), true),
		},
		[]models.Enhancement{
			{Title: "Tax covenant", Type: models.EnhancementTypeRequest, Description: "Cover the tax covenant", Value: decimal.NewFromFloat(0.05), RequestedByBroker: true},
			{Title: "Known risks", Type: models.EnhancementTypeAssumption, Description: "Scheduled known risks", Value: decimal.NewFromFloat(0.1)},
		},
		[]models.Warranty{
			{Title: "Accounts", Description: "Accounts are true and fair", RequestedByBroker: true},
			{Title: "Litigation", Description: "No pending litigation"},
		},
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return sub
}

func fixtureFeedback(t *testing.T, sub *models.DealSubmission) *models.SubmissionFeedback {
	t.Helper()
	fb, err := models.NewSubmissionFeedback(
		id.NewFeedbackID(), sub, id.CompanyID(mustUUID()), "Atlas Underwriting",
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	// Seed the item lists from the submission, then record insurer positions.
	fb = Reconcile(sub, fb)
	fb.Enhancements[0].InsurerOffers = true
	fb.Enhancements[0].Comment = "subject to tax deed review"
	fb.Warranties[0].InsurerAccepts = true
	counter := models.MoneyFromFloat(140_000, "GBP")
	fb.Pricing.CounterPremium = &counter
	return fb
}

func mustUUID() id.CompanyID {
	cid, err := id.ParseCompanyID("7b2e9f6e-13aa-4f6f-9c3e-6a2e9d3f8b21")
	if err != nil {
		panic(err)
	}
	return cid
}

func TestReconcile_SeedsNewFeedbackFromSubmission(t *testing.T) {
	sub := fixtureSubmission(t)
	fb, err := models.NewSubmissionFeedback(id.NewFeedbackID(), sub, mustUUID(), "Atlas", time.Now())
	require.NoError(t, err)

	next := Reconcile(sub, fb)

	require.Len(t, next.Enhancements, 2)
	assert.Equal(t, "Tax covenant", next.Enhancements[0].Title)
	assert.False(t, next.Enhancements[0].InsurerOffers, "new items start with no position")
	require.Len(t, next.Warranties, 2)
	assert.False(t, next.Warranties[0].InsurerAccepts)
}

func TestReconcile_CarriesPositionsForwardWhenUnchanged(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	next := Reconcile(sub, fb)

	assert.True(t, next.Enhancements[0].InsurerOffers)
	assert.Equal(t, "subject to tax deed review", next.Enhancements[0].Comment)
	assert.True(t, next.Warranties[0].InsurerAccepts)
	require.NotNil(t, next.Pricing.CounterPremium)
	assert.True(t, next.Pricing.CounterPremium.Equal(models.MoneyFromFloat(140_000, "GBP")))
}

func TestReconcile_ResetsAcceptanceWhenDescriptionChanges(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	sub.Enhancements[0].Description = "Cover the tax covenant including secondary liabilities"
	sub.Warranties[0].Description = "Accounts are true, fair and complete"

	next := Reconcile(sub, fb)

	assert.False(t, next.Enhancements[0].InsurerOffers, "changed terms cannot keep a prior acceptance")
	assert.Equal(t, "subject to tax deed review", next.Enhancements[0].Comment, "free-text commentary survives the reset")
	assert.Equal(t, sub.Enhancements[0].Description, next.Enhancements[0].Description)
	assert.False(t, next.Warranties[0].InsurerAccepts)
}

func TestReconcile_ResetsAcceptanceWhenValueChanges(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	sub.Enhancements[0].Value = decimal.NewFromFloat(0.08)

	next := Reconcile(sub, fb)

	assert.False(t, next.Enhancements[0].InsurerOffers)
	assert.True(t, next.Enhancements[0].Value.Equal(decimal.NewFromFloat(0.08)))
}

func TestReconcile_DropsOrphanedItems(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	sub.Enhancements = sub.Enhancements[1:] // "Tax covenant" removed

	next := Reconcile(sub, fb)

	require.Len(t, next.Enhancements, 1)
	assert.Equal(t, "Known risks", next.Enhancements[0].Title)
	for _, e := range next.Enhancements {
		assert.NotEqual(t, "Tax covenant", e.Title)
	}
}

func TestReconcile_SynthesizesItemsForNewTitles(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	sub.Enhancements = append(sub.Enhancements, models.Enhancement{
		Title: "Seller fraud", Type: models.EnhancementTypeRequest,
		Description: "Cover seller fraud", Value: decimal.NewFromFloat(0.02), RequestedByBroker: true,
	})

	next := Reconcile(sub, fb)

	require.Len(t, next.Enhancements, 3)
	added := next.Enhancements[2]
	assert.Equal(t, "Seller fraud", added.Title)
	assert.False(t, added.InsurerOffers)
	assert.Empty(t, added.Comment)
}

func TestReconcile_OutputFollowsSubmissionOrder(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	sub.Enhancements = []models.Enhancement{sub.Enhancements[1], sub.Enhancements[0]}

	next := Reconcile(sub, fb)

	require.Len(t, next.Enhancements, 2)
	assert.Equal(t, "Known risks", next.Enhancements[0].Title)
	assert.Equal(t, "Tax covenant", next.Enhancements[1].Title)
	assert.True(t, next.Enhancements[1].InsurerOffers, "reordering alone keeps the prior position")
}

func TestReconcile_TitleUniquenessPreserved(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	next := Reconcile(sub, fb)

	assert.NoError(t, models.ValidateEnhancementTitles(next.Enhancements))
	assert.NoError(t, models.ValidateWarrantyTitles(next.Warranties))
}

func TestReconcile_PricingCounters(t *testing.T) {
	t.Run("kept while the requested field is unchanged", func(t *testing.T) {
		sub := fixtureSubmission(t)
		fb := fixtureFeedback(t, sub)

		next := Reconcile(sub, fb)

		require.NotNil(t, next.Pricing.CounterPremium)
	})

	t.Run("reset when the requested field changes", func(t *testing.T) {
		sub := fixtureSubmission(t)
		fb := fixtureFeedback(t, sub)

		sub.Pricing.Premium = models.MoneyFromFloat(150_000, "GBP")

		next := Reconcile(sub, fb)

		assert.Nil(t, next.Pricing.CounterPremium, "counter against superseded premium is dropped")
		assert.True(t, next.Pricing.Premium.Equal(sub.Pricing.Premium))
	})

	t.Run("counters reconcile independently", func(t *testing.T) {
		sub := fixtureSubmission(t)
		fb := fixtureFeedback(t, sub)
		fee := models.MoneyFromFloat(12_000, "GBP")
		fb.Pricing.CounterUnderwritingFee = &fee

		sub.Pricing.Premium = models.MoneyFromFloat(150_000, "GBP")

		next := Reconcile(sub, fb)

		assert.Nil(t, next.Pricing.CounterPremium)
		require.NotNil(t, next.Pricing.CounterUnderwritingFee)
		assert.True(t, next.Pricing.CounterUnderwritingFee.Equal(fee))
	})
}

func TestReconcile_TerminalFeedbackIsFrozen(t *testing.T) {
	sub := fixtureSubmission(t)

	t.Run("declined", func(t *testing.T) {
		fb := fixtureFeedback(t, sub)
		fb.Declined = true
		sub2 := fixtureSubmission(t)
		sub2.Enhancements = nil

		next := Reconcile(sub2, fb)

		assert.Same(t, fb, next, "declined feedback is returned unmodified")
		assert.Len(t, next.Enhancements, 2)
	})

	t.Run("accepted", func(t *testing.T) {
		fb := fixtureFeedback(t, sub)
		fb.Accepted = true

		next := Reconcile(sub, fb)

		assert.Same(t, fb, next)
	})
}

func TestReconcile_Idempotent(t *testing.T) {
	sub := fixtureSubmission(t)
	fb := fixtureFeedback(t, sub)

	// Exercise every rule at once: change a description, drop a warranty,
	// add an enhancement, reprice.
	sub.Enhancements[0].Description = "changed"
	sub.Enhancements = append(sub.Enhancements, models.Enhancement{
		Title: "New cover", Type: models.EnhancementTypeRequest, Value: decimal.NewFromFloat(0.01),
	})
	sub.Warranties = sub.Warranties[:1]
	sub.Pricing.Premium = models.MoneyFromFloat(99_000, "GBP")

	once := Reconcile(sub, fb)
	twice := Reconcile(sub, once)

	assert.Equal(t, once, twice)
}

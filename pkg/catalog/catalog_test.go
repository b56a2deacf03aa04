package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
)

func newDefault(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c := newDefault(t)

	t.Run("silver limits and price", func(t *testing.T) {
		t.Parallel()
		p, err := c.Lookup("silver")
		require.NoError(t, err)
		assert.Equal(t, int64(20000), p.Price.Amount)
		assert.Equal(t, 2, p.Quota(catalog.ResourceShops))
		assert.Equal(t, 1, p.Quota(catalog.ResourceOffers))
		assert.Equal(t, catalog.PeriodMonthly, p.PeriodFor(catalog.ResourceOffers))
		assert.Equal(t, catalog.PeriodNone, p.PeriodFor(catalog.ResourceShops))
		require.NotNil(t, p.Days)
		assert.Equal(t, 30, *p.Days)
	})

	t.Run("default is starter", func(t *testing.T) {
		t.Parallel()
		p := c.Default()
		assert.Equal(t, "starter", p.ID)
		assert.True(t, p.Perpetual())
		assert.False(t, p.Purchasable())
		assert.Nil(t, p.ExpiryFrom(time.Now()))
	})

	t.Run("addons", func(t *testing.T) {
		t.Parallel()
		a, err := c.LookupAddon("extra_offer")
		require.NoError(t, err)
		assert.Equal(t, catalog.ResourceOffers, a.Resource)
		assert.Equal(t, int64(10000), a.Price(2).Amount)
		assert.Equal(t, 30*24*time.Hour, a.Validity())

		shops := c.AddonsFor(catalog.ResourceShops)
		require.Len(t, shops, 1)
		assert.Equal(t, "extra_shop", shops[0].ID)
	})

	t.Run("lookup returns copies", func(t *testing.T) {
		t.Parallel()
		p, err := c.Lookup("gold")
		require.NoError(t, err)
		p.Quotas[catalog.ResourceShops] = 999
		*p.Days = 1

		again, err := c.Lookup("gold")
		require.NoError(t, err)
		assert.Equal(t, 4, again.Quota(catalog.ResourceShops))
		assert.Equal(t, 90, *again.Days)
	})
}

func TestLookupErrors(t *testing.T) {
	t.Parallel()
	c := newDefault(t)

	_, err := c.Lookup("diamond")
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)

	_, err = c.LookupAddon("extra_job")
	assert.ErrorIs(t, err, catalog.ErrAddonNotFound)

	_, err = c.RequirePurchasable("starter")
	assert.ErrorIs(t, err, catalog.ErrNotPurchasable)

	_, err = c.RequireRecurring("starter")
	assert.ErrorIs(t, err, catalog.ErrRecurringNotConfigured)
	assert.NotErrorIs(t, err, catalog.ErrPlanNotFound)

	_, err = c.RequireRecurring("diamond")
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)

	p, err := c.RequireRecurring("platinum")
	require.NoError(t, err)
	assert.Equal(t, "plan_SCqGQxVqpRsbRn", p.Recurring.ExternalPlanID)
}

func TestExpiryFrom(t *testing.T) {
	t.Parallel()
	c := newDefault(t)
	p, err := c.Lookup("silver")
	require.NoError(t, err)

	from := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	got := p.ExpiryFrom(from)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), *got)
}

func TestFromDataValidation(t *testing.T) {
	t.Parallel()

	valid := func() catalog.Data { return catalog.DefaultData() }

	tests := []struct {
		name   string
		mutate func(d *catalog.Data)
	}{
		{"no default", func(d *catalog.Data) { d.Plans[0].Default = false }},
		{"two defaults", func(d *catalog.Data) { d.Plans[1].Default = true }},
		{"duplicate plan", func(d *catalog.Data) { d.Plans[2].ID = "silver" }},
		{"negative quota", func(d *catalog.Data) { d.Plans[1].Quotas[catalog.ResourceShops] = -1 }},
		{"unknown resource", func(d *catalog.Data) { d.Plans[1].Quotas["jobs"] = 1 }},
		{"zero days", func(d *catalog.Data) { zero := 0; d.Plans[1].Days = &zero }},
		{"bad period", func(d *catalog.Data) { d.Plans[1].OffersPeriod = "weekly" }},
		{"non stackable addon", func(d *catalog.Data) { d.Addons[0].Stackable = false }},
		{"addon without validity", func(d *catalog.Data) { d.Addons[1].ValidityDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := valid()
			tt.mutate(&d)
			_, err := catalog.FromData(d)
			assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
		})
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	c, err := catalog.New(context.Background(), catalog.NewFileSource("testdata/plans.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "test-1", c.Version())
	assert.Equal(t, "free", c.Default().ID)

	p, err := c.RequireRecurring("pro")
	require.NoError(t, err)
	assert.Equal(t, catalog.Currency, p.Price.Currency)
	assert.Equal(t, 2, p.Quota(catalog.ResourceOffers))

	a, err := c.LookupAddon("extra_offer")
	require.NoError(t, err)
	assert.Equal(t, catalog.Currency, a.UnitPrice.Currency)

	_, err = catalog.New(context.Background(), catalog.NewFileSource("testdata/missing.yaml"))
	assert.ErrorIs(t, err, catalog.ErrFailedToLoad)
}

func TestSourceError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	_, err := catalog.New(context.Background(), catalog.SourceFunc(func(context.Context) (catalog.Data, error) {
		return catalog.Data{}, boom
	}))
	assert.ErrorIs(t, err, catalog.ErrFailedToLoad)
	assert.ErrorIs(t, err, boom)
}

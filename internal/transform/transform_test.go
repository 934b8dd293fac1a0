package transform

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterc/internal/diag"
	"meterc/internal/model"
)

func metric(cat, name string, t model.Type, p model.Payload) *model.Metric {
	return &model.Metric{
		Category:    cat,
		Name:        name,
		Type:        t,
		Payload:     p,
		SendInPings: []string{DefaultPing},
		DefinedIn:   model.Provenance{Path: "metrics.yaml", Line: 2, Col: 3},
	}
}

func tree(ms ...*model.Metric) *model.Tree {
	t := model.NewTree()
	for _, m := range ms {
		t.AddMetric(m)
	}
	return t
}

func TestLinkRates(t *testing.T) {
	den := metric("browser", "loads", model.TypeCounter, nil)
	crashes := metric("browser", "crash_rate", model.TypeRate, &model.RatePayload{DenominatorMetric: "browser.loads"})
	hangs := metric("browser", "hang_rate", model.TypeRate, &model.RatePayload{DenominatorMetric: "browser.loads"})
	internal := metric("browser", "own_rate", model.TypeRate, &model.RatePayload{})
	bag := diag.NewBag(0)

	require.NoError(t, LinkRates(tree(den, crashes, hangs, internal), diag.BagReporter{Bag: bag}))
	assert.Zero(t, bag.Len())

	assert.Equal(t, model.TypeDenominator, den.Type)
	require.IsType(t, &model.DenominatorPayload{}, den.Payload)
	assert.Equal(t, []string{"browser.crash_rate", "browser.hang_rate"}, den.Payload.(*model.DenominatorPayload).Numerators)

	assert.Equal(t, model.TypeNumerator, crashes.Type)
	assert.Equal(t, "browser.loads", crashes.Payload.(*model.RatePayload).DenominatorMetric)
	assert.Equal(t, model.TypeNumerator, hangs.Type)
	assert.Equal(t, model.TypeRate, internal.Type)
}

func TestLinkRatesDangling(t *testing.T) {
	rate := metric("browser", "crash_rate", model.TypeRate, &model.RatePayload{DenominatorMetric: "browser.nope"})
	err := LinkRates(tree(rate), diag.NopReporter{})
	fe, ok := diag.AsFatal(err)
	require.True(t, ok)
	assert.Equal(t, diag.XfmDanglingDenominator, fe.Code)
	assert.Equal(t, "metrics.yaml", fe.Path)
	assert.Contains(t, fe.Msg, "browser.nope")
}

func TestLinkRatesNotCounter(t *testing.T) {
	den := metric("browser", "flag", model.TypeBoolean, nil)
	rate := metric("browser", "crash_rate", model.TypeRate, &model.RatePayload{DenominatorMetric: "browser.flag"})
	bag := diag.NewBag(0)

	require.NoError(t, LinkRates(tree(den, rate), diag.BagReporter{Bag: bag}))
	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.XfmDenominatorNotCounter, d.Code)
	assert.Equal(t, "browser.crash_rate", d.Header)
	assert.Equal(t, model.TypeRate, rate.Type)
	assert.Equal(t, model.TypeBoolean, den.Type)
}

func TestApplyDefaults(t *testing.T) {
	c := metric("a", "c", model.TypeCounter, nil)
	e := metric("a", "e", model.TypeEvent, nil)
	custom := metric("a", "custom", model.TypeCounter, nil)
	custom.SendInPings = []string{"custom", DefaultPing, "metrics"}
	plain := metric("a", "plain", model.TypeCounter, nil)
	plain.SendInPings = []string{"custom"}

	ApplyDefaults(tree(c, e, custom, plain))
	assert.Equal(t, []string{"metrics"}, c.SendInPings)
	assert.Equal(t, []string{"events"}, e.SendInPings)
	assert.Equal(t, []string{"custom", "metrics"}, custom.SendInPings)
	assert.Equal(t, []string{"custom"}, plain.SendInPings)
}

func TestApplyExpiry(t *testing.T) {
	cfg := &model.Config{Now: func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }}
	today := metric("a", "today", model.TypeCounter, nil)
	today.Expires = model.Expiry{Kind: model.ExpiryDate, Raw: "2024-06-01", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	later := metric("a", "later", model.TypeCounter, nil)
	later.Expires = model.Expiry{Kind: model.ExpiryDate, Raw: "2024-06-02", Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)}
	never := metric("a", "never", model.TypeCounter, nil)

	tr := tree(today, later, never)
	ApplyExpiry(tr, cfg, diag.NopReporter{})
	assert.True(t, today.Disabled)
	assert.False(t, later.Disabled)
	assert.False(t, never.Disabled)

	today.Disabled = false
	cfg.DoNotDisableExpired = true
	ApplyExpiry(tr, cfg, diag.NopReporter{})
	assert.False(t, today.Disabled)
}

func TestApplyExpiryPredicateFailure(t *testing.T) {
	cfg := &model.Config{CustomIsExpired: func(string) (bool, error) { return false, errors.New("boom") }}
	m := metric("a", "x", model.TypeCounter, nil)
	bag := diag.NewBag(0)

	ApplyExpiry(tree(m), cfg, diag.BagReporter{Bag: bag})
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.XfmExpiryPredicate, bag.Items()[0].Code)
	assert.False(t, m.Disabled)
}

func TestRunVersionExpiry(t *testing.T) {
	cfg := &model.Config{ExpireByVersion: 10}
	old := metric("a", "old", model.TypeCounter, nil)
	old.Expires = model.Expiry{Kind: model.ExpiryVersion, Raw: "10", Version: 10}
	fresh := metric("a", "fresh", model.TypeCounter, nil)
	fresh.Expires = model.Expiry{Kind: model.ExpiryVersion, Raw: "11", Version: 11}

	require.NoError(t, Run(tree(old, fresh), cfg, diag.NopReporter{}))
	assert.True(t, old.Disabled)
	assert.False(t, fresh.Disabled)
	assert.Equal(t, []string{"metrics"}, fresh.SendInPings)
}

// Package transform rewrites the merged tree after parsing: send_in_pings
// defaults, rate/counter linking, expiry evaluation. All passes mutate the
// tree in place and visit metrics in identifier order.
package transform

import (
	"fmt"
	"slices"
	"sort"

	"meterc/internal/diag"
	"meterc/internal/model"
)

// DefaultPing is the placeholder store name replaced by ApplyDefaults.
const DefaultPing = "default"

// Run applies every pass in order. The only error is fatal.
func Run(tree *model.Tree, cfg *model.Config, r diag.Reporter) error {
	ApplyDefaults(tree)
	if err := LinkRates(tree, r); err != nil {
		return err
	}
	ApplyExpiry(tree, cfg, r)
	return nil
}

// ApplyDefaults expands the "default" store into the type's built-in ping:
// events go to "events", everything else to "metrics".
func ApplyDefaults(tree *model.Tree) {
	for _, m := range tree.AllMetrics() {
		idx := slices.Index(m.SendInPings, DefaultPing)
		if idx < 0 {
			continue
		}
		store := "metrics"
		if m.Type == model.TypeEvent {
			store = "events"
		}
		out := make([]string, 0, len(m.SendInPings))
		out = append(out, m.SendInPings[:idx]...)
		if !slices.Contains(m.SendInPings, store) {
			out = append(out, store)
		}
		for _, p := range m.SendInPings[idx+1:] {
			if p != DefaultPing {
				out = append(out, p)
			}
		}
		m.SendInPings = out
	}
}

// LinkRates turns rate metrics with an external denominator into numerators
// and the referenced counters into denominators. A reference to a metric
// that does not exist is fatal; one to a metric that is not a counter is
// reported and the rate stays unlinked.
func LinkRates(tree *model.Tree, r diag.Reporter) error {
	touched := make(map[*model.Metric]struct{})
	for _, m := range tree.AllMetrics() {
		if m.Type != model.TypeRate {
			continue
		}
		rate, ok := m.Payload.(*model.RatePayload)
		if !ok || rate.DenominatorMetric == "" {
			continue // внутренний знаменатель
		}
		den, found := tree.Lookup(rate.DenominatorMetric)
		if !found {
			return diag.Fatalf(diag.XfmDanglingDenominator, m.DefinedIn.Path,
				"Metric '%s' references denominator '%s', which does not exist", m.Identifier(), rate.DenominatorMetric)
		}
		if den.Type != model.TypeCounter && den.Type != model.TypeDenominator {
			diag.ReportError(r, diag.XfmDenominatorNotCounter, m.DefinedIn.Path,
				fmt.Sprintf("Denominator '%s' must be a counter, not '%s'", den.Identifier(), den.Type)).
				WithHeader(m.Identifier()).
				At(m.DefinedIn.Line, m.DefinedIn.Col).
				Emit()
			continue
		}

		m.Type = model.TypeNumerator
		rate.DenominatorMetric = den.Identifier()

		dp, ok := den.Payload.(*model.DenominatorPayload)
		if !ok {
			dp = &model.DenominatorPayload{}
			den.Payload = dp
		}
		den.Type = model.TypeDenominator
		dp.Numerators = append(dp.Numerators, m.Identifier())
		touched[den] = struct{}{}
	}
	for den := range touched {
		dp := den.Payload.(*model.DenominatorPayload)
		sort.Strings(dp.Numerators)
		dp.Numerators = slices.Compact(dp.Numerators)
	}
	return nil
}

// ApplyExpiry disables expired metrics unless cfg.DoNotDisableExpired is set.
// Failures of a custom expiry predicate are reported per metric.
func ApplyExpiry(tree *model.Tree, cfg *model.Config, r diag.Reporter) {
	for _, m := range tree.AllMetrics() {
		expired, err := m.Expires.IsExpired(cfg)
		if err != nil {
			diag.ReportError(r, diag.XfmExpiryPredicate, m.DefinedIn.Path, err.Error()).
				WithHeader(m.Identifier()).
				At(m.DefinedIn.Line, m.DefinedIn.Col).
				Emit()
			continue
		}
		if expired && (cfg == nil || !cfg.DoNotDisableExpired) {
			m.Disabled = true
		}
	}
}

package lint

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterc/internal/diag"
	"meterc/internal/model"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func counter(cat, name string) *model.Metric {
	return &model.Metric{
		Type:        model.TypeCounter,
		Category:    cat,
		Name:        name,
		Bugs:        []model.Bug{{Text: "https://bugzilla.example.com/1"}},
		DataReviews: []string{"https://example.com/review"},
		SendInPings: []string{"metrics"},
		DefinedIn:   model.Provenance{Path: "metrics.yaml", Line: 3, Col: 3},
	}
}

func treeOf(ms ...*model.Metric) *model.Tree {
	t := model.NewTree()
	for _, m := range ms {
		t.AddMetric(m)
	}
	return t
}

func lines(nits []Nit) []string {
	out := make([]string, len(nits))
	for i, n := range nits {
		out[i] = n.String()
	}
	return out
}

func run(t *testing.T, tree *model.Tree, cfg *model.Config) []Nit {
	t.Helper()
	if cfg == nil {
		cfg = &model.Config{}
	}
	cfg.Now = fixedNow
	return Run(tree, cfg)
}

func TestCleanTree(t *testing.T) {
	nits := run(t, treeOf(counter("browser", "loads"), counter("browser", "crashes")), nil)
	assert.Empty(t, nits)
	assert.False(t, HasErrors(nits))
}

func TestCommonPrefix(t *testing.T) {
	nits := run(t, treeOf(
		counter("browser", "page_load_count"),
		counter("browser", "page_load_time"),
		counter("browser", "page_load"),
	), nil)
	assert.Equal(t, []string{
		"COMMON_PREFIX: browser: Within category 'browser', all metrics begin with prefix 'page'. " +
			"Remove prefixes and (possibly) rename category.",
	}, lines(nits))
	assert.True(t, HasErrors(nits))

	// одно и то же слово целиком не считается префиксом
	assert.Empty(t, run(t, treeOf(counter("c", "a"), counter("c", "a_b")), nil))
}

func TestCategoryCheckSuppressedByAnyMetric(t *testing.T) {
	a := counter("metrics", "first_a")
	b := counter("metrics", "first_b")
	b.NoLint = []string{CommonPrefix}
	nits := run(t, treeOf(a, b), nil)
	assert.Equal(t, []string{"CATEGORY_GENERIC: metrics: Category 'metrics' is too generic."}, lines(nits))
}

func TestUnitInName(t *testing.T) {
	redundant := counter("perf", "startup_ms")
	redundant.Type = model.TypeTimespan
	redundant.Payload = &model.TimePayload{TimeUnit: model.Millisecond}
	mismatch := counter("perf", "heap_kb")
	mismatch.Type = model.TypeMemoryDistribution
	mismatch.Payload = &model.MemoryPayload{MemoryUnit: model.Byte}
	quantity := counter("perf", "width_pixels")
	quantity.Type = model.TypeQuantity
	quantity.Payload = &model.QuantityPayload{Unit: "pixels"}

	nits := run(t, treeOf(redundant, mismatch, quantity), nil)
	assert.Equal(t, []string{
		"UNIT_IN_NAME: perf.heap_kb: Suffix 'kb' doesn't match memory_unit. Confirm the unit is correct and only include memory_unit.",
		"UNIT_IN_NAME: perf.startup_ms: Suffix 'ms' is redundant with time_unit. Only include time_unit.",
		"UNIT_IN_NAME: perf.width_pixels: Suffix 'pixels' is redundant with unit param. Only include unit.",
	}, lines(nits))
}

func TestMetricChecks(t *testing.T) {
	bug := counter("a", "bugs")
	bug.Bugs = []model.Bug{{Text: "1234", Numeric: true}, {Text: "https://x"}, {Text: "42", Numeric: true}}
	baseline := counter("a", "baseline_user")
	baseline.SendInPings = []string{"baseline", "metric"}
	review := counter("a", "review")
	review.DataReviews = []string{"TODO"}
	user := counter("a", "user")
	user.Lifetime = model.LifetimeUser
	user.Expires = model.Expiry{Kind: model.ExpiryDate, Raw: "2024-12-01", Date: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)}
	far := counter("a", "far")
	far.Expires = model.Expiry{Kind: model.ExpiryDate, Raw: "2030-01-01", Date: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	typed := counter("a", "load_counter")

	nits := run(t, treeOf(bug, baseline, review, user, far, typed), nil)
	got := map[string]string{}
	for _, n := range nits {
		got[n.Target+" "+n.Check] = n.Message
	}
	assert.Equal(t, "For bugs 1234, 42: Bug numbers are deprecated and should be changed to full URLs.", got["a.bugs BUG_NUMBER"])
	assert.Contains(t, got["a.baseline_user BASELINE_PING"], "Glean-internal")
	assert.Equal(t, "Ping 'metric' seems misspelled. Did you mean 'metrics'?", got["a.baseline_user MISSPELLED_PING"])
	assert.Contains(t, got, "a.review EMPTY_DATAREVIEW")
	assert.Contains(t, got, "a.user USER_LIFETIME_EXPIRATION")
	assert.Contains(t, got["a.far EXPIRATION_DATE_TOO_FAR"], "2030-01-01")
	assert.Contains(t, got, "a.load_counter TYPE_IN_NAME")
	assert.Len(t, nits, 7)

	// allow_reserved разрешает baseline
	nits = run(t, treeOf(baseline), &model.Config{AllowReserved: true})
	assert.Equal(t, []string{MisspelledPing}, checks(nits))
}

func checks(nits []Nit) []string {
	var out []string
	for _, n := range nits {
		out = append(out, n.Check)
	}
	return out
}

func TestNoLintAndSuperfluous(t *testing.T) {
	m := counter("a", "startup_ms")
	m.Type = model.TypeTimespan
	m.Payload = &model.TimePayload{TimeUnit: model.Millisecond}
	m.NoLint = []string{UnitInName, BugNumber, CommonPrefix}

	nits := run(t, treeOf(m), nil)
	require.Len(t, nits, 1)
	assert.Equal(t, "SUPERFLUOUS_NO_LINT: a.startup_ms: Superfluous no_lint entry 'BUG_NUMBER'. Please remove it.", nits[0].String())
	assert.Equal(t, diag.SevWarning, nits[0].Severity)
	assert.False(t, HasErrors(nits))

	// файловый no_lint не бывает лишним
	file := counter("a", "startup_ms")
	file.Type = model.TypeTimespan
	file.Payload = &model.TimePayload{TimeUnit: model.Millisecond}
	file.FileNoLint = []string{UnitInName, BugNumber}
	assert.Empty(t, run(t, treeOf(file), nil))
}

func TestTagNoLintIsSuperfluous(t *testing.T) {
	tree := treeOf(counter("a", "x"))
	tree.Tags["foo"] = &model.Tag{Name: "foo", Description: "A tag.", NoLint: []string{BugNumber, BugNumber},
		DefinedIn: model.Provenance{Path: "tags.yaml", Line: 2, Col: 1}}

	nits := run(t, tree, nil)
	require.Len(t, nits, 1)
	assert.Equal(t, "SUPERFLUOUS_NO_LINT: foo: Superfluous no_lint entry 'BUG_NUMBER'. Please remove it.", nits[0].String())
	assert.Equal(t, "tags.yaml", nits[0].Where.Path)
	assert.False(t, HasErrors(nits))
}

func TestPingsTagsAndUnknownPings(t *testing.T) {
	tree := treeOf(counter("a", "x"))
	x, _ := tree.Lookup("a.x")
	x.SendInPings = []string{"metrics", "launch", "nowhere"}
	x.Tags = []string{"known", "bogus"}
	tree.Tags["known"] = &model.Tag{Name: "known"}
	tree.Pings["launch"] = &model.Ping{Name: "launch"}
	tree.Pings["startup-ping"] = &model.Ping{Name: "startup-ping", Tags: []string{"known"}}
	tree.Pings["ping_extra"] = &model.Ping{Name: "ping_extra", NoLint: []string{RedundantPing}, Tags: []string{"known"}}

	nits := run(t, tree, &model.Config{RequireTags: true})
	assert.Equal(t, []string{
		"UNKNOWN_PING: a.x: Ping 'nowhere' is not defined in any pings file.",
		"INVALID_TAGS: a.x: Invalid tags specified: bogus",
		"TAGS_REQUIRED: launch: Tags are required but no tags were specified.",
		"REDUNDANT_PING: startup-ping: The suffix 'ping' is redundant.",
	}, lines(nits))
}

func TestNitDiagnostic(t *testing.T) {
	n := Nit{Check: BugNumber, Code: diag.LntBugNumber, Severity: diag.SevError, Target: "a.x",
		Message: "msg", Where: model.Provenance{Path: "m.yaml", Line: 4, Col: 3}}
	d := n.Diagnostic()
	assert.Equal(t, "m.yaml", d.Path)
	assert.Equal(t, uint32(4), d.Pos.Line)
	assert.Equal(t, "BUG_NUMBER: msg", d.Message)
	assert.True(t, strings.HasPrefix(Hint, "To disable a check"))
	assert.Len(t, Checks(), 19)
}

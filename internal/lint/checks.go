package lint

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"meterc/internal/diag"
	"meterc/internal/model"
)

// Имена проверок.
const (
	CommonPrefix           = "COMMON_PREFIX"
	CategoryGeneric        = "CATEGORY_GENERIC"
	UnitInName             = "UNIT_IN_NAME"
	TypeInName             = "TYPE_IN_NAME"
	BugNumber              = "BUG_NUMBER"
	BaselinePing           = "BASELINE_PING"
	MisspelledPing         = "MISSPELLED_PING"
	UnknownPing            = "UNKNOWN_PING"
	UserLifetimeExpiration = "USER_LIFETIME_EXPIRATION"
	ExpirationDateTooFar   = "EXPIRATION_DATE_TOO_FAR"
	EmptyDatareview        = "EMPTY_DATAREVIEW"
	InvalidTags            = "INVALID_TAGS"
	TagsRequired           = "TAGS_REQUIRED"
	RedundantPing          = "REDUNDANT_PING"
	SuperfluousNoLint      = "SUPERFLUOUS_NO_LINT"
)

// MaxExpirationDays bounds how far in the future an expiry date may lie.
const MaxExpirationDays = 730

// Info describes a registered check.
type Info struct {
	Name     string
	Code     diag.Code
	Severity diag.Severity
	Scope    string
}

// env is what checks may look at besides the object itself.
type env struct {
	cfg  *model.Config
	tree *model.Tree
}

type categoryCheck struct {
	Info
	run func(e env, category string, metrics []*model.Metric) []string
}

type metricCheck struct {
	Info
	run func(e env, m *model.Metric) []string
}

type pingCheck struct {
	Info
	run func(e env, p *model.Ping) []string
}

var categoryChecks = []categoryCheck{
	{Info{CommonPrefix, diag.LntCommonPrefix, diag.SevError, "category"}, checkCommonPrefix},
	{Info{CategoryGeneric, diag.LntCategoryGeneric, diag.SevError, "category"}, checkCategoryGeneric},
}

var metricChecks = []metricCheck{
	{Info{UnitInName, diag.LntUnitInName, diag.SevError, "metric"}, checkUnitInName},
	{Info{TypeInName, diag.LntTypeInName, diag.SevWarning, "metric"}, checkTypeInName},
	{Info{BugNumber, diag.LntBugNumber, diag.SevError, "metric"}, func(_ env, m *model.Metric) []string { return checkBugs(m.Bugs) }},
	{Info{BaselinePing, diag.LntBaselinePing, diag.SevError, "metric"}, checkBaselinePing},
	{Info{MisspelledPing, diag.LntMisspelledPing, diag.SevError, "metric"}, checkMisspelledPings},
	{Info{UnknownPing, diag.LntUnknownPing, diag.SevError, "metric"}, checkUnknownPings},
	{Info{UserLifetimeExpiration, diag.LntUserLifetimeExpiration, diag.SevWarning, "metric"}, checkUserLifetimeExpiration},
	{Info{ExpirationDateTooFar, diag.LntExpirationDateTooFar, diag.SevWarning, "metric"}, checkExpirationDateTooFar},
	{Info{EmptyDatareview, diag.LntEmptyDatareview, diag.SevWarning, "metric"}, func(_ env, m *model.Metric) []string { return checkDataReviews(m.DataReviews) }},
	{Info{InvalidTags, diag.LntInvalidTags, diag.SevError, "metric"}, func(e env, m *model.Metric) []string { return checkTags(e, m.Tags) }},
	{Info{TagsRequired, diag.LntTagsRequired, diag.SevError, "metric"}, func(e env, m *model.Metric) []string { return checkTagsRequired(e, m.Tags) }},
}

var pingChecks = []pingCheck{
	{Info{BugNumber, diag.LntBugNumber, diag.SevError, "ping"}, func(_ env, p *model.Ping) []string { return checkBugs(p.Bugs) }},
	{Info{EmptyDatareview, diag.LntEmptyDatareview, diag.SevWarning, "ping"}, func(_ env, p *model.Ping) []string { return checkDataReviews(p.DataReviews) }},
	{Info{InvalidTags, diag.LntInvalidTags, diag.SevError, "ping"}, func(e env, p *model.Ping) []string { return checkTags(e, p.Tags) }},
	{Info{TagsRequired, diag.LntTagsRequired, diag.SevError, "ping"}, func(e env, p *model.Ping) []string { return checkTagsRequired(e, p.Tags) }},
	{Info{RedundantPing, diag.LntRedundantPing, diag.SevError, "ping"}, checkRedundantPing},
}

// Checks lists every registered check in scope order.
func Checks() []Info {
	var out []Info
	for _, c := range categoryChecks {
		out = append(out, c.Info)
	}
	for _, c := range metricChecks {
		out = append(out, c.Info)
	}
	for _, c := range pingChecks {
		out = append(out, c.Info)
	}
	return append(out, superfluousInfo)
}

var superfluousInfo = Info{SuperfluousNoLint, diag.LntSuperfluousNoLint, diag.SevWarning, "engine"}

var wordSep = regexp.MustCompile(`[._-]`)

func splitWords(name string) []string {
	return wordSep.Split(name, -1)
}

func checkCommonPrefix(_ env, category string, metrics []*model.Metric) []string {
	if len(metrics) < 2 {
		return nil
	}
	words := make([][]string, len(metrics))
	for i, m := range metrics {
		words[i] = splitWords(m.Name)
	}
	slices.SortFunc(words, func(a, b []string) int { return slices.Compare(a, b) })
	first, last := words[0], words[len(words)-1]

	// хотя бы одно слово после префикса должно остаться
	n := min(len(first), len(last)) - 1
	i := 0
	for i < n && first[i] == last[i] {
		i++
	}
	if i == 0 {
		return nil
	}
	return []string{fmt.Sprintf(
		"Within category '%s', all metrics begin with prefix '%s'. Remove prefixes and (possibly) rename category.",
		category, strings.Join(first[:i], "_"))}
}

var genericCategories = []string{"metrics", "events"}

func checkCategoryGeneric(_ env, category string, _ []*model.Metric) []string {
	if slices.Contains(genericCategories, category) {
		return []string{fmt.Sprintf("Category '%s' is too generic.", category)}
	}
	return nil
}

var timeUnitAbbrev = map[model.TimeUnit]string{
	model.Nanosecond:  "ns",
	model.Microsecond: "us",
	model.Millisecond: "ms",
	model.Second:      "s",
	model.Minute:      "m",
	model.Hour:        "h",
	model.Day:         "d",
}

var memoryUnitAbbrev = map[model.MemoryUnit]string{
	model.Byte:     "b",
	model.Kilobyte: "kb",
	model.Megabyte: "mb",
	model.Gigabyte: "gb",
}

func isTimeWord(w string) bool {
	for u, a := range timeUnitAbbrev {
		if w == string(u) || w == a {
			return true
		}
	}
	return false
}

func isMemoryWord(w string) bool {
	for u, a := range memoryUnitAbbrev {
		if w == string(u) || w == a {
			return true
		}
	}
	return false
}

func checkUnitInName(_ env, m *model.Metric) []string {
	words := splitWords(m.Name)
	suffix := words[len(words)-1]

	switch p := m.Payload.(type) {
	case *model.TimePayload:
		if suffix == string(p.TimeUnit) || suffix == timeUnitAbbrev[p.TimeUnit] {
			return []string{fmt.Sprintf("Suffix '%s' is redundant with time_unit. Only include time_unit.", suffix)}
		}
		if isTimeWord(suffix) {
			return []string{fmt.Sprintf(
				"Suffix '%s' doesn't match time_unit. Confirm the unit is correct and only include time_unit.", suffix)}
		}
	case *model.MemoryPayload:
		if suffix == string(p.MemoryUnit) || suffix == memoryUnitAbbrev[p.MemoryUnit] {
			return []string{fmt.Sprintf("Suffix '%s' is redundant with memory_unit. Only include memory_unit.", suffix)}
		}
		if isMemoryWord(suffix) {
			return []string{fmt.Sprintf(
				"Suffix '%s' doesn't match memory_unit. Confirm the unit is correct and only include memory_unit.", suffix)}
		}
	case *model.QuantityPayload:
		return unitSuffix(suffix, p.Unit)
	case *model.CustomDistributionPayload:
		return unitSuffix(suffix, p.Unit)
	}
	return nil
}

func unitSuffix(suffix, unit string) []string {
	if unit != "" && suffix == unit {
		return []string{fmt.Sprintf("Suffix '%s' is redundant with unit param. Only include unit.", suffix)}
	}
	return nil
}

func checkTypeInName(_ env, m *model.Metric) []string {
	typeWords := splitWords(m.Type.String())
	words := splitWords(m.Name)
	if len(words) < 2 {
		return nil
	}
	suffix := words[len(words)-1]
	if suffix == typeWords[len(typeWords)-1] {
		return []string{fmt.Sprintf(
			"Suffix '%s' is redundant with the metric type '%s'. Remove it from the name.", suffix, m.Type)}
	}
	return nil
}

func checkBugs(bugs []model.Bug) []string {
	var numbers []string
	for _, b := range bugs {
		if b.Numeric {
			numbers = append(numbers, b.Text)
		}
	}
	if len(numbers) == 0 {
		return nil
	}
	return []string{fmt.Sprintf(
		"For bugs %s: Bug numbers are deprecated and should be changed to full URLs.", strings.Join(numbers, ", "))}
}

func checkBaselinePing(e env, m *model.Metric) []string {
	if e.cfg.AllowReserved || !slices.Contains(m.SendInPings, "baseline") {
		return nil
	}
	return []string{"The baseline ping is Glean-internal. User metrics should go into the 'metrics' ping or custom pings."}
}

var builtinPings = []string{"metrics", "events"}

func checkMisspelledPings(_ env, m *model.Metric) []string {
	var out []string
	for _, ping := range m.SendInPings {
		for _, builtin := range builtinPings {
			if levenshtein.ComputeDistance(ping, builtin) == 1 {
				out = append(out, fmt.Sprintf("Ping '%s' seems misspelled. Did you mean '%s'?", ping, builtin))
			}
		}
	}
	return out
}

// checkUnknownPings only runs when the tree defines custom pings; otherwise
// the pings may live in another run.
func checkUnknownPings(e env, m *model.Metric) []string {
	if len(e.tree.Pings) == 0 {
		return nil
	}
	var out []string
	for _, ping := range m.SendInPings {
		if _, ok := e.tree.Pings[ping]; ok || model.IsReservedPing(ping) {
			continue
		}
		// опечатки во встроенных пингах уже ловит MISSPELLED_PING
		if len(checkMisspelledPings(e, &model.Metric{SendInPings: []string{ping}})) > 0 {
			continue
		}
		out = append(out, fmt.Sprintf("Ping '%s' is not defined in any pings file.", ping))
	}
	return out
}

func checkUserLifetimeExpiration(_ env, m *model.Metric) []string {
	if m.Lifetime != model.LifetimeUser || m.Expires.Kind == model.ExpiryNever {
		return nil
	}
	return []string{"Metrics with 'user' lifetime cannot have an expiration date. " +
		"They live as long as the user profile does. Set expires to 'never'."}
}

func checkExpirationDateTooFar(e env, m *model.Metric) []string {
	if m.Expires.Kind != model.ExpiryDate || m.Expires.Date.IsZero() {
		return nil
	}
	limit := e.cfg.Today().AddDate(0, 0, MaxExpirationDays)
	if !m.Expires.Date.After(limit) {
		return nil
	}
	return []string{fmt.Sprintf(
		"Expiration date %s is more than %d days in the future. Use a closer date or 'never'.",
		m.Expires.Raw, MaxExpirationDays)}
}

func checkDataReviews(reviews []string) []string {
	for _, r := range reviews {
		if t := strings.ToLower(strings.TrimSpace(r)); t == "" || t == "todo" {
			return []string{"List of data reviews should not contain empty strings or TODO markers."}
		}
	}
	return nil
}

// checkTags only runs when the tree defines tags.
func checkTags(e env, tags []string) []string {
	if len(e.tree.Tags) == 0 {
		return nil
	}
	var invalid []string
	for _, t := range tags {
		if _, ok := e.tree.Tags[t]; !ok {
			invalid = append(invalid, t)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return []string{"Invalid tags specified: " + strings.Join(invalid, ", ")}
}

func checkTagsRequired(e env, tags []string) []string {
	if !e.cfg.RequireTags || len(tags) > 0 {
		return nil
	}
	return []string{"Tags are required but no tags were specified."}
}

func checkRedundantPing(_ env, p *model.Ping) []string {
	words := splitWords(p.Name)
	switch {
	case words[0] == "ping":
		return []string{"The prefix 'ping' is redundant."}
	case words[len(words)-1] == "ping":
		return []string{"The suffix 'ping' is redundant."}
	case slices.Contains(words, "ping"):
		return []string{"The word 'ping' is redundant."}
	case slices.Contains(words, "custom"):
		return []string{"The word 'custom' is redundant."}
	}
	return nil
}

package model

import (
	"sort"

	"meterc/internal/diag"
)

// ReservedPingNames are built-in pings that need AllowReserved to be defined.
var ReservedPingNames = []string{
	"baseline",
	"metrics",
	"events",
	"deletion-request",
	"default",
	"glean_client_info",
	"glean_internal_info",
	"all-pings",
}

// IsReservedPing reports whether name belongs to a built-in ping.
func IsReservedPing(name string) bool {
	return contains(ReservedPingNames, name)
}

// Reason is an enumerated reason a ping may be sent for.
type Reason struct {
	Code        string
	Description string
}

// Ping describes a data-submission envelope.
type Ping struct {
	Name                string
	Description         string
	IncludeClientID     bool
	SendIfEmpty         bool
	Enabled             bool
	Reasons             []Reason // sorted by Code
	Bugs                []Bug
	DataReviews         []string
	NotificationEmails  []string
	Tags                []string
	Schedule            []string
	PreciseTimestamps   bool
	IncludeInfoSections bool
	NoLint              []string
	FileNoLint          []string
	DefinedIn           Provenance
}

// IsReserved reports whether the ping is one of the built-in names.
func (p *Ping) IsReserved() bool { return IsReservedPing(p.Name) }

// Suppressed reports whether check is listed in the ping or file no_lint.
func (p *Ping) Suppressed(check string) bool {
	return contains(p.NoLint, check) || contains(p.FileNoLint, check)
}

// NewPing builds one ping definition.
func NewPing(name string, fields map[string]any, _ *Config) (*Ping, error) {
	r := raw(fields)
	p := &Ping{Name: name}
	var err error
	if p.Description, err = r.str("description"); err != nil {
		return nil, err
	}
	if !r.has("include_client_id") {
		return nil, errorf(diag.ObjMissingParameter, "include_client_id is required for pings")
	}
	if p.IncludeClientID, err = r.boolean("include_client_id", false); err != nil {
		return nil, err
	}
	if p.SendIfEmpty, err = r.boolean("send_if_empty", false); err != nil {
		return nil, err
	}
	if p.Enabled, err = r.boolean("enabled", true); err != nil {
		return nil, err
	}
	if p.Bugs, err = parseBugs(r); err != nil {
		return nil, err
	}
	if p.DataReviews, err = r.strings("data_reviews"); err != nil {
		return nil, err
	}
	if p.NotificationEmails, err = r.strings("notification_emails"); err != nil {
		return nil, err
	}
	if p.NoLint, err = r.strings("no_lint"); err != nil {
		return nil, err
	}

	reasons, err := r.mapping("reasons")
	if err != nil {
		return nil, err
	}
	for code, v := range reasons {
		desc, ok := v.(string)
		if !ok {
			return nil, errorf(diag.ObjInvalid, "Reason '%s' must have a string description", code)
		}
		p.Reasons = append(p.Reasons, Reason{Code: code, Description: desc})
	}
	sort.Slice(p.Reasons, func(i, j int) bool { return p.Reasons[i].Code < p.Reasons[j].Code })

	meta, err := r.mapping("metadata")
	if err != nil {
		return nil, err
	}
	tags, err := meta.strings("tags")
	if err != nil {
		return nil, err
	}
	p.Tags = sortedSet(tags)
	if p.Schedule, err = meta.strings("ping_schedule"); err != nil {
		return nil, err
	}
	if p.PreciseTimestamps, err = meta.boolean("precise_timestamps", true); err != nil {
		return nil, err
	}
	if p.IncludeInfoSections, err = meta.boolean("include_info_sections", true); err != nil {
		return nil, err
	}
	return p, nil
}

// ReasonCodes returns the reason codes in sorted order.
func (p *Ping) ReasonCodes() []string {
	out := make([]string, len(p.Reasons))
	for i, r := range p.Reasons {
		out[i] = r.Code
	}
	return out
}

package model

// Serialize converts the metric into a plain JSON-like tree. Maps are keyed
// so that sorted-key encoders produce deterministic output.
func (m *Metric) Serialize() map[string]any {
	out := map[string]any{
		"type":                m.Type.String(),
		"category":            m.Category,
		"name":                m.Name,
		"description":         m.Description,
		"bugs":                serializeBugs(m.Bugs),
		"data_reviews":        nonNil(m.DataReviews),
		"notification_emails": nonNil(m.NotificationEmails),
		"lifetime":            m.Lifetime.String(),
		"expires":             m.Expires.Raw,
		"disabled":            m.Disabled,
		"send_in_pings":       nonNil(m.SendInPings),
		"version":             m.Version,
	}
	if len(m.Tags) > 0 {
		out["metadata"] = map[string]any{"tags": m.Tags}
	}
	if len(m.NoLint) > 0 {
		out["no_lint"] = m.NoLint
	}
	if len(m.DataSensitivity) > 0 {
		out["data_sensitivity"] = m.DataSensitivity
	}
	if m.GeckoDatapoint != "" {
		out["gecko_datapoint"] = m.GeckoDatapoint
	}
	if m.TelemetryMirror != "" {
		out["telemetry_mirror"] = m.TelemetryMirror
	}
	if m.Labels != nil && !m.Labels.IsDynamic() {
		out["labels"] = m.Labels.Static
	}
	if m.DualLabels != nil {
		out["dual_labels"] = map[string]any{
			"key":      serializeDimension(m.DualLabels.Key),
			"category": serializeDimension(m.DualLabels.Category),
		}
	}

	switch p := m.Payload.(type) {
	case *TimePayload:
		out["time_unit"] = string(p.TimeUnit)
	case *MemoryPayload:
		out["memory_unit"] = string(p.MemoryUnit)
	case *CustomDistributionPayload:
		out["range_min"] = p.RangeMin
		out["range_max"] = p.RangeMax
		out["bucket_count"] = p.BucketCount
		out["histogram_type"] = string(p.HistogramType)
		if p.Unit != "" {
			out["unit"] = p.Unit
		}
	case *QuantityPayload:
		out["unit"] = p.Unit
	case *RatePayload:
		if p.DenominatorMetric != "" {
			out["denominator_metric"] = p.DenominatorMetric
		}
	case *DenominatorPayload:
		out["numerators"] = nonNil(p.Numerators)
	case *EventPayload:
		extras := make(map[string]any, len(p.ExtraKeys))
		for _, k := range p.ExtraKeys {
			extras[k.Name] = map[string]any{"description": k.Description, "type": string(k.Type)}
		}
		out["extra_keys"] = extras
	case *ObjectPayload:
		out["structure"] = serializeNode(p.Structure)
	case *UseCounterPayload:
		out["denominator"] = p.Denominator
	}
	return out
}

// Serialize converts the ping into a plain JSON-like tree.
func (p *Ping) Serialize() map[string]any {
	reasons := make(map[string]any, len(p.Reasons))
	for _, r := range p.Reasons {
		reasons[r.Code] = r.Description
	}
	out := map[string]any{
		"name":                p.Name,
		"description":         p.Description,
		"include_client_id":   p.IncludeClientID,
		"send_if_empty":       p.SendIfEmpty,
		"enabled":             p.Enabled,
		"reasons":             reasons,
		"bugs":                serializeBugs(p.Bugs),
		"data_reviews":        nonNil(p.DataReviews),
		"notification_emails": nonNil(p.NotificationEmails),
		"metadata": map[string]any{
			"tags":                  nonNil(p.Tags),
			"ping_schedule":         nonNil(p.Schedule),
			"precise_timestamps":    p.PreciseTimestamps,
			"include_info_sections": p.IncludeInfoSections,
		},
	}
	if len(p.NoLint) > 0 {
		out["no_lint"] = p.NoLint
	}
	return out
}

// Serialize converts the tag into a plain JSON-like tree.
func (t *Tag) Serialize() map[string]any {
	return map[string]any{"name": t.Name, "description": t.Description}
}

// Serialize converts the whole tree: categories, plus the distinguished
// "pings" and "tags" entries.
func (t *Tree) Serialize() map[string]any {
	out := make(map[string]any, len(t.Metrics)+2)
	for cat, metrics := range t.Metrics {
		objs := make(map[string]any, len(metrics))
		for name, m := range metrics {
			objs[name] = m.Serialize()
		}
		out[cat] = objs
	}
	pings := make(map[string]any, len(t.Pings))
	for name, p := range t.Pings {
		pings[name] = p.Serialize()
	}
	out[PingsCategory] = pings
	tags := make(map[string]any, len(t.Tags))
	for name, tg := range t.Tags {
		tags[name] = tg.Serialize()
	}
	out[TagsCategory] = tags
	return out
}

func serializeBugs(bugs []Bug) []any {
	out := make([]any, len(bugs))
	for i, b := range bugs {
		out[i] = b.Text
	}
	return out
}

func serializeDimension(d LabelDimension) map[string]any {
	out := map[string]any{}
	if d.Description != "" {
		out["description"] = d.Description
	}
	if !d.IsDynamic() {
		out["labels"] = d.Static
	}
	return out
}

func serializeNode(n *ObjectNode) map[string]any {
	if n == nil {
		return nil
	}
	out := map[string]any{"type": string(n.Kind)}
	if n.Description != "" {
		out["description"] = n.Description
	}
	if n.Items != nil {
		out["items"] = serializeNode(n.Items)
	}
	if n.Properties != nil {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = serializeNode(child)
		}
		out["properties"] = props
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

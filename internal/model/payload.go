package model

import (
	"sort"

	"meterc/internal/diag"
)

// Payload holds the variant-specific fields of a Metric. The set of
// implementations is closed.
type Payload interface {
	payload()
}

// TimePayload: timespan, datetime, timing distributions.
type TimePayload struct {
	TimeUnit TimeUnit
}

// MemoryPayload: memory distributions.
type MemoryPayload struct {
	MemoryUnit MemoryUnit
}

// CustomDistributionPayload: custom distributions.
type CustomDistributionPayload struct {
	RangeMin      int
	RangeMax      int
	BucketCount   int
	HistogramType HistogramType
	Unit          string
}

// QuantityPayload: quantities.
type QuantityPayload struct {
	Unit string
}

// RatePayload: rate metrics and, after linking, numerators.
// Empty DenominatorMetric means an internal denominator.
type RatePayload struct {
	DenominatorMetric string
}

// DenominatorPayload: counters that serve as external rate denominators.
type DenominatorPayload struct {
	Numerators []string
}

// EventPayload: events.
type EventPayload struct {
	ExtraKeys []ExtraKey // sorted by Name
}

// ExtraKey is one allowed key of an event's extra object.
type ExtraKey struct {
	Name        string
	Description string
	Type        ExtraKeyType
}

// ObjectPayload: object metrics.
type ObjectPayload struct {
	Structure *ObjectNode
}

// UseCounterPayload: use counters.
type UseCounterPayload struct {
	Denominator string
}

func (*TimePayload) payload()               {}
func (*MemoryPayload) payload()             {}
func (*CustomDistributionPayload) payload() {}
func (*QuantityPayload) payload()           {}
func (*RatePayload) payload()               {}
func (*DenominatorPayload) payload()        {}
func (*EventPayload) payload()              {}
func (*ObjectPayload) payload()             {}
func (*UseCounterPayload) payload()         {}

// MaxBucketCount limits custom distributions.
const MaxBucketCount = 100

// MaxExtraKeys limits events.
const MaxExtraKeys = 50

func buildTime(def TimeUnit) payloadBuilder {
	return func(r raw, _ *Config) (Payload, error) {
		unit, err := r.str("time_unit")
		if err != nil {
			return nil, err
		}
		if unit == "" {
			return &TimePayload{TimeUnit: def}, nil
		}
		if _, ok := timeUnits[TimeUnit(unit)]; !ok {
			return nil, errorf(diag.ObjInvalid, "Unknown time_unit '%s'", unit)
		}
		return &TimePayload{TimeUnit: TimeUnit(unit)}, nil
	}
}

func buildMemory(r raw, _ *Config) (Payload, error) {
	unit, err := r.str("memory_unit")
	if err != nil {
		return nil, err
	}
	if unit == "" {
		return nil, errorf(diag.ObjMissingParameter, "memory_unit is required for memory distributions")
	}
	if _, ok := memoryUnits[MemoryUnit(unit)]; !ok {
		return nil, errorf(diag.ObjInvalid, "Unknown memory_unit '%s'", unit)
	}
	return &MemoryPayload{MemoryUnit: MemoryUnit(unit)}, nil
}

func buildCustomDistribution(r raw, _ *Config) (Payload, error) {
	for _, key := range []string{"range_max", "bucket_count", "histogram_type"} {
		if !r.has(key) {
			return nil, errorf(diag.ObjMissingParameter, "%s is required for custom distributions", key)
		}
	}
	p := &CustomDistributionPayload{}
	var err error
	if p.RangeMin, err = r.integer("range_min", 1); err != nil {
		return nil, err
	}
	if p.RangeMax, err = r.integer("range_max", 0); err != nil {
		return nil, err
	}
	if p.BucketCount, err = r.integer("bucket_count", 0); err != nil {
		return nil, err
	}
	ht, err := r.str("histogram_type")
	if err != nil {
		return nil, err
	}
	switch HistogramType(ht) {
	case HistogramLinear, HistogramExponential:
		p.HistogramType = HistogramType(ht)
	default:
		return nil, errorf(diag.ObjInvalid, "Unknown histogram_type '%s'", ht)
	}
	if p.Unit, err = r.str("unit"); err != nil {
		return nil, err
	}
	if p.BucketCount > MaxBucketCount {
		return nil, errorf(diag.ObjTooManyBuckets,
			"bucket_count %d exceeds the maximum of %d buckets", p.BucketCount, MaxBucketCount)
	}
	if p.BucketCount < 1 {
		return nil, errorf(diag.ObjInvalidRange, "bucket_count must be at least 1")
	}
	if p.RangeMin >= p.RangeMax {
		return nil, errorf(diag.ObjInvalidRange,
			"range_min (%d) must be less than range_max (%d)", p.RangeMin, p.RangeMax)
	}
	return p, nil
}

func buildQuantity(r raw, _ *Config) (Payload, error) {
	unit, err := r.str("unit")
	if err != nil {
		return nil, err
	}
	if unit == "" {
		return nil, errorf(diag.ObjMissingParameter, "unit is required for quantity metrics")
	}
	return &QuantityPayload{Unit: unit}, nil
}

func buildRate(r raw, _ *Config) (Payload, error) {
	den, err := r.str("denominator_metric")
	if err != nil {
		return nil, err
	}
	return &RatePayload{DenominatorMetric: den}, nil
}

func buildUseCounter(r raw, _ *Config) (Payload, error) {
	den, err := r.str("denominator")
	if err != nil {
		return nil, err
	}
	if den == "" {
		return nil, errorf(diag.ObjMissingParameter, "denominator is required on all use_counter metrics")
	}
	return &UseCounterPayload{Denominator: den}, nil
}

func buildEvent(r raw, cfg *Config) (Payload, error) {
	extras, err := r.mapping("extra_keys")
	if err != nil {
		return nil, err
	}
	if len(extras) > MaxExtraKeys {
		return nil, errorf(diag.ObjInvalid, "Events may have at most %d extra keys, got %d", MaxExtraKeys, len(extras))
	}
	p := &EventPayload{}
	for name, v := range extras {
		if !cfg.allowReserved() && IsReservedName(name) {
			return nil, errorf(diag.ObjReservedExtraKey, "Extra key '%s' is reserved for internal use.", name)
		}
		spec, ok := v.(map[string]any)
		if !ok {
			return nil, errorf(diag.ObjInvalid, "Extra key '%s' must be a mapping", name)
		}
		sr := raw(spec)
		desc, err := sr.str("description")
		if err != nil {
			return nil, err
		}
		typ, err := sr.str("type")
		if err != nil {
			return nil, err
		}
		kt := ExtraKeyType(typ)
		switch kt {
		case "":
			kt = ExtraString
		case ExtraString, ExtraBoolean, ExtraQuantity:
		default:
			return nil, errorf(diag.ObjInvalid, "Extra key '%s' has unknown type '%s'", name, typ)
		}
		p.ExtraKeys = append(p.ExtraKeys, ExtraKey{Name: name, Description: desc, Type: kt})
	}
	sort.Slice(p.ExtraKeys, func(i, j int) bool { return p.ExtraKeys[i].Name < p.ExtraKeys[j].Name })
	return p, nil
}

func buildObject(r raw, _ *Config) (Payload, error) {
	if !r.has("structure") {
		return nil, errorf(diag.ObjMissingParameter, "structure is required for object metrics")
	}
	st, err := r.mapping("structure")
	if err != nil {
		return nil, err
	}
	node, err := parseObjectNode(st, "structure", true)
	if err != nil {
		return nil, err
	}
	return &ObjectPayload{Structure: node}, nil
}

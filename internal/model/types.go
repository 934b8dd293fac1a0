package model

// Type is the metric type tag.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeBoolean
	TypeLabeledBoolean
	TypeCounter
	TypeLabeledCounter
	TypeDualLabeledCounter
	TypeString
	TypeLabeledString
	TypeStringList
	TypeText
	TypeURL
	TypeUUID
	TypeTimespan
	TypeTimingDistribution
	TypeLabeledTimingDistribution
	TypeMemoryDistribution
	TypeLabeledMemoryDistribution
	TypeCustomDistribution
	TypeLabeledCustomDistribution
	TypeDatetime
	TypeEvent
	TypeQuantity
	TypeLabeledQuantity
	TypeRate
	TypeObject
	TypeUseCounter
	// только после линковки rate-метрик
	TypeNumerator
	TypeDenominator
)

var typeNames = [...]string{
	TypeUnknown:                   "unknown",
	TypeBoolean:                   "boolean",
	TypeLabeledBoolean:            "labeled_boolean",
	TypeCounter:                   "counter",
	TypeLabeledCounter:            "labeled_counter",
	TypeDualLabeledCounter:        "dual_labeled_counter",
	TypeString:                    "string",
	TypeLabeledString:             "labeled_string",
	TypeStringList:                "string_list",
	TypeText:                      "text",
	TypeURL:                       "url",
	TypeUUID:                      "uuid",
	TypeTimespan:                  "timespan",
	TypeTimingDistribution:        "timing_distribution",
	TypeLabeledTimingDistribution: "labeled_timing_distribution",
	TypeMemoryDistribution:        "memory_distribution",
	TypeLabeledMemoryDistribution: "labeled_memory_distribution",
	TypeCustomDistribution:        "custom_distribution",
	TypeLabeledCustomDistribution: "labeled_custom_distribution",
	TypeDatetime:                  "datetime",
	TypeEvent:                     "event",
	TypeQuantity:                  "quantity",
	TypeLabeledQuantity:           "labeled_quantity",
	TypeRate:                      "rate",
	TypeObject:                    "object",
	TypeUseCounter:                "use_counter",
	TypeNumerator:                 "numerator",
	TypeDenominator:               "denominator",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType maps an authored type name to its tag. Internal types
// (numerator, denominator) cannot be authored.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		tt := Type(t) // #nosec G115 -- table is tiny
		if name == s && tt != TypeUnknown && tt != TypeNumerator && tt != TypeDenominator {
			return tt, true
		}
	}
	return TypeUnknown, false
}

// Lifetime defines when a metric value is reset.
type Lifetime uint8

const (
	LifetimePing Lifetime = iota
	LifetimeUser
	LifetimeApplication
)

func (l Lifetime) String() string {
	switch l {
	case LifetimeUser:
		return "user"
	case LifetimeApplication:
		return "application"
	}
	return "ping"
}

func parseLifetime(s string) (Lifetime, bool) {
	switch s {
	case "", "ping":
		return LifetimePing, true
	case "user":
		return LifetimeUser, true
	case "application":
		return LifetimeApplication, true
	}
	return LifetimePing, false
}

// TimeUnit of timespans, datetimes and timing distributions.
type TimeUnit string

const (
	Nanosecond  TimeUnit = "nanosecond"
	Microsecond TimeUnit = "microsecond"
	Millisecond TimeUnit = "millisecond"
	Second      TimeUnit = "second"
	Minute      TimeUnit = "minute"
	Hour        TimeUnit = "hour"
	Day         TimeUnit = "day"
)

var timeUnits = map[TimeUnit]struct{}{
	Nanosecond: {}, Microsecond: {}, Millisecond: {}, Second: {}, Minute: {}, Hour: {}, Day: {},
}

// MemoryUnit of memory distributions.
type MemoryUnit string

const (
	Byte     MemoryUnit = "byte"
	Kilobyte MemoryUnit = "kilobyte"
	Megabyte MemoryUnit = "megabyte"
	Gigabyte MemoryUnit = "gigabyte"
)

var memoryUnits = map[MemoryUnit]struct{}{
	Byte: {}, Kilobyte: {}, Megabyte: {}, Gigabyte: {},
}

// HistogramType of custom distributions.
type HistogramType string

const (
	HistogramLinear      HistogramType = "linear"
	HistogramExponential HistogramType = "exponential"
)

// ExtraKeyType is the value type of an event extra key.
type ExtraKeyType string

const (
	ExtraString   ExtraKeyType = "string"
	ExtraBoolean  ExtraKeyType = "boolean"
	ExtraQuantity ExtraKeyType = "quantity"
)

package model

import (
	"strconv"
	"strings"

	"meterc/internal/diag"
)

// Bug is a bug reference: a URL, or (deprecated) a bare number.
type Bug struct {
	Text    string
	Numeric bool
}

// Provenance records where an object was defined.
type Provenance struct {
	Path string
	Line int
	Col  int
}

// LabelDimension is a label set of a labeled metric. Empty Static means the
// labels are dynamic.
type LabelDimension struct {
	Description string
	Static      []string // sorted, unique
}

func (d LabelDimension) IsDynamic() bool { return len(d.Static) == 0 }

// DualLabels are the two independent dimensions of a dual-labeled counter.
type DualLabels struct {
	Key      LabelDimension
	Category LabelDimension
}

// Metric is a single metric definition. Variant-specific fields live in Payload.
type Metric struct {
	Type               Type
	Category           string
	Name               string
	Description        string
	Bugs               []Bug
	DataReviews        []string
	NotificationEmails []string
	Lifetime           Lifetime
	Expires            Expiry
	Disabled           bool
	SendInPings        []string
	Version            int
	Tags               []string // sorted, unique
	NoLint             []string // собственные подавления объекта
	FileNoLint         []string // подавления уровня файла
	DataSensitivity    []string
	GeckoDatapoint     string
	TelemetryMirror    string

	Labels     *LabelDimension // labeled_* types
	DualLabels *DualLabels     // dual_labeled_counter

	Payload   Payload
	DefinedIn Provenance
}

// Identifier is the fully-qualified name; internal metrics have no category.
func (m *Metric) Identifier() string {
	if m.Category == "" {
		return m.Name
	}
	return m.Category + "." + m.Name
}

// Suppressed reports whether check is listed in the object or file no_lint.
func (m *Metric) Suppressed(check string) bool {
	return contains(m.NoLint, check) || contains(m.FileNoLint, check)
}

// IsLabeled reports whether the type carries a label dimension.
func (t Type) IsLabeled() bool {
	spec, ok := typeSpecs[t]
	return ok && spec.labeled
}

type payloadBuilder func(r raw, cfg *Config) (Payload, error)

// typeSpec — строка таблицы диспетчеризации по типу метрики.
type typeSpec struct {
	labeled bool
	dual    bool
	mirror  bool // gecko_datapoint разрешён
	build   payloadBuilder
}

var typeSpecs = map[Type]typeSpec{
	TypeBoolean:                   {mirror: true},
	TypeLabeledBoolean:            {labeled: true},
	TypeCounter:                   {mirror: true},
	TypeLabeledCounter:            {labeled: true, mirror: true},
	TypeDualLabeledCounter:        {dual: true},
	TypeString:                    {mirror: true},
	TypeLabeledString:             {labeled: true},
	TypeStringList:                {},
	TypeText:                      {},
	TypeURL:                       {},
	TypeUUID:                      {mirror: true},
	TypeTimespan:                  {mirror: true, build: buildTime(Millisecond)},
	TypeTimingDistribution:        {mirror: true, build: buildTime(Nanosecond)},
	TypeLabeledTimingDistribution: {labeled: true, build: buildTime(Nanosecond)},
	TypeMemoryDistribution:        {mirror: true, build: buildMemory},
	TypeLabeledMemoryDistribution: {labeled: true, build: buildMemory},
	TypeCustomDistribution:        {mirror: true, build: buildCustomDistribution},
	TypeLabeledCustomDistribution: {labeled: true, build: buildCustomDistribution},
	TypeDatetime:                  {build: buildTime(Millisecond)},
	TypeEvent:                     {build: buildEvent},
	TypeQuantity:                  {build: buildQuantity},
	TypeLabeledQuantity:           {labeled: true, build: buildQuantity},
	TypeRate:                      {build: buildRate},
	TypeObject:                    {build: buildObject},
	TypeUseCounter:                {build: buildUseCounter},
}

// NewMetric builds and checks one metric. Recoverable failures are *Error,
// conditions that must stop the run are *diag.FatalError.
func NewMetric(category, name string, fields map[string]any, cfg *Config) (*Metric, error) {
	r := raw(fields)
	m := &Metric{Category: category, Name: name}

	if category == "" && !cfg.allowReserved() {
		return nil, errorf(diag.ObjReservedCategory, "The empty category is reserved for internal metrics.")
	}
	if IsReservedName(category) && !cfg.allowReserved() {
		return nil, errorf(diag.ObjReservedCategory, "Category '%s' is reserved for internal use.", category)
	}

	typeName, err := r.str("type")
	if err != nil {
		return nil, err
	}
	t, ok := ParseType(typeName)
	if !ok {
		return nil, errorf(diag.ObjUnknownType, "Unknown metric type '%s'", typeName)
	}
	m.Type = t
	spec := typeSpecs[t]

	if m.Description, err = r.str("description"); err != nil {
		return nil, err
	}
	if m.Bugs, err = parseBugs(r); err != nil {
		return nil, err
	}
	if m.DataReviews, err = r.strings("data_reviews"); err != nil {
		return nil, err
	}
	if m.NotificationEmails, err = r.strings("notification_emails"); err != nil {
		return nil, err
	}
	lt, err := r.str("lifetime")
	if err != nil {
		return nil, err
	}
	if m.Lifetime, ok = parseLifetime(lt); !ok {
		return nil, errorf(diag.ObjInvalid, "Unknown lifetime '%s'", lt)
	}
	if m.Disabled, err = r.boolean("disabled", false); err != nil {
		return nil, err
	}
	if m.SendInPings, err = r.strings("send_in_pings"); err != nil {
		return nil, err
	}
	if len(m.SendInPings) == 0 {
		m.SendInPings = []string{"default"}
	}
	if m.Version, err = r.integer("version", 0); err != nil {
		return nil, err
	}
	if m.NoLint, err = r.strings("no_lint"); err != nil {
		return nil, err
	}
	if m.DataSensitivity, err = r.strings("data_sensitivity"); err != nil {
		return nil, err
	}
	m.DataSensitivity = sortedSet(m.DataSensitivity)
	if m.TelemetryMirror, err = r.str("telemetry_mirror"); err != nil {
		return nil, err
	}
	meta, err := r.mapping("metadata")
	if err != nil {
		return nil, err
	}
	tags, err := meta.strings("tags")
	if err != nil {
		return nil, err
	}
	m.Tags = sortedSet(tags)

	m.Expires, err = ParseExpiry(r["expires"], cfg)
	if err != nil {
		return nil, err
	}

	// кросс-полевые проверки
	if t == TypeEvent && m.Lifetime != LifetimePing {
		return nil, errorf(diag.ObjLifetimeMismatch, "Event metrics must have ping lifetime")
	}
	if m.GeckoDatapoint, err = r.str("gecko_datapoint"); err != nil {
		return nil, err
	}
	if m.GeckoDatapoint != "" && !spec.mirror {
		return nil, errorf(diag.ObjMirrorNotAllowed,
			"gecko_datapoint is only allowed for %s", strings.Join(mirrorTypes(), ", "))
	}

	if err := m.buildLabels(r, spec); err != nil {
		return nil, err
	}
	if spec.build != nil {
		if m.Payload, err = spec.build(r, cfg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metric) buildLabels(r raw, spec typeSpec) error {
	if r.has("labels") && !spec.labeled {
		return errorf(diag.ObjInvalidLabels, "labels are only valid on labeled metric types, not '%s'", m.Type)
	}
	if r.has("dual_labels") && !spec.dual {
		return errorf(diag.ObjInvalidLabels, "dual_labels are only valid on dual_labeled_counter metrics")
	}
	switch {
	case spec.labeled:
		labels, err := r.strings("labels")
		if err != nil {
			return err
		}
		m.Labels = &LabelDimension{Static: sortedSet(labels)}
	case spec.dual:
		dl, err := r.mapping("dual_labels")
		if err != nil {
			return err
		}
		if dl == nil {
			return errorf(diag.ObjMissingParameter, "dual_labels with 'key' and 'category' are required for dual_labeled_counter")
		}
		key, err := labelDimension(dl, "key")
		if err != nil {
			return err
		}
		cat, err := labelDimension(dl, "category")
		if err != nil {
			return err
		}
		m.DualLabels = &DualLabels{Key: key, Category: cat}
	}
	return nil
}

func labelDimension(r raw, key string) (LabelDimension, error) {
	sub, err := r.mapping(key)
	if err != nil {
		return LabelDimension{}, err
	}
	if sub == nil {
		return LabelDimension{}, errorf(diag.ObjMissingParameter, "dual_labels.%s is required", key)
	}
	desc, err := sub.str("description")
	if err != nil {
		return LabelDimension{}, err
	}
	labels, err := sub.strings("labels")
	if err != nil {
		return LabelDimension{}, err
	}
	return LabelDimension{Description: desc, Static: sortedSet(labels)}, nil
}

func parseBugs(r raw) ([]Bug, error) {
	v, ok := r["bugs"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errorf(diag.ObjInvalid, "'bugs' must be a list")
	}
	out := make([]Bug, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, Bug{Text: s})
			continue
		}
		n, err := toInt(e)
		if err != nil {
			return nil, errorf(diag.ObjInvalid, "'bugs' entries must be URLs or numbers")
		}
		out = append(out, Bug{Text: strconv.Itoa(n), Numeric: true})
	}
	return out, nil
}

func mirrorTypes() []string {
	var out []string
	for t := TypeBoolean; t <= TypeUseCounter; t++ {
		if typeSpecs[t].mirror {
			out = append(out, t.String())
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

package model

// Tag is a reusable label attachable to metrics and pings.
type Tag struct {
	Name        string
	Description string
	NoLint      []string
	DefinedIn   Provenance
}

// NewTag builds one tag definition.
func NewTag(name string, fields map[string]any, _ *Config) (*Tag, error) {
	r := raw(fields)
	t := &Tag{Name: name}
	var err error
	if t.Description, err = r.str("description"); err != nil {
		return nil, err
	}
	if t.NoLint, err = r.strings("no_lint"); err != nil {
		return nil, err
	}
	return t, nil
}

package docutil

import (
	"dario.cat/mergo"
)

// Spec lists dotted field paths (author, meta.owner, comments.by) holding references
type Spec []string

// Options shape reads and writes of a document
type Options struct {
	// Deserialize names the fields to resolve into references before a write
	Deserialize Spec
	// Fields restricts the materialized document to these top level fields
	Fields []string
	// IDField is the key receiving the document id
	IDField string
	// OmitID leaves the document id out
	OmitID bool
	// RawRefs keeps reference values as they are instead of rendering their path
	RawRefs bool
}

var DefaultOptions = Options{
	IDField: "id",
}

func (o Options) withDefaults() (Options, error) {
	if err := mergo.Merge(&o, DefaultOptions); err != nil {
		return o, err
	}
	return o, nil
}

func (o Options) selected(field string) bool {
	if len(o.Fields) == 0 {
		return true
	}
	for _, f := range o.Fields {
		if f == field {
			return true
		}
	}
	return false
}

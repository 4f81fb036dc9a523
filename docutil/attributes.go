package docutil

import (
	"github.com/fatih/structs"
	"github.com/pkg/errors"
)

var ErrUnsupportedAttributes = errors.New("attributes must be a map or a struct")

// Attributes turns v into document attributes. Maps are returned as they are,
// structs are converted field by field honouring `structs` tags; tag time.Time
// and other opaque structs with omitnested to keep them as values.
func Attributes(v interface{}) (map[string]interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, errors.Wrap(ErrUnsupportedAttributes, "got nil")
	case map[string]interface{}:
		return val, nil
	case Document:
		return val, nil
	}
	if !structs.IsStruct(v) {
		return nil, errors.Wrapf(ErrUnsupportedAttributes, "got %T", v)
	}
	return structs.Map(v), nil
}

package docutil

import (
	"firedoc/datastore"
	"github.com/pkg/errors"
	"strings"
)

var ErrInvalidReference = errors.New("invalid reference field")

// Deserialize resolves, in place, the reference fields of attributes named by spec.
// A field holds a document path or a list of them, each of them is replaced by
// the reference db resolves it to. Fields absent from attributes are skipped.
func Deserialize(attributes map[string]interface{}, spec Spec, db datastore.Resolver) error {
	for _, field := range spec {
		if field == "" {
			continue
		}
		if err := resolveField(attributes, strings.Split(field, "."), field, db); err != nil {
			return err
		}
	}
	return nil
}

func resolveField(attributes map[string]interface{}, keys []string, field string, db datastore.Resolver) error {
	value, ok := attributes[keys[0]]
	if !ok || value == nil {
		return nil
	}
	if len(keys) == 1 {
		resolved, err := resolveValue(value, field, db)
		if err != nil {
			return err
		}
		attributes[keys[0]] = resolved
		return nil
	}

	switch nested := value.(type) {
	case map[string]interface{}:
		return resolveField(nested, keys[1:], field, db)
	case []interface{}:
		// the remaining path applies to every element
		for _, elem := range nested {
			m, ok := elem.(map[string]interface{})
			if !ok {
				return errors.Wrapf(ErrInvalidReference, "%s: %T is not a map", field, elem)
			}
			if err := resolveField(m, keys[1:], field, db); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrInvalidReference, "%s: %T is not a map", field, value)
	}
}

func resolveValue(value interface{}, field string, db datastore.Resolver) (interface{}, error) {
	switch val := value.(type) {
	case datastore.Reference:
		return val, nil
	case string:
		ref, err := db.Doc(val)
		if err != nil {
			return nil, err
		}
		return ref, nil
	case []string:
		refs := make([]interface{}, len(val))
		for i, path := range val {
			ref, err := db.Doc(path)
			if err != nil {
				return nil, err
			}
			refs[i] = ref
		}
		return refs, nil
	case []interface{}:
		refs := make([]interface{}, len(val))
		for i, elem := range val {
			if _, ok := elem.([]interface{}); ok {
				return nil, errors.Wrapf(ErrInvalidReference, "%s: nested lists are not references", field)
			}
			ref, err := resolveValue(elem, field, db)
			if err != nil {
				return nil, err
			}
			refs[i] = ref
		}
		// resolved in place so the caller's slice also holds the references
		copy(val, refs)
		return val, nil
	default:
		return nil, errors.Wrapf(ErrInvalidReference, "%s: %T is not a document path", field, value)
	}
}

// Package field provides dynamic access to request and response objects.
//
// The bundling engine is schema-agnostic: requests and responses are opaque
// values supplied by the caller. The engine only ever needs to read a named
// (possibly nested, dot-separated) field, write a named field, and clone a
// response envelope. This package implements those three capabilities over
// structs, struct pointers and map[string]interface{} values.
package field

import (
	"fmt"
	"reflect"
	"strings"
)

// MissingFieldError reports that a segment of a field path does not exist
// on the object being traversed.
type MissingFieldError struct {
	Path    string // the full requested path, e.g. "parent.topic"
	Segment string // the segment that failed to resolve
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q: no such field %q", e.Path, e.Segment)
}

// Resolve reads the value at path from obj. Path segments are separated by
// dots; each segment names an exported struct field or a map key. Pointers
// are followed at every step. A nil value part-way through the path is
// resolved to nil only at the final segment; traversing through nil fails.
func Resolve(obj interface{}, path string) (interface{}, error) {
	cur := obj
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := lookup(cur, seg)
		if !ok {
			return nil, &MissingFieldError{Path: path, Segment: seg}
		}
		if v == nil && i < len(segments)-1 {
			return nil, &MissingFieldError{Path: path, Segment: segments[i+1]}
		}
		cur = v
	}
	return cur, nil
}

// lookup reads a single named field or map key from obj.
func lookup(obj interface{}, name string) (interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		f := v.FieldByName(name)
		if !f.IsValid() {
			return nil, false
		}
		return valueInterface(f), true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		f := v.MapIndex(reflect.ValueOf(name))
		if !f.IsValid() {
			return nil, false
		}
		return valueInterface(f), true
	default:
		return nil, false
	}
}

func valueInterface(v reflect.Value) interface{} {
	if !v.CanInterface() {
		return nil
	}
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface ||
		v.Kind() == reflect.Map || v.Kind() == reflect.Slice) && v.IsNil() {
		return nil
	}
	return v.Interface()
}

// Set writes value to the single named field of obj. obj must be a pointer
// to a struct with an exported, assignable field of that name, or a
// map[string]interface{}.
func Set(obj interface{}, name string, value interface{}) error {
	if obj == nil {
		return &MissingFieldError{Path: name, Segment: name}
	}
	if m, ok := obj.(map[string]interface{}); ok {
		m[name] = value
		return nil
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("field %q: cannot set on non-pointer %T", name, obj)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("field %q: cannot set on %T", name, obj)
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		return &MissingFieldError{Path: name, Segment: name}
	}
	if !f.CanSet() {
		return fmt.Errorf("field %q: not assignable on %T", name, obj)
	}
	val := reflect.ValueOf(value)
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	if !val.Type().AssignableTo(f.Type()) {
		return fmt.Errorf("field %q: cannot assign %T", name, value)
	}
	f.Set(val)
	return nil
}

// ShallowCopy clones obj one level deep. For a pointer to struct it returns
// a pointer to a copy of the struct value; for a map[string]interface{} it
// returns a new map with the same entries. Field values themselves are
// shared between the original and the copy.
func ShallowCopy(obj interface{}) interface{} {
	if obj == nil {
		return nil
	}
	if m, ok := obj.(map[string]interface{}); ok {
		cp := make(map[string]interface{}, len(m))
		for k, v := range m {
			cp[k] = v
		}
		return cp
	}

	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct {
		cp := reflect.New(v.Elem().Type())
		cp.Elem().Set(v.Elem())
		return cp.Interface()
	}
	// Plain values are copied by assignment already.
	return obj
}

// Stringify converts a discriminator value to its canonical string form.
func Stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ToSlice converts v into a []interface{} if it is any kind of slice or
// array. Returns false for non-slice values.
func ToSlice(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

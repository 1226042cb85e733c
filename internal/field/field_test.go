package field

import (
	"errors"
	"testing"
)

type inner struct {
	Name  string
	Count int
}

type outer struct {
	Topic  string
	Child  *inner
	Labels map[string]interface{}
}

func TestResolve_TopLevel(t *testing.T) {
	obj := &outer{Topic: "events"}

	v, err := Resolve(obj, "Topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "events" {
		t.Errorf("Resolve = %v, want events", v)
	}
}

func TestResolve_NestedPath(t *testing.T) {
	obj := &outer{Child: &inner{Name: "a", Count: 3}}

	v, err := Resolve(obj, "Child.Count")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != 3 {
		t.Errorf("Resolve = %v, want 3", v)
	}
}

func TestResolve_Map(t *testing.T) {
	obj := map[string]interface{}{
		"parent": map[string]interface{}{"topic": "t1"},
	}

	v, err := Resolve(obj, "parent.topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "t1" {
		t.Errorf("Resolve = %v, want t1", v)
	}
}

func TestResolve_MissingField(t *testing.T) {
	obj := &outer{Topic: "events"}

	_, err := Resolve(obj, "Nope")
	if err == nil {
		t.Fatal("Resolve: expected error for missing field")
	}
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingFieldError", err)
	}
	if missing.Segment != "Nope" {
		t.Errorf("Segment = %q, want Nope", missing.Segment)
	}
}

func TestResolve_MissingNestedSegment(t *testing.T) {
	obj := &outer{Child: &inner{}}

	_, err := Resolve(obj, "Child.Missing")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
}

func TestResolve_NilMidPath(t *testing.T) {
	obj := &outer{} // Child is nil

	if _, err := Resolve(obj, "Child.Name"); err == nil {
		t.Fatal("Resolve: expected error traversing through nil")
	}
}

func TestResolve_NilLeaf(t *testing.T) {
	obj := &outer{}

	v, err := Resolve(obj, "Child")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != nil {
		t.Errorf("Resolve = %v, want nil", v)
	}
}

func TestSet_StructPointer(t *testing.T) {
	obj := &outer{}

	if err := Set(obj, "Topic", "updated"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if obj.Topic != "updated" {
		t.Errorf("Topic = %q, want updated", obj.Topic)
	}
}

func TestSet_Map(t *testing.T) {
	obj := map[string]interface{}{}

	if err := Set(obj, "topic", "t"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if obj["topic"] != "t" {
		t.Errorf("topic = %v, want t", obj["topic"])
	}
}

func TestSet_MissingField(t *testing.T) {
	obj := &outer{}

	err := Set(obj, "Nope", 1)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
}

func TestSet_NonPointer(t *testing.T) {
	if err := Set(outer{}, "Topic", "x"); err == nil {
		t.Fatal("Set: expected error on non-pointer struct")
	}
}

func TestShallowCopy_Struct(t *testing.T) {
	child := &inner{Name: "shared"}
	obj := &outer{Topic: "t", Child: child}

	cp := ShallowCopy(obj).(*outer)
	if cp == obj {
		t.Fatal("ShallowCopy returned the same pointer")
	}
	if cp.Topic != "t" {
		t.Errorf("Topic = %q, want t", cp.Topic)
	}
	if cp.Child != child {
		t.Error("nested pointer should be shared, not deep-copied")
	}

	cp.Topic = "changed"
	if obj.Topic != "t" {
		t.Error("mutating the copy changed the original")
	}
}

func TestShallowCopy_Map(t *testing.T) {
	obj := map[string]interface{}{"a": 1}

	cp := ShallowCopy(obj).(map[string]interface{})
	cp["a"] = 2
	if obj["a"] != 1 {
		t.Error("mutating the copy changed the original")
	}
}

func TestToSlice(t *testing.T) {
	if s, ok := ToSlice([]interface{}{1, 2}); !ok || len(s) != 2 {
		t.Errorf("ToSlice([]interface{}) = %v, %v", s, ok)
	}
	if s, ok := ToSlice([]string{"a", "b", "c"}); !ok || len(s) != 3 {
		t.Errorf("ToSlice([]string) = %v, %v", s, ok)
	}
	if _, ok := ToSlice("not a slice"); ok {
		t.Error("ToSlice(string) should report false")
	}
	if _, ok := ToSlice(nil); ok {
		t.Error("ToSlice(nil) should report false")
	}
}

func TestStringify(t *testing.T) {
	if got := Stringify("s"); got != "s" {
		t.Errorf("Stringify(string) = %q", got)
	}
	if got := Stringify(42); got != "42" {
		t.Errorf("Stringify(int) = %q", got)
	}
}

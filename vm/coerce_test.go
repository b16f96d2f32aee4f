package vm

import (
	"math"
	"testing"
)

func TestPrimitiveCoercion(t *testing.T) {
	ct := CoreClasses()
	tests := []struct {
		name string
		cls  *Class
		in   Value
		want Value
	}{
		{"int from string", ct.Int, "41", int32(41)},
		{"int from float", ct.Int, 41.0, int32(41)},
		{"int from null", ct.Int, nil, int32(0)},
		{"int from undefined", ct.Int, Undefined, int32(0)},
		{"uint from int", ct.UInt, 7, uint32(7)},
		{"number from int", ct.Number, 3, float64(3)},
		{"number from null", ct.Number, nil, float64(0)},
		{"boolean from bool", ct.Boolean, true, true},
		{"boolean from null", ct.Boolean, nil, false},
		{"string from int", ct.String, 12, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cls.Coerce(tt.in)
			if err != nil {
				t.Fatalf("Coerce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Coerce(%v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestNumberCoercionUndefinedIsNaN(t *testing.T) {
	v, err := CoreClasses().Number.Coerce(Undefined)
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := v.(float64); !ok || !math.IsNaN(f) {
		t.Errorf("Number(undefined) = %v, want NaN", v)
	}
}

func TestCoercionFailure(t *testing.T) {
	ct := CoreClasses()
	if _, err := ct.Int.Coerce(struct{ X int }{1}); !ErrTypeCoercionFailed.Is(err) {
		t.Errorf("struct to int error = %v", err)
	}
}

func TestObjectCoercionAcceptsEverything(t *testing.T) {
	obj := CoreClasses().Object
	for _, v := range []Value{1, "s", true, nil, Undefined} {
		got, err := obj.Coerce(v)
		if err != nil {
			t.Fatalf("Object coercion of %v: %v", v, err)
		}
		if got != v {
			t.Errorf("Object coercion changed %v to %v", v, got)
		}
	}
}

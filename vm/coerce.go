package vm

import (
	"math"

	"github.com/spf13/cast"

	"github.com/oxhq/avmcore/names"
)

// Coerce converts v to this class's type. Null and undefined coerce to
// themselves for object and interface classes; the numeric, boolean and
// string primitives convert by value. A value of an unrelated class fails
// with a type coercion error.
func (c *Class) Coerce(v Value) (Value, error) {
	switch c.Tag() {
	case TagInt:
		if IsNullOrUndefined(v) {
			return int32(0), nil
		}
		n, err := cast.ToInt32E(v)
		if err != nil {
			return Undefined, ErrTypeCoercionFailed.New(c.Name())
		}
		return n, nil
	case TagUint:
		if IsNullOrUndefined(v) {
			return uint32(0), nil
		}
		n, err := cast.ToUint32E(v)
		if err != nil {
			return Undefined, ErrTypeCoercionFailed.New(c.Name())
		}
		return n, nil
	case TagNumber:
		if v == nil {
			return float64(0), nil
		}
		if IsUndefined(v) {
			return math.NaN(), nil
		}
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return Undefined, ErrTypeCoercionFailed.New(c.Name())
		}
		return n, nil
	case TagBoolean:
		if IsNullOrUndefined(v) {
			return false, nil
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return Undefined, ErrTypeCoercionFailed.New(c.Name())
		}
		return b, nil
	case TagString:
		if IsNullOrUndefined(v) {
			return v, nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return Undefined, ErrTypeCoercionFailed.New(c.Name())
		}
		return s, nil
	default:
		if IsNullOrUndefined(v) {
			return v, nil
		}
		if c.isRootObject() {
			return v, nil
		}
		if vc := classOfValue(v); vc != nil && vc.AssignableTo(c) {
			return v, nil
		}
		return Undefined, ErrTypeCoercionFailed.New(c.Name())
	}
}

// classOfValue maps a runtime value to its class. Unknown host values have
// no class and only coerce to the root object type.
func classOfValue(v Value) *Class {
	ct := CoreClasses()
	switch tv := v.(type) {
	case *DynamicObject:
		return tv.Class()
	case *Class:
		return ct.Class
	case *MethodClosure:
		return ct.Function
	case int32, int, int64, int16, int8:
		return ct.Int
	case uint32, uint, uint64, uint16, uint8:
		return ct.UInt
	case float64, float32:
		return ct.Number
	case bool:
		return ct.Boolean
	case string:
		return ct.String
	case names.Namespace:
		return ct.Namespace
	case names.QName:
		return ct.QName
	default:
		return nil
	}
}

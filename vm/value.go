package vm

// Value is a runtime value. The core does not mandate an object
// representation; Go primitives, *DynamicObject, *Class and *MethodClosure
// all flow through this type. A nil Value is the null value.
type Value = any

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined is the undefined value, distinct from null (nil).
var Undefined Value = undefinedValue{}

// IsUndefined reports whether v is the undefined value.
func IsUndefined(v Value) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// IsNullOrUndefined reports whether v is null or undefined.
func IsNullOrUndefined(v Value) bool {
	return v == nil || IsUndefined(v)
}

// Callable is implemented by values that can be invoked as functions:
// method closures and classes (class invocation is a coercion).
type Callable interface {
	TryCall(receiver Value, args []Value) (BindStatus, Value, error)
}

// MethodClosure binds a method trait to a receiver so the pair can travel as
// a value and be invoked later.
type MethodClosure struct {
	method   *MethodTrait
	receiver Value
}

// NewMethodClosure builds a closure of method over receiver.
func NewMethodClosure(method *MethodTrait, receiver Value) *MethodClosure {
	return &MethodClosure{method: method, receiver: receiver}
}

// Method returns the bound method trait.
func (c *MethodClosure) Method() *MethodTrait { return c.method }

// Receiver returns the bound receiver.
func (c *MethodClosure) Receiver() Value { return c.receiver }

// TryCall invokes the bound method. The receiver argument is ignored; the
// closure's own receiver wins.
func (c *MethodClosure) TryCall(_ Value, args []Value) (BindStatus, Value, error) {
	return c.method.TryInvoke(nil, c.receiver, args)
}

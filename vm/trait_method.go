package vm

import (
	"strconv"
	"sync"
)

// Param describes one formal parameter of a method.
type Param struct {
	Name       string
	Type       *Class // nil means any
	Optional   bool
	HasDefault bool
	Default    Value
}

// Signature describes the shape of a method: its return, parameters, rest
// flag and whether the method receives the caller's scope object.
type Signature struct {
	HasReturn     bool
	ReturnType    *Class // nil means any
	Params        []Param
	HasRest       bool
	ScopeReceiver bool
}

// requiredParams counts the parameters a caller must supply.
func (s Signature) requiredParams() int {
	n := 0
	for _, p := range s.Params {
		if !p.Optional && !p.HasDefault {
			n++
		}
	}
	return n
}

// arity renders the accepted argument range for error messages.
func (s Signature) arity() string {
	req := s.requiredParams()
	if s.HasRest {
		return "at least " + strconv.Itoa(req)
	}
	if req == len(s.Params) {
		return strconv.Itoa(req)
	}
	return strconv.Itoa(req) + " to " + strconv.Itoa(len(s.Params))
}

// Matches reports signature compatibility: same return presence and type,
// same rest flag, same parameter count, and per-parameter type, optional and
// has-default equality.
func (s Signature) Matches(o Signature) bool {
	if s.HasReturn != o.HasReturn || s.ReturnType != o.ReturnType {
		return false
	}
	if s.HasRest != o.HasRest || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		a, b := s.Params[i], o.Params[i]
		if a.Type != b.Type || a.Optional != b.Optional || a.HasDefault != b.HasDefault {
			return false
		}
	}
	return true
}

// MethodImpl is the underlying dispatch target of a method.
type MethodImpl func(receiver Value, args []Value) (Value, error)

// MethodTrait is a method declaration. Invocation goes through a dispatch
// stub built lazily on first call; the stub checks arity, fills defaults and
// coerces arguments to the declared parameter types.
type MethodTrait struct {
	baseTrait
	sig      Signature
	override bool
	impl     MethodImpl

	stubOnce sync.Once
	stub     MethodImpl
}

var _ Trait = (*MethodTrait)(nil)

// Kind returns TraitMethod.
func (t *MethodTrait) Kind() TraitKind { return TraitMethod }

// Signature returns the method's signature.
func (t *MethodTrait) Signature() Signature { return t.sig }

// IsOverride reports whether the method was declared with the override flag.
func (t *MethodTrait) IsOverride() bool { return t.override }

// TryGetValue returns a closure of the method over target.
func (t *MethodTrait) TryGetValue(target Value) (BindStatus, Value, error) {
	recv := target
	if t.static {
		recv = nil
	}
	return BindSuccess, NewMethodClosure(t, recv), nil
}

// TrySetValue always fails: methods are not assignable.
func (t *MethodTrait) TrySetValue(Value, Value) (BindStatus, error) {
	return BindFailedAssignMethod, nil
}

// TryInvoke dispatches the method. For instance methods a null or undefined
// receiver fails with the matching reference error; statics and standalone
// methods take no receiver.
func (t *MethodTrait) TryInvoke(_, receiver Value, args []Value) (BindStatus, Value, error) {
	if !t.static && t.declClass != nil {
		if receiver == nil {
			return BindSuccess, Undefined, ErrNullReference.New(t.name)
		}
		if IsUndefined(receiver) {
			return BindSuccess, Undefined, ErrUndefinedReference.New(t.name)
		}
	}
	t.stubOnce.Do(t.buildStub)
	v, err := t.stub(receiver, args)
	return BindSuccess, v, err
}

// TryConstruct always fails: methods cannot be constructed.
func (t *MethodTrait) TryConstruct(Value, []Value) (BindStatus, Value, error) {
	return BindFailedMethodConstruct, Undefined, nil
}

// buildStub compiles the dispatch stub: arity check, default filling and
// per-parameter coercion around the underlying target.
func (t *MethodTrait) buildStub() {
	sig := t.sig
	req := sig.requiredParams()
	max := len(sig.Params)
	impl := t.impl

	t.stub = func(receiver Value, args []Value) (Value, error) {
		if len(args) < req || (!sig.HasRest && len(args) > max) {
			return Undefined, ErrArgCountMismatch.New(t.name, sig.arity(), len(args))
		}
		var rest []Value
		if sig.HasRest && len(args) > max {
			rest = args[max:]
			args = args[:max]
		}
		call := make([]Value, 0, len(sig.Params)+len(rest))
		for i, p := range sig.Params {
			var v Value
			switch {
			case i < len(args):
				v = args[i]
			case p.HasDefault:
				v = p.Default
			default:
				v = Undefined
			}
			if p.Type != nil && i < len(args) {
				cv, err := p.Type.Coerce(v)
				if err != nil {
					return Undefined, err
				}
				v = cv
			}
			call = append(call, v)
		}
		call = append(call, rest...)
		if impl == nil {
			return Undefined, ErrNotAFunction.New(t.name)
		}
		return impl(receiver, call)
	}
}

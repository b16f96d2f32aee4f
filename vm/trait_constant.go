package vm

// ConstantTrait is an immutable named value.
type ConstantTrait struct {
	baseTrait
	val Value
}

var _ Trait = (*ConstantTrait)(nil)

// Kind returns TraitConstant.
func (t *ConstantTrait) Kind() TraitKind { return TraitConstant }

// Value returns the constant's value.
func (t *ConstantTrait) Value() Value { return t.val }

// TryGetValue returns the constant's value.
func (t *ConstantTrait) TryGetValue(Value) (BindStatus, Value, error) {
	if t.val == nil {
		return BindSoftSuccess, Undefined, nil
	}
	return BindSuccess, t.val, nil
}

// TrySetValue always fails: constants are read-only.
func (t *ConstantTrait) TrySetValue(Value, Value) (BindStatus, error) {
	return BindFailedReadOnly, nil
}

// TryInvoke calls the constant's value if it is callable.
func (t *ConstantTrait) TryInvoke(_, receiver Value, args []Value) (BindStatus, Value, error) {
	if c, ok := t.val.(Callable); ok {
		return c.TryCall(receiver, args)
	}
	return BindFailedNotFunction, Undefined, nil
}

// TryConstruct constructs through the constant's value when it is a class.
func (t *ConstantTrait) TryConstruct(_ Value, args []Value) (BindStatus, Value, error) {
	if cls, ok := t.val.(*Class); ok {
		return cls.TryConstruct(nil, args)
	}
	return BindFailedNotConstructor, Undefined, nil
}

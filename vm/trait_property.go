package vm

// PropertyTrait is an accessor pair. Either accessor may be absent; a
// property with no getter is write-only and one with no setter is read-only.
type PropertyTrait struct {
	baseTrait
	getter *MethodTrait
	setter *MethodTrait
}

var _ Trait = (*PropertyTrait)(nil)

// Kind returns TraitProperty.
func (t *PropertyTrait) Kind() TraitKind { return TraitProperty }

// Getter returns the getter method, or nil.
func (t *PropertyTrait) Getter() *MethodTrait { return t.getter }

// Setter returns the setter method, or nil.
func (t *PropertyTrait) Setter() *MethodTrait { return t.setter }

// CanMergeWith reports whether the accessor roles of the two properties do
// not conflict: no role may be supplied by both sides.
func (t *PropertyTrait) CanMergeWith(o *PropertyTrait) bool {
	if t.getter != nil && o.getter != nil {
		return false
	}
	if t.setter != nil && o.setter != nil {
		return false
	}
	return true
}

// mergedWith builds a new property taking each non-nil accessor from
// whichever side supplies it. Identity fields come from t.
func (t *PropertyTrait) mergedWith(o *PropertyTrait) *PropertyTrait {
	m := &PropertyTrait{baseTrait: t.baseTrait, getter: t.getter, setter: t.setter}
	if m.getter == nil {
		m.getter = o.getter
	}
	if m.setter == nil {
		m.setter = o.setter
	}
	return m
}

// TryGetValue invokes the getter. A property with no getter is write-only.
func (t *PropertyTrait) TryGetValue(target Value) (BindStatus, Value, error) {
	if t.getter == nil {
		return BindFailedWriteOnly, Undefined, nil
	}
	return t.getter.TryInvoke(target, target, nil)
}

// TrySetValue invokes the setter. A property with no setter is read-only.
func (t *PropertyTrait) TrySetValue(target Value, v Value) (BindStatus, error) {
	if t.setter == nil {
		return BindFailedReadOnly, nil
	}
	st, _, err := t.setter.TryInvoke(target, target, []Value{v})
	return st, err
}

// TryInvoke reads the property and calls the result if it is callable.
func (t *PropertyTrait) TryInvoke(target, receiver Value, args []Value) (BindStatus, Value, error) {
	st, v, err := t.TryGetValue(target)
	if err != nil || !st.IsSuccess() {
		return st, Undefined, err
	}
	if c, ok := v.(Callable); ok {
		return c.TryCall(receiver, args)
	}
	return BindFailedNotFunction, Undefined, nil
}

// TryConstruct reads the property and constructs through the result when it
// is a class.
func (t *PropertyTrait) TryConstruct(target Value, args []Value) (BindStatus, Value, error) {
	st, v, err := t.TryGetValue(target)
	if err != nil || !st.IsSuccess() {
		return st, Undefined, err
	}
	if cls, ok := v.(*Class); ok {
		return cls.TryConstruct(nil, args)
	}
	return BindFailedNotConstructor, Undefined, nil
}

// signatureCompatible reports whether two properties have recursively
// compatible accessor shapes: matching presence and matching method
// signatures for each accessor.
func (t *PropertyTrait) signatureCompatible(o *PropertyTrait) bool {
	if (t.getter == nil) != (o.getter == nil) || (t.setter == nil) != (o.setter == nil) {
		return false
	}
	if t.getter != nil && !t.getter.sig.Matches(o.getter.sig) {
		return false
	}
	if t.setter != nil && !t.setter.sig.Matches(o.setter.sig) {
		return false
	}
	return true
}

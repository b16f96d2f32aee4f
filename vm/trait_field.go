package vm

import "sync"

// FieldTrait is a typed storage slot. Static field values live on the trait
// itself; instance values live in the slot array of the target object at the
// index assigned when the declaring class sealed its table.
type FieldTrait struct {
	baseTrait
	fieldType *Class // nil means any
	readOnly  bool
	slot      int

	mu        sync.RWMutex
	staticVal Value
}

var _ Trait = (*FieldTrait)(nil)

// Kind returns TraitField.
func (t *FieldTrait) Kind() TraitKind { return TraitField }

// Type returns the declared field type, or nil for any.
func (t *FieldTrait) Type() *Class { return t.fieldType }

// IsReadOnly reports whether the field rejects writes.
func (t *FieldTrait) IsReadOnly() bool { return t.readOnly }

// Slot returns the field's slot index within its scope.
func (t *FieldTrait) Slot() int { return t.slot }

// TryGetValue reads the field from target, or from the trait itself for
// statics and globals. An instance read against a target without slots is
// not found.
func (t *FieldTrait) TryGetValue(target Value) (BindStatus, Value, error) {
	if t.static || t.declClass == nil {
		t.mu.RLock()
		v := t.staticVal
		t.mu.RUnlock()
		if v == nil {
			return BindSoftSuccess, Undefined, nil
		}
		return BindSuccess, v, nil
	}
	obj, ok := target.(Object)
	if !ok {
		return BindNotFound, Undefined, nil
	}
	v := obj.SlotValue(t.slot)
	if v == nil {
		return BindSoftSuccess, Undefined, nil
	}
	return BindSuccess, v, nil
}

// TrySetValue writes the field, coercing to the declared type. Read-only
// fields fail.
func (t *FieldTrait) TrySetValue(target Value, v Value) (BindStatus, error) {
	if t.readOnly {
		return BindFailedReadOnly, nil
	}
	if t.fieldType != nil {
		cv, err := t.fieldType.Coerce(v)
		if err != nil {
			return BindSuccess, err
		}
		v = cv
	}
	if t.static || t.declClass == nil {
		t.mu.Lock()
		t.staticVal = v
		t.mu.Unlock()
		return BindSuccess, nil
	}
	obj, ok := target.(Object)
	if !ok {
		return BindNotFound, nil
	}
	obj.SetSlotValue(t.slot, v)
	return BindSuccess, nil
}

// TryInvoke reads the field and calls the result if it is callable.
func (t *FieldTrait) TryInvoke(target, receiver Value, args []Value) (BindStatus, Value, error) {
	st, v, err := t.TryGetValue(target)
	if err != nil || !st.IsSuccess() {
		return st, Undefined, err
	}
	if c, ok := v.(Callable); ok {
		return c.TryCall(receiver, args)
	}
	return BindFailedNotFunction, Undefined, nil
}

// TryConstruct reads the field and constructs through the result when it is
// a class.
func (t *FieldTrait) TryConstruct(target Value, args []Value) (BindStatus, Value, error) {
	st, v, err := t.TryGetValue(target)
	if err != nil || !st.IsSuccess() {
		return st, Undefined, err
	}
	if cls, ok := v.(*Class); ok {
		return cls.TryConstruct(nil, args)
	}
	return BindFailedNotConstructor, Undefined, nil
}

package vm

import (
	"math"
	"strconv"
	"sync"

	"github.com/oxhq/avmcore/names"
)

// Object is the minimal contract the runtime needs from an instance: a
// class and addressable field slots. The core mandates no richer object
// representation.
type Object interface {
	Class() *Class
	SlotValue(i int) Value
	SetSlotValue(i int, v Value)
}

// DynamicObject is the core's dynamic-property container. It backs domain
// global objects, per-zone prototypes and class objects, and serves as the
// default instance representation for constructed classes.
type DynamicObject struct {
	class *Class

	mu    sync.RWMutex
	slots []Value
	props map[names.QName]Value
}

var _ Object = (*DynamicObject)(nil)

// NewDynamicObject creates an instance of class, closing the class if
// needed so the field slot count is known.
func NewDynamicObject(class *Class) (*DynamicObject, error) {
	if class == nil {
		return nil, ErrArgumentNull.New("class")
	}
	if err := class.EnsureClosed(); err != nil {
		return nil, err
	}
	return &DynamicObject{
		class: class,
		slots: make([]Value, class.impl.table.instanceFieldCount()),
	}, nil
}

// Class returns the object's class.
func (o *DynamicObject) Class() *Class { return o.class }

// SlotValue reads field slot i.
func (o *DynamicObject) SlotValue(i int) Value {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if i < 0 || i >= len(o.slots) {
		return nil
	}
	return o.slots[i]
}

// SetSlotValue writes field slot i.
func (o *DynamicObject) SetSlotValue(i int, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i >= 0 && i < len(o.slots) {
		o.slots[i] = v
	}
}

// dynamicValue reads a dynamic property under the object lock.
func (o *DynamicObject) dynamicValue(name names.QName) (Value, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.props[name]
	return v, ok
}

// TryGetProperty resolves name against the object: class traits first, then
// dynamic properties. On a dynamic class a miss reads as undefined
// (soft success); on a sealed class it is not found.
func (o *DynamicObject) TryGetProperty(name names.QName) (BindStatus, Value, error) {
	st, tr, err := o.class.TryGetTrait(name, ScopeInstance)
	if err != nil {
		return st, Undefined, err
	}
	if st == BindSuccess {
		return tr.TryGetValue(o)
	}
	if st != BindNotFound {
		return st, Undefined, nil
	}
	if v, ok := o.dynamicValue(name); ok {
		return BindSuccess, v, nil
	}
	if name.Namespace().IsAny() {
		if v, ok := o.dynamicValue(names.PublicName(name.Local())); ok {
			return BindSuccess, v, nil
		}
	}
	if o.class.IsDynamic() {
		return BindSoftSuccess, Undefined, nil
	}
	return BindNotFound, Undefined, nil
}

// TrySetProperty writes name on the object. A miss on a dynamic class
// creates a dynamic property, which is only legal in the public namespace.
func (o *DynamicObject) TrySetProperty(name names.QName, v Value) (BindStatus, error) {
	st, tr, err := o.class.TryGetTrait(name, ScopeInstance)
	if err != nil {
		return st, err
	}
	if st == BindSuccess {
		return tr.TrySetValue(o, v)
	}
	if st != BindNotFound {
		return st, nil
	}
	if _, ok := o.dynamicValue(name); ok {
		o.mu.Lock()
		o.props[name] = v
		o.mu.Unlock()
		return BindSuccess, nil
	}
	if !o.class.IsDynamic() {
		return BindNotFound, nil
	}
	if !name.Namespace().IsPublic() {
		return BindFailedCreateDynamicNonPublic, nil
	}
	o.mu.Lock()
	if o.props == nil {
		o.props = make(map[names.QName]Value)
	}
	o.props[name] = v
	o.mu.Unlock()
	return BindSuccess, nil
}

// TryInvokeProperty resolves name and calls the result.
func (o *DynamicObject) TryInvokeProperty(name names.QName, args []Value) (BindStatus, Value, error) {
	st, tr, err := o.class.TryGetTrait(name, ScopeInstance)
	if err != nil {
		return st, Undefined, err
	}
	if st == BindSuccess {
		return tr.TryInvoke(o, o, args)
	}
	if st != BindNotFound {
		return st, Undefined, nil
	}
	if v, ok := o.dynamicValue(name); ok {
		if c, ok := v.(Callable); ok {
			return c.TryCall(o, args)
		}
		return BindFailedNotFunction, Undefined, nil
	}
	return BindNotFound, Undefined, nil
}

// TryGetIndex reads a numeric-index property, honouring the class's index
// specials when configured.
func (o *DynamicObject) TryGetIndex(index float64) (BindStatus, Value, error) {
	if sp := o.class.Specials(); sp != nil && sp.GetIndex != nil {
		return sp.GetIndex(o, index)
	}
	return o.TryGetProperty(names.PublicName(formatIndex(index)))
}

// TrySetIndex writes a numeric-index property, honouring the class's index
// specials when configured.
func (o *DynamicObject) TrySetIndex(index float64, v Value) (BindStatus, error) {
	if sp := o.class.Specials(); sp != nil && sp.SetIndex != nil {
		return sp.SetIndex(o, index, v)
	}
	return o.TrySetProperty(names.PublicName(formatIndex(index)), v)
}

// TryGetDescendants is the descendants operator. Plain objects do not
// support it; the XML subsystem overrides it elsewhere.
func (o *DynamicObject) TryGetDescendants(names.QName) (BindStatus, Value, error) {
	return BindFailedDescendantOp, Undefined, nil
}

// DynamicNames returns the qualified names of the object's dynamic
// properties, in unspecified order.
func (o *DynamicObject) DynamicNames() []names.QName {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]names.QName, 0, len(o.props))
	for q := range o.props {
		out = append(out, q)
	}
	return out
}

func formatIndex(index float64) string {
	if index == math.Trunc(index) && !math.IsInf(index, 0) {
		return strconv.FormatInt(int64(index), 10)
	}
	return strconv.FormatFloat(index, 'g', -1, 64)
}

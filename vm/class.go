package vm

import (
	"github.com/oxhq/avmcore/names"
)

// ClassTag distinguishes primitives and selected built-ins from generic
// object classes. The set is closed.
type ClassTag uint8

const (
	// TagObject is a generic object class.
	TagObject ClassTag = iota
	// TagInt is the signed 32-bit integer class.
	TagInt
	// TagUint is the unsigned 32-bit integer class.
	TagUint
	// TagNumber is the 64-bit floating point class.
	TagNumber
	// TagBoolean is the boolean class.
	TagBoolean
	// TagString is the string class.
	TagString
	// TagNamespace is the namespace class.
	TagNamespace
	// TagQName is the qualified-name class.
	TagQName
	// TagArray is the array class.
	TagArray
	// TagVector is a vector class.
	TagVector
	// TagFunction is the function class.
	TagFunction
	// TagClass is the metaclass.
	TagClass
)

// FieldSpec describes a field declaration.
type FieldSpec struct {
	Name     names.QName
	Type     *Class // nil means any
	ReadOnly bool
	Static   bool
	Metadata Metadata
}

// MethodSpec describes a method declaration.
type MethodSpec struct {
	Name      names.QName
	Signature Signature
	Override  bool
	Static    bool
	Impl      MethodImpl
	Metadata  Metadata
}

// PropertySpec describes a property declaration. Either accessor may be
// absent; declaring the getter and setter in two separate calls merges them.
type PropertySpec struct {
	Name     names.QName
	Getter   *MethodSpec
	Setter   *MethodSpec
	Static   bool
	Metadata Metadata
}

// ConstantSpec describes a constant declaration.
type ConstantSpec struct {
	Name     names.QName
	Value    Value
	Static   bool
	Metadata Metadata
}

// ClassDef is the input to NewClass: the declared shape of a class. Declare
// runs during closure and adds the declared traits; PrototypeInit runs after
// a zone's prototype object is created and its constructor slot is set.
type ClassDef struct {
	Name       names.QName
	Tag        ClassTag
	Parent     *Class
	Interfaces []*Class

	IsInterface bool
	IsFinal     bool
	IsDynamic   bool

	// HideInheritedTraits lets declared traits hide inherited ones instead
	// of requiring the override discipline.
	HideInheritedTraits bool

	Declare       func(c *Class) error
	Constructor   *MethodSpec
	Specials      *ClassSpecials
	PrototypeInit func(z *Zone, proto *DynamicObject)
	Metadata      Metadata
}

// Class is the handle through which the runtime exposes a class record. It
// implements Trait, so a class can sit in a trait table like any other
// declaration. Most members close the class on first touch.
type Class struct {
	impl *ClassImpl
}

var _ Trait = (*Class)(nil)

// NewClass registers a class record for def in the given domain. The record
// stays unclosed until first use.
func NewClass(domain *ApplicationDomain, def ClassDef) (*Class, error) {
	if domain == nil {
		return nil, ErrArgumentNull.New("domain")
	}
	if !def.Name.HasLocal() || def.Name.Namespace().IsAny() {
		return nil, ErrArgumentOutOfRange.New("def.Name", def.Name)
	}
	c := &Class{}
	c.impl = newClassImpl(c, domain, def)
	logger.Debug().Stringer("class", def.Name).Msg("class registered")
	return c, nil
}

// Name returns the class's qualified name.
func (c *Class) Name() names.QName { return c.impl.name }

// Domain returns the declaring application domain.
func (c *Class) Domain() *ApplicationDomain { return c.impl.domain }

// Tag returns the class's tag.
func (c *Class) Tag() ClassTag { return c.impl.def.Tag }

// Parent returns the parent class, nil only for roots and interfaces.
func (c *Class) Parent() *Class { return c.impl.parent }

// DeclaredInterfaces returns the interfaces named in the declaration.
func (c *Class) DeclaredInterfaces() []*Class { return c.impl.declaredIfaces }

// Interfaces returns the transitive interface list.
func (c *Class) Interfaces() []*Class { return c.impl.ifaceList }

// IsInterface reports whether this class is an interface.
func (c *Class) IsInterface() bool { return c.impl.def.IsInterface }

// IsFinal reports whether the class can be extended.
func (c *Class) IsFinal() bool { return c.impl.def.IsFinal }

// IsDynamic reports whether instances accept dynamic properties.
func (c *Class) IsDynamic() bool { return c.impl.def.IsDynamic }

// IsClosed reports whether closure has completed.
func (c *Class) IsClosed() bool { return c.impl.state.Load() == classClosed }

// IsCorrupted reports whether an unrecoverable merge conflict poisoned the
// class.
func (c *Class) IsCorrupted() bool { return c.impl.state.Load() == classCorrupted }

// EnsureClosed runs the class's closure if it has not run yet.
func (c *Class) EnsureClosed() error { return c.impl.ensureClosed() }

// Traits returns the class's trait table after closing the class.
func (c *Class) Traits() (*TraitTable, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return nil, err
	}
	return c.impl.table, nil
}

// Constructor returns the declared constructor, or nil.
func (c *Class) Constructor() *MethodTrait { return c.impl.ctor }

// Specials returns the class's specials as merged at closure, or the
// declared ones before closure.
func (c *Class) Specials() *ClassSpecials { return c.impl.specials.Load() }

// TryGetTrait resolves an exact qualified name against the class's table,
// closing the class first. The error reports a closure failure only.
func (c *Class) TryGetTrait(name names.QName, scopes TraitScope) (BindStatus, Trait, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return BindNotFound, nil, err
	}
	st, tr := c.impl.table.TryGetTrait(name, scopes)
	return st, tr, nil
}

// TryGetTraitNS resolves a local name with a namespace set against the
// class's table, closing the class first.
func (c *Class) TryGetTraitNS(local string, set *names.NamespaceSet, scopes TraitScope) (BindStatus, Trait, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return BindNotFound, nil, err
	}
	st, tr := c.impl.table.TryGetTraitNS(local, set, scopes)
	return st, tr, nil
}

// GetTrait is the convenience resolution that must produce a trait: any
// non-success status is raised as its mapped error.
func (c *Class) GetTrait(name names.QName) (Trait, error) {
	st, tr, err := c.TryGetTrait(name, ScopeAll)
	if err != nil {
		return nil, err
	}
	if st != BindSuccess {
		return nil, BindError(st, name)
	}
	return tr, nil
}

// GetMethod resolves a public method by local name.
func (c *Class) GetMethod(local string) (*MethodTrait, error) {
	tr, err := c.GetTrait(names.PublicName(local))
	if err != nil {
		return nil, err
	}
	m, ok := tr.(*MethodTrait)
	if !ok {
		return nil, ErrPropertyNotFound.New(names.PublicName(local))
	}
	return m, nil
}

// GetProperty resolves a public property by local name.
func (c *Class) GetProperty(local string) (*PropertyTrait, error) {
	tr, err := c.GetTrait(names.PublicName(local))
	if err != nil {
		return nil, err
	}
	p, ok := tr.(*PropertyTrait)
	if !ok {
		return nil, ErrPropertyNotFound.New(names.PublicName(local))
	}
	return p, nil
}

// GetTraits returns the traits matching the filters, closing the class
// first.
func (c *Class) GetTraits(kinds TraitKind, scopes TraitScope) ([]Trait, error) {
	tbl, err := c.Traits()
	if err != nil {
		return nil, err
	}
	return tbl.GetTraits(kinds, scopes), nil
}

// FindTrait returns the first trait satisfying pred under the filters.
func (c *Class) FindTrait(kinds TraitKind, scopes TraitScope, pred func(Trait) bool) (Trait, error) {
	trs, err := c.GetTraits(kinds, scopes)
	if err != nil {
		return nil, err
	}
	for _, tr := range trs {
		if pred(tr) {
			return tr, nil
		}
	}
	return nil, nil
}

// CheckInterfaceImplementations verifies that every method and property
// declared by the class's transitive interfaces has a matching
// implementation discoverable on the class.
func (c *Class) CheckInterfaceImplementations() error {
	tbl, err := c.Traits()
	if err != nil {
		return err
	}
	for _, ifc := range c.Interfaces() {
		itbl, err := ifc.Traits()
		if err != nil {
			return err
		}
		for _, req := range itbl.GetTraits(TraitMethod|TraitProperty, ScopeInstanceDeclared) {
			st, impl := tbl.TryGetTrait(names.PublicName(req.Name().Local()), ScopeInstance)
			if st != BindSuccess || !interfaceSignatureCompatible(impl, req) {
				return ErrInterfaceNotImplemented.New(c.Name(), req.Name())
			}
		}
	}
	return nil
}

// AssignableTo reports whether a value of this class may be bound to a
// destination of class b. A nil destination is the any type.
func (c *Class) AssignableTo(b *Class) bool {
	if b == nil || c == b {
		return true
	}
	if tagAccepts(b.Tag(), c.Tag()) {
		return true
	}
	if b.IsInterface() {
		if _, ok := c.impl.ifaceSet[b]; ok {
			return true
		}
	}
	if c.IsInterface() && b.isRootObject() {
		return true
	}
	for p := c.Parent(); p != nil; p = p.Parent() {
		if p == b {
			return true
		}
	}
	return false
}

func (c *Class) isRootObject() bool {
	return c.Tag() == TagObject && c.impl.parent == nil && !c.IsInterface()
}

// tagAccepts reports whether the destination tag's underlying type accepts
// the source tag's.
func tagAccepts(dst, src ClassTag) bool {
	return dst == TagNumber && (src == TagInt || src == TagUint)
}

// Trait contract: a class is itself a class trait.

// Kind returns TraitClass.
func (c *Class) Kind() TraitKind { return TraitClass }

// DeclaringClass returns nil: classes in this core are globals.
func (c *Class) DeclaringClass() *Class { return nil }

// IsStatic returns false.
func (c *Class) IsStatic() bool { return false }

// Metadata returns the declaration metadata.
func (c *Class) Metadata() Metadata { return c.impl.def.Metadata }

// TryGetValue yields the class itself.
func (c *Class) TryGetValue(Value) (BindStatus, Value, error) {
	return BindSuccess, c, nil
}

// TrySetValue always fails: classes are not assignable.
func (c *Class) TrySetValue(Value, Value) (BindStatus, error) {
	return BindFailedAssignClass, nil
}

// TryInvoke applies the class as a callable: the special invoke handler
// when configured, otherwise the single-argument coercion.
func (c *Class) TryInvoke(_, receiver Value, args []Value) (BindStatus, Value, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return BindSuccess, Undefined, err
	}
	if sp := c.Specials(); sp != nil && sp.Invoke != nil {
		v, err := sp.Invoke(receiver, args)
		return BindSuccess, v, err
	}
	if len(args) != 1 {
		return BindSuccess, Undefined, ErrClassCoerceArgCount.New(c.Name(), len(args))
	}
	v, err := c.Coerce(args[0])
	return BindSuccess, v, err
}

// TryCall lets a class value be invoked like a function.
func (c *Class) TryCall(receiver Value, args []Value) (BindStatus, Value, error) {
	return c.TryInvoke(nil, receiver, args)
}

// TryConstruct instantiates the class: the special construct handler when
// configured, else the declared constructor, else a not-instantiable error.
func (c *Class) TryConstruct(_ Value, args []Value) (BindStatus, Value, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return BindSuccess, Undefined, err
	}
	if sp := c.Specials(); sp != nil && sp.Construct != nil {
		v, err := sp.Construct(args)
		return BindSuccess, v, err
	}
	if c.impl.ctor == nil {
		return BindSuccess, Undefined, ErrClassNotInstantiable.New(c.Name())
	}
	obj, err := NewDynamicObject(c)
	if err != nil {
		return BindSuccess, Undefined, err
	}
	if _, _, err := c.impl.ctor.TryInvoke(nil, obj, args); err != nil {
		return BindSuccess, Undefined, err
	}
	return BindSuccess, obj, nil
}

// Construct is the convenience constructor that must produce a value.
func (c *Class) Construct(args ...Value) (Value, error) {
	st, v, err := c.TryConstruct(nil, args)
	if err != nil {
		return Undefined, err
	}
	if err := BindError(st, c.Name()); err != nil {
		return Undefined, err
	}
	return v, nil
}

// Declaration surface, used by Declare callbacks and loaders before the
// table seals.

// DefineField adds a field trait to the class.
func (c *Class) DefineField(spec FieldSpec) (*FieldTrait, error) {
	tr := &FieldTrait{
		baseTrait: c.impl.newBase(spec.Name, spec.Static, spec.Metadata),
		fieldType: spec.Type,
		readOnly:  spec.ReadOnly,
	}
	if err := c.impl.table.TryAddTrait(tr, false); err != nil {
		return nil, err
	}
	return tr, nil
}

// DefineMethod adds a method trait to the class.
func (c *Class) DefineMethod(spec MethodSpec) (*MethodTrait, error) {
	tr := c.impl.newMethod(spec)
	if err := c.impl.table.TryAddTrait(tr, false); err != nil {
		return nil, err
	}
	return tr, nil
}

// DefineProperty adds a property trait. A second declaration of the same
// name contributes its accessors to the existing property when the roles do
// not conflict.
func (c *Class) DefineProperty(spec PropertySpec) (*PropertyTrait, error) {
	tr := &PropertyTrait{baseTrait: c.impl.newBase(spec.Name, spec.Static, spec.Metadata)}
	if spec.Getter != nil {
		g := *spec.Getter
		g.Name, g.Static = spec.Name, spec.Static
		tr.getter = c.impl.newMethod(g)
	}
	if spec.Setter != nil {
		s := *spec.Setter
		s.Name, s.Static = spec.Name, spec.Static
		tr.setter = c.impl.newMethod(s)
	}
	if err := c.impl.table.TryAddTrait(tr, true); err != nil {
		return nil, err
	}
	merged, _ := c.impl.table.findExact(spec.Name)
	return merged.(*PropertyTrait), nil
}

// DefineConstant adds a constant trait to the class.
func (c *Class) DefineConstant(spec ConstantSpec) (*ConstantTrait, error) {
	tr := &ConstantTrait{
		baseTrait: c.impl.newBase(spec.Name, spec.Static, spec.Metadata),
		val:       spec.Value,
	}
	if err := c.impl.table.TryAddTrait(tr, false); err != nil {
		return nil, err
	}
	return tr, nil
}

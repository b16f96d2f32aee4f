package vm

import "github.com/oxhq/avmcore/names"

// TraitKind classifies a trait. Kinds are bits so lookups can filter on a
// set of them.
type TraitKind uint8

const (
	// TraitClass marks a class declaration.
	TraitClass TraitKind = 1 << iota

	// TraitField marks a typed storage slot.
	TraitField

	// TraitProperty marks a getter/setter pair.
	TraitProperty

	// TraitMethod marks a method.
	TraitMethod

	// TraitConstant marks an immutable value.
	TraitConstant

	// TraitAny selects every kind.
	TraitAny = TraitClass | TraitField | TraitProperty | TraitMethod | TraitConstant
)

func (k TraitKind) String() string {
	switch k {
	case TraitClass:
		return "class"
	case TraitField:
		return "field"
	case TraitProperty:
		return "property"
	case TraitMethod:
		return "method"
	case TraitConstant:
		return "constant"
	default:
		return "mixed"
	}
}

// TraitScope selects which partitions of a trait table an operation covers.
type TraitScope uint8

const (
	// ScopeInstanceInherited selects instance traits inherited from a
	// parent class or interface.
	ScopeInstanceInherited TraitScope = 1 << iota

	// ScopeInstanceDeclared selects instance traits declared by the
	// table's own class.
	ScopeInstanceDeclared

	// ScopeStatic selects static traits.
	ScopeStatic

	// ScopeInstance selects all instance traits.
	ScopeInstance = ScopeInstanceInherited | ScopeInstanceDeclared

	// ScopeAll selects everything.
	ScopeAll = ScopeInstance | ScopeStatic
)

// Trait is a single named declaration attached to a class or to a domain's
// global scope. Every trait answers the four binding contracts; a variant
// that does not support an operation reports the matching failure status.
type Trait interface {
	// Name returns the trait's qualified name.
	Name() names.QName

	// Kind returns the trait's kind.
	Kind() TraitKind

	// DeclaringClass returns the class that declared the trait, or nil for
	// globals and standalone methods.
	DeclaringClass() *Class

	// Domain returns the application domain the trait belongs to.
	Domain() *ApplicationDomain

	// IsStatic reports whether the trait lives in the static scope.
	IsStatic() bool

	// Metadata returns the trait's metadata bag.
	Metadata() Metadata

	// TryGetValue reads the trait's value on target.
	TryGetValue(target Value) (BindStatus, Value, error)

	// TrySetValue writes the trait's value on target.
	TrySetValue(target Value, v Value) (BindStatus, error)

	// TryInvoke calls the trait on target with the given receiver. A
	// non-success status reports a binding failure; the error reports a
	// failure of the invocation itself.
	TryInvoke(target, receiver Value, args []Value) (BindStatus, Value, error)

	// TryConstruct uses the trait as a constructor.
	TryConstruct(target Value, args []Value) (BindStatus, Value, error)
}

// baseTrait carries the state shared by every trait variant.
type baseTrait struct {
	name      names.QName
	declClass *Class
	domain    *ApplicationDomain
	static    bool
	meta      Metadata
}

func (t *baseTrait) Name() names.QName          { return t.name }
func (t *baseTrait) DeclaringClass() *Class     { return t.declClass }
func (t *baseTrait) Domain() *ApplicationDomain { return t.domain }
func (t *baseTrait) IsStatic() bool             { return t.static }
func (t *baseTrait) Metadata() Metadata         { return t.meta }

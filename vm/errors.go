package vm

import errors "gopkg.in/src-d/go-errors.v1"

// Error kinds raised by the runtime. Resolution failures travel as BindStatus
// values and are converted to these kinds only at the convenience surface;
// merge failures during class closure are raised immediately.
var (
	// ErrArgumentNull is returned when a required argument is nil.
	ErrArgumentNull = errors.NewKind("argument %s must not be nil")

	// ErrArgumentOutOfRange is returned when a numeric argument is outside
	// its stated bounds.
	ErrArgumentOutOfRange = errors.NewKind("argument %s out of range: %v")

	// ErrAmbiguousName is returned when a lookup matched more than one
	// permissible trait.
	ErrAmbiguousName = errors.NewKind("ambiguous reference to name %s")

	// ErrPropertyNotFound is returned when resolution produced no candidate.
	ErrPropertyNotFound = errors.NewKind("property %s not found")

	// ErrCannotAssignToMethod is returned on a write against a method trait.
	ErrCannotAssignToMethod = errors.NewKind("cannot assign to method %s")

	// ErrCannotAssignToClass is returned on a write against a class trait.
	ErrCannotAssignToClass = errors.NewKind("cannot assign to class %s")

	// ErrIllegalReadWriteOnly is returned when reading a write-only property.
	ErrIllegalReadWriteOnly = errors.NewKind("property %s is write-only")

	// ErrIllegalWriteReadOnly is returned when writing a read-only property
	// or field.
	ErrIllegalWriteReadOnly = errors.NewKind("property %s is read-only")

	// ErrCannotCreatePropertyNonPublic is returned when dynamic property
	// creation is attempted in a non-public namespace.
	ErrCannotCreatePropertyNonPublic = errors.NewKind("cannot create dynamic property %s: namespace is not public")

	// ErrCannotCallMethodAsCtor is returned on a construct against a method.
	ErrCannotCallMethodAsCtor = errors.NewKind("method %s cannot be used as a constructor")

	// ErrNotAFunction is returned on an invoke against a value that is not
	// callable.
	ErrNotAFunction = errors.NewKind("value of %s is not a function")

	// ErrInstantiateNonConstructor is returned on a construct against a
	// value that is not a constructor.
	ErrInstantiateNonConstructor = errors.NewKind("value of %s is not a constructor")

	// ErrClassNotInstantiable is returned on a construct against a class
	// with neither a constructor nor a construct special.
	ErrClassNotInstantiable = errors.NewKind("class %s cannot be instantiated")

	// ErrClassCoerceArgCount is returned when a class used as a callable
	// receives an argument count other than one.
	ErrClassCoerceArgCount = errors.NewKind("class coercion to %s takes exactly 1 argument, got %d")

	// ErrArgCountMismatch is returned when a method call supplies too few or
	// too many arguments.
	ErrArgCountMismatch = errors.NewKind("method %s expects %s arguments, got %d")

	// ErrTypeCoercionFailed is returned when a value cannot be converted to
	// the required type.
	ErrTypeCoercionFailed = errors.NewKind("value cannot be coerced to type %s")

	// ErrNameConflictInClass is raised during closure when a declared trait
	// collides with an inherited one and cannot merge or legally override it.
	ErrNameConflictInClass = errors.NewKind("trait %s conflicts with an inherited trait in class %s")

	// ErrInterfaceTraitSignatureMismatch is raised during interface closure
	// when two inherited traits with the same name have incompatible shapes.
	ErrInterfaceTraitSignatureMismatch = errors.NewKind("interface trait %s inherited with incompatible signatures into %s")

	// ErrInterfaceNotImplemented is returned when a concrete class lacks a
	// matching implementation for an inherited interface trait.
	ErrInterfaceNotImplemented = errors.NewKind("class %s does not implement interface trait %s")

	// ErrTraitTableCorrupted is returned when a previous merge failure left
	// the table unusable.
	ErrTraitTableCorrupted = errors.NewKind("trait table of %s is corrupted by an earlier merge failure")

	// ErrTraitTableSealed is returned when adding to a sealed table.
	ErrTraitTableSealed = errors.NewKind("trait table of %s is sealed")

	// ErrDuplicateTrait is returned when a trait with the same qualified
	// name is already present and no merge applies.
	ErrDuplicateTrait = errors.NewKind("a trait named %s already exists")

	// ErrGlobalTraitConflict is returned when a global definition collides
	// with an existing or ancestor definition.
	ErrGlobalTraitConflict = errors.NewKind("global trait %s conflicts with an existing definition")

	// ErrModuleAlreadyRegistered is returned when a module is re-registered
	// to a different domain.
	ErrModuleAlreadyRegistered = errors.NewKind("module %s is already registered to another domain")

	// ErrLoadIntoSystemDomain is returned when a script loader is requested
	// on the system domain.
	ErrLoadIntoSystemDomain = errors.NewKind("bytecode scripts cannot be loaded into the system domain")

	// ErrNullReference is returned for a null receiver in an instance
	// invocation.
	ErrNullReference = errors.NewKind("null receiver in call to %s")

	// ErrUndefinedReference is returned for an undefined receiver in an
	// instance invocation.
	ErrUndefinedReference = errors.NewKind("undefined receiver in call to %s")

	// ErrDescendantsNotSupported is returned when the descendants operator
	// is applied to an object that does not support it.
	ErrDescendantsNotSupported = errors.NewKind("descendants operator is not supported on %s")
)

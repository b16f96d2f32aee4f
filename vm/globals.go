package vm

// Constructors for standalone traits: globals of a domain and free
// functions. They have no declaring class; a global field keeps its value on
// the trait itself.

// NewGlobalMethod builds a standalone method trait owned by d's global
// scope.
func NewGlobalMethod(d *ApplicationDomain, spec MethodSpec) (*MethodTrait, error) {
	if d == nil {
		return nil, ErrArgumentNull.New("domain")
	}
	return &MethodTrait{
		baseTrait: baseTrait{name: spec.Name, domain: d, meta: spec.Metadata},
		sig:       spec.Signature,
		override:  spec.Override,
		impl:      spec.Impl,
	}, nil
}

// NewGlobalField builds a standalone field trait owned by d's global scope.
func NewGlobalField(d *ApplicationDomain, spec FieldSpec) (*FieldTrait, error) {
	if d == nil {
		return nil, ErrArgumentNull.New("domain")
	}
	return &FieldTrait{
		baseTrait: baseTrait{name: spec.Name, domain: d, meta: spec.Metadata},
		fieldType: spec.Type,
		readOnly:  spec.ReadOnly,
	}, nil
}

// NewGlobalConstant builds a standalone constant trait owned by d's global
// scope.
func NewGlobalConstant(d *ApplicationDomain, spec ConstantSpec) (*ConstantTrait, error) {
	if d == nil {
		return nil, ErrArgumentNull.New("domain")
	}
	return &ConstantTrait{
		baseTrait: baseTrait{name: spec.Name, domain: d, meta: spec.Metadata},
		val:       spec.Value,
	}, nil
}

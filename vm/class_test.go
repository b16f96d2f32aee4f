package vm

import (
	"testing"

	"github.com/oxhq/avmcore/names"
)

func TestOverrideDiscipline(t *testing.T) {
	d := NewApplicationDomain(nil)
	parent := newClass(t, d, ClassDef{
		Name:    pub("OvrP"),
		Declare: declaring(declMethod(methodDef(pub("m"), false))),
	})

	t.Run("missing override flag corrupts the class", func(t *testing.T) {
		child := newClass(t, d, ClassDef{
			Name:    pub("OvrBad"),
			Parent:  parent,
			Declare: declaring(declMethod(methodDef(pub("m"), false))),
		})
		err := child.EnsureClosed()
		if !ErrNameConflictInClass.Is(err) {
			t.Fatalf("closure error = %v, want name conflict", err)
		}
		if !child.IsCorrupted() {
			t.Error("class must be corrupted after the failed merge")
		}
		// Corruption is sticky.
		if _, err := child.GetMethod("m"); !ErrTraitTableCorrupted.Is(err) {
			t.Errorf("access after corruption = %v, want corrupted", err)
		}
	})

	t.Run("override flag succeeds", func(t *testing.T) {
		child := newClass(t, d, ClassDef{
			Name:    pub("OvrGood"),
			Parent:  parent,
			Declare: declaring(declMethod(methodDef(pub("m"), true))),
		})
		m, err := child.GetMethod("m")
		if err != nil {
			t.Fatalf("GetMethod: %v", err)
		}
		if m.DeclaringClass() != child {
			t.Errorf("m declared by %v, want the child", m.DeclaringClass().Name())
		}
	})

	t.Run("override with different shape corrupts", func(t *testing.T) {
		child := newClass(t, d, ClassDef{
			Name:   pub("OvrShape"),
			Parent: parent,
			Declare: declaring(declMethod(MethodSpec{
				Name:      pub("m"),
				Override:  true,
				Signature: Signature{Params: []Param{{Type: CoreClasses().Int}}},
				Impl:      nopImpl,
			})),
		})
		if err := child.EnsureClosed(); !ErrNameConflictInClass.Is(err) {
			t.Errorf("closure error = %v, want name conflict", err)
		}
	})
}

func TestAnyNamespaceAmbiguity(t *testing.T) {
	d := NewApplicationDomain(nil)
	pkg := uriNS(t, "pkg")
	c := newClass(t, d, ClassDef{
		Name: pub("Ambi"),
		Declare: declaring(
			declMethod(MethodSpec{Name: pub("f"), Impl: nopImpl}),
			declMethod(MethodSpec{Name: names.NewQName(pkg, "f"), Impl: nopImpl}),
		),
	})

	st, _, err := c.TryGetTrait(names.NewQName(names.AnyNamespace, "f"), ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if st != BindAmbiguous {
		t.Errorf("any-namespace lookup = %v, want ambiguous", st)
	}
	if _, err := c.GetTrait(names.NewQName(names.AnyNamespace, "f")); !ErrAmbiguousName.Is(err) {
		t.Errorf("convenience GetTrait error = %v, want ambiguous-name", err)
	}
}

func TestInterfaceMerge(t *testing.T) {
	d := NewApplicationDomain(nil)
	intClass := CoreClasses().Int
	strClass := CoreClasses().String

	sigWith := func(pt *Class) Signature {
		return Signature{Params: []Param{{Name: "a", Type: pt}}}
	}
	iface := func(name string, pt *Class) *Class {
		return newClass(t, d, ClassDef{
			Name:        pub(name),
			IsInterface: true,
			Declare:     declaring(declMethod(MethodSpec{Name: pub("m"), Signature: sigWith(pt)})),
		})
	}

	t.Run("incompatible signatures corrupt", func(t *testing.T) {
		i1 := iface("MismatchI1", intClass)
		i2 := iface("MismatchI2", strClass)
		j := newClass(t, d, ClassDef{
			Name:        pub("MismatchJ"),
			IsInterface: true,
			Interfaces:  []*Class{i1, i2},
		})
		err := j.EnsureClosed()
		if !ErrInterfaceTraitSignatureMismatch.Is(err) {
			t.Fatalf("closure error = %v, want signature mismatch", err)
		}
		if !j.IsCorrupted() {
			t.Error("interface must be corrupted")
		}
	})

	t.Run("compatible signatures collapse to one trait", func(t *testing.T) {
		i1 := iface("MatchI1", intClass)
		i2 := iface("MatchI2", intClass)
		j := newClass(t, d, ClassDef{
			Name:        pub("MatchJ"),
			IsInterface: true,
			Interfaces:  []*Class{i1, i2},
		})
		m, err := j.GetMethod("m")
		if err != nil {
			t.Fatalf("GetMethod: %v", err)
		}
		trs, err := j.GetTraits(TraitMethod, ScopeInstance)
		if err != nil {
			t.Fatal(err)
		}
		if len(trs) != 1 || trs[0] != Trait(m) {
			t.Errorf("merged interface holds %d method traits, want exactly 1", len(trs))
		}
	})
}

func TestInterfaceDiamond(t *testing.T) {
	d := NewApplicationDomain(nil)
	i0 := newClass(t, d, ClassDef{
		Name:        pub("DiamondRoot"),
		IsInterface: true,
		Declare:     declaring(declMethod(methodDef(pub("m"), false))),
	})
	ext := func(name string) *Class {
		return newClass(t, d, ClassDef{
			Name:        pub(name),
			IsInterface: true,
			Interfaces:  []*Class{i0},
		})
	}
	j := newClass(t, d, ClassDef{
		Name:        pub("DiamondJ"),
		IsInterface: true,
		Interfaces:  []*Class{ext("DiamondL"), ext("DiamondR")},
	})

	m, err := j.GetMethod("m")
	if err != nil {
		t.Fatalf("diamond closure: %v", err)
	}
	if m.DeclaringClass() != i0 {
		t.Errorf("m declared by %v, want the root interface", m.DeclaringClass().Name())
	}
}

func TestInterfaceBranchAmbiguity(t *testing.T) {
	d := NewApplicationDomain(nil)
	nsA, nsB := uriNS(t, "brA"), uriNS(t, "brB")
	left := newClass(t, d, ClassDef{
		Name:        pub("BranchL"),
		IsInterface: true,
		Declare:     declaring(declMethod(MethodSpec{Name: names.NewQName(nsA, "f")})),
	})
	right := newClass(t, d, ClassDef{
		Name:        pub("BranchR"),
		IsInterface: true,
		Declare:     declaring(declMethod(MethodSpec{Name: names.NewQName(nsB, "f")})),
	})
	j := newClass(t, d, ClassDef{
		Name:        pub("BranchJ"),
		IsInterface: true,
		Interfaces:  []*Class{left, right},
	})

	// Same local name from unrelated branches of the DAG.
	st, _, err := j.TryGetTrait(names.NewQName(names.AnyNamespace, "f"), ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if st != BindAmbiguous {
		t.Errorf("cross-branch lookup = %v, want ambiguous", st)
	}

	// A derived interface shadowing its own base is not ambiguous.
	mid := newClass(t, d, ClassDef{
		Name:        pub("BranchMid"),
		IsInterface: true,
		Interfaces:  []*Class{left},
		Declare:     declaring(declMethod(MethodSpec{Name: names.NewQName(nsB, "f")})),
	})
	k := newClass(t, d, ClassDef{
		Name:        pub("BranchK"),
		IsInterface: true,
		Interfaces:  []*Class{mid},
	})
	st, tr, err := k.TryGetTrait(names.NewQName(names.AnyNamespace, "f"), ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if st != BindSuccess || tr.DeclaringClass() != mid {
		t.Errorf("derived-shadow lookup = %v (declarer %v), want the derived interface's trait", st, tr)
	}
}

func TestPropertyAccessorHiding(t *testing.T) {
	d := NewApplicationDomain(nil)
	parent := newClass(t, d, ClassDef{
		Name: pub("HideP"),
		Declare: declaring(declProperty(PropertySpec{
			Name:   pub("p"),
			Getter: &MethodSpec{Impl: nopImpl},
		})),
	})
	child := newClass(t, d, ClassDef{
		Name:                pub("HideC"),
		Parent:              parent,
		HideInheritedTraits: true,
		Declare: declaring(declProperty(PropertySpec{
			Name:   pub("p"),
			Setter: &MethodSpec{Impl: nopImpl},
		})),
	})

	p, err := child.GetProperty("p")
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if p.Getter() == nil {
		t.Error("merged property must keep the parent's getter")
	}
	if p.Setter() == nil {
		t.Error("merged property must keep the child's setter")
	}
	if p.Getter() != nil && p.Getter().DeclaringClass() != parent {
		t.Error("getter should come from the parent")
	}
	if p.Setter() != nil && p.Setter().DeclaringClass() != child {
		t.Error("setter should come from the child")
	}
}

func TestAssignability(t *testing.T) {
	d := NewApplicationDomain(nil)
	ct := CoreClasses()

	iface := newClass(t, d, ClassDef{Name: pub("AsgI"), IsInterface: true})
	base := newClass(t, d, ClassDef{Name: pub("AsgBase"), Interfaces: []*Class{iface}})
	derived := newClass(t, d, ClassDef{Name: pub("AsgDerived"), Parent: base})

	tests := []struct {
		name string
		a, b *Class
		want bool
	}{
		{"identity", base, base, true},
		{"any destination", base, nil, true},
		{"derived to base", derived, base, true},
		{"base to derived", base, derived, false},
		{"class to implemented interface", base, iface, true},
		{"derived to inherited interface", derived, iface, true},
		{"interface to root object", iface, ct.Object, true},
		{"int to Number", ct.Int, ct.Number, true},
		{"uint to Number", ct.UInt, ct.Number, true},
		{"Number to int", ct.Number, ct.Int, false},
		{"class to root object", derived, ct.Object, true},
		{"unrelated", ct.String, base, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.AssignableTo(tt.b); got != tt.want {
				t.Errorf("AssignableTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassCoercionInvoke(t *testing.T) {
	ct := CoreClasses()

	st, v, err := ct.Int.TryInvoke(nil, nil, []Value{"42"})
	if err != nil || st != BindSuccess || v != int32(42) {
		t.Errorf("int(\"42\") = %v/%v/%v, want 42", st, v, err)
	}

	if _, _, err := ct.Int.TryInvoke(nil, nil, []Value{1, 2}); !ErrClassCoerceArgCount.Is(err) {
		t.Errorf("two-argument coercion error = %v, want arg-count", err)
	}
	if _, _, err := ct.Int.TryInvoke(nil, nil, nil); !ErrClassCoerceArgCount.Is(err) {
		t.Errorf("zero-argument coercion error = %v, want arg-count", err)
	}

	// Null and undefined pass through an object-class coercion untouched.
	d := NewApplicationDomain(nil)
	c := newClass(t, d, ClassDef{Name: pub("CoerceObj")})
	for _, in := range []Value{nil, Undefined} {
		_, v, err := c.TryInvoke(nil, nil, []Value{in})
		if err != nil {
			t.Fatalf("coercing %v: %v", in, err)
		}
		if v != in {
			t.Errorf("coercing %v yielded %v", in, v)
		}
	}

	// An unrelated instance fails the cast.
	other := newClass(t, d, ClassDef{Name: pub("CoerceOther"), Constructor: &MethodSpec{Impl: nopImpl}})
	obj, err := other.Construct()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.TryInvoke(nil, nil, []Value{obj}); !ErrTypeCoercionFailed.Is(err) {
		t.Errorf("cross-class coercion error = %v, want coercion failure", err)
	}
}

func TestConstruct(t *testing.T) {
	d := NewApplicationDomain(nil)

	t.Run("constructor runs against a fresh instance", func(t *testing.T) {
		c := newClass(t, d, ClassDef{
			Name:    pub("CtorC"),
			Declare: declaring(declField(FieldSpec{Name: pub("v")})),
			Constructor: &MethodSpec{
				Signature: Signature{Params: []Param{{Name: "v"}}},
				Impl: func(receiver Value, args []Value) (Value, error) {
					_, err := receiver.(*DynamicObject).TrySetProperty(pub("v"), args[0])
					return Undefined, err
				},
			},
		})
		v, err := c.Construct("hello")
		if err != nil {
			t.Fatalf("Construct: %v", err)
		}
		obj := v.(*DynamicObject)
		if obj.Class() != c {
			t.Error("constructed object has the wrong class")
		}
		st, got, err := obj.TryGetProperty(pub("v"))
		if err != nil || st != BindSuccess || got != "hello" {
			t.Errorf("field after construction = %v/%v/%v", st, got, err)
		}
	})

	t.Run("no constructor means not instantiable", func(t *testing.T) {
		c := newClass(t, d, ClassDef{Name: pub("CtorNone")})
		if _, err := c.Construct(); !ErrClassNotInstantiable.Is(err) {
			t.Errorf("Construct error = %v, want not-instantiable", err)
		}
	})

	t.Run("construct special wins over constructor", func(t *testing.T) {
		c := newClass(t, d, ClassDef{
			Name: pub("CtorSpecial"),
			Specials: &ClassSpecials{
				Construct: func([]Value) (Value, error) { return "special", nil },
			},
			Constructor: &MethodSpec{Impl: nopImpl},
		})
		v, err := c.Construct()
		if err != nil || v != "special" {
			t.Errorf("Construct = %v/%v, want the special's result", v, err)
		}
	})

	t.Run("construct against a method fails", func(t *testing.T) {
		c := newClass(t, d, ClassDef{
			Name:    pub("CtorMeth"),
			Declare: declaring(declMethod(methodDef(pub("m"), false))),
		})
		m, err := c.GetMethod("m")
		if err != nil {
			t.Fatal(err)
		}
		st, _, _ := m.TryConstruct(nil, nil)
		if st != BindFailedMethodConstruct {
			t.Errorf("method TryConstruct = %v, want failedMethodConstruct", st)
		}
	})
}

func TestSpecialsInheritance(t *testing.T) {
	d := NewApplicationDomain(nil)
	parent := newClass(t, d, ClassDef{
		Name: pub("SpecP"),
		Specials: &ClassSpecials{
			Invoke: func(_ Value, _ []Value) (Value, error) { return "parent-invoke", nil },
		},
	})
	child := newClass(t, d, ClassDef{
		Name:   pub("SpecC"),
		Parent: parent,
		Specials: &ClassSpecials{
			Construct: func([]Value) (Value, error) { return "child-construct", nil },
		},
	})
	if err := child.EnsureClosed(); err != nil {
		t.Fatal(err)
	}

	sp := child.Specials()
	if sp == nil || sp.Invoke == nil {
		t.Fatal("child must inherit the parent's invoke special")
	}
	_, v, err := child.TryInvoke(nil, nil, nil)
	if err != nil || v != "parent-invoke" {
		t.Errorf("invoke through merged specials = %v/%v", v, err)
	}
	v, err = child.Construct()
	if err != nil || v != "child-construct" {
		t.Errorf("construct through own specials = %v/%v", v, err)
	}
}

func TestRecursiveClosure(t *testing.T) {
	d := NewApplicationDomain(nil)
	var midClosureStatus BindStatus
	var c *Class
	c = newClass(t, d, ClassDef{
		Name: pub("Recursive"),
		Declare: func(cls *Class) error {
			if _, err := cls.DefineMethod(methodDef(pub("m"), false)); err != nil {
				return err
			}
			// Touching the class mid-closure must not deadlock; the partial
			// table with the declared traits is visible.
			st, _, err := c.TryGetTrait(pub("m"), ScopeAll)
			midClosureStatus = st
			return err
		},
	})
	if err := c.EnsureClosed(); err != nil {
		t.Fatalf("closure: %v", err)
	}
	if midClosureStatus != BindSuccess {
		t.Errorf("mid-closure lookup = %v, want success against the partial table", midClosureStatus)
	}
}

func TestClosureIdempotent(t *testing.T) {
	d := NewApplicationDomain(nil)
	calls := 0
	c := newClass(t, d, ClassDef{
		Name: pub("Once"),
		Declare: func(cls *Class) error {
			calls++
			_, err := cls.DefineField(FieldSpec{Name: pub("a")})
			return err
		},
	})
	t1, err := c.Traits()
	if err != nil {
		t.Fatal(err)
	}
	t2, err := c.Traits()
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("closure must publish one table")
	}
	if calls != 1 {
		t.Errorf("Declare ran %d times, want 1", calls)
	}
}

func TestConcurrentClosure(t *testing.T) {
	d := NewApplicationDomain(nil)
	c := newClass(t, d, ClassDef{
		Name:    pub("Concurrent"),
		Declare: declaring(declMethod(methodDef(pub("m"), false))),
	})

	const workers = 8
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := c.GetMethod("m")
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent closure: %v", err)
		}
	}
}

func TestPrototypeAndClassObjects(t *testing.T) {
	d := NewApplicationDomain(nil)
	var protoInitRan bool
	c := newClass(t, d, ClassDef{
		Name: pub("ZoneC"),
		PrototypeInit: func(_ *Zone, proto *DynamicObject) {
			// The constructor slot must already be populated here.
			if st, _, _ := proto.TryGetProperty(pub("constructor")); st == BindSuccess {
				protoInitRan = true
			}
		},
	})

	z1, z2 := NewZone("z1"), NewZone("z2")
	p1, err := c.PrototypeObject(z1)
	if err != nil {
		t.Fatal(err)
	}
	if !protoInitRan {
		t.Error("prototype init must observe the constructor slot")
	}
	p1again, err := c.PrototypeObject(z1)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p1again {
		t.Error("prototype must be materialised once per zone")
	}
	p2, err := c.PrototypeObject(z2)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Error("distinct zones must get distinct prototypes")
	}

	co, err := c.ClassObject(z1)
	if err != nil {
		t.Fatal(err)
	}
	st, v, err := p1.TryGetProperty(pub("constructor"))
	if err != nil || st != BindSuccess || v != Value(co) {
		t.Errorf("prototype constructor slot = %v/%v, want the zone's class object", st, v)
	}
}

func TestVectorClass(t *testing.T) {
	ct := CoreClasses()
	vec := ct.Int.VectorClass()
	if vec == nil {
		t.Fatal("vector companion missing")
	}
	if vec.Name().Local() != "Vector.<int>" {
		t.Errorf("vector class local = %q", vec.Name().Local())
	}
	if vec.Tag() != TagVector || !vec.IsFinal() {
		t.Error("vector companion must be a final vector class")
	}
	if again := ct.Int.VectorClass(); again != vec {
		t.Error("vector companion must be materialised once")
	}
}

func TestCheckInterfaceImplementations(t *testing.T) {
	d := NewApplicationDomain(nil)
	iface := newClass(t, d, ClassDef{
		Name:        pub("ImplI"),
		IsInterface: true,
		Declare:     declaring(declMethod(MethodSpec{Name: pub("run")})),
	})

	good := newClass(t, d, ClassDef{
		Name:       pub("ImplGood"),
		Interfaces: []*Class{iface},
		Declare:    declaring(declMethod(MethodSpec{Name: pub("run"), Impl: nopImpl})),
	})
	if err := good.CheckInterfaceImplementations(); err != nil {
		t.Errorf("implementing class reported: %v", err)
	}

	bad := newClass(t, d, ClassDef{
		Name:       pub("ImplBad"),
		Interfaces: []*Class{iface},
	})
	if err := bad.CheckInterfaceImplementations(); !ErrInterfaceNotImplemented.Is(err) {
		t.Errorf("missing implementation error = %v", err)
	}
}

func TestMethodDispatch(t *testing.T) {
	d := NewApplicationDomain(nil)
	c := newClass(t, d, ClassDef{
		Name: pub("Dispatch"),
		Declare: declaring(declMethod(MethodSpec{
			Name: pub("add"),
			Signature: Signature{
				HasReturn:  true,
				ReturnType: CoreClasses().Int,
				Params: []Param{
					{Name: "a", Type: CoreClasses().Int},
					{Name: "b", Type: CoreClasses().Int, HasDefault: true, Default: int32(10)},
				},
			},
			Static: true,
			Impl: func(_ Value, args []Value) (Value, error) {
				return args[0].(int32) + args[1].(int32), nil
			},
		})),
	})
	m, err := c.GetMethod("add")
	if err != nil {
		t.Fatal(err)
	}

	if _, v, err := m.TryInvoke(nil, nil, []Value{int32(1), int32(2)}); err != nil || v != int32(3) {
		t.Errorf("add(1,2) = %v/%v", v, err)
	}
	// Missing optional argument takes the default.
	if _, v, err := m.TryInvoke(nil, nil, []Value{int32(1)}); err != nil || v != int32(11) {
		t.Errorf("add(1) = %v/%v, want 11", v, err)
	}
	// Arguments coerce to the declared parameter type.
	if _, v, err := m.TryInvoke(nil, nil, []Value{"4", "2"}); err != nil || v != int32(6) {
		t.Errorf("add(\"4\",\"2\") = %v/%v, want 6", v, err)
	}
	if _, _, err := m.TryInvoke(nil, nil, nil); !ErrArgCountMismatch.Is(err) {
		t.Errorf("add() error = %v, want arg-count mismatch", err)
	}
	if _, _, err := m.TryInvoke(nil, nil, []Value{int32(1), int32(2), int32(3)}); !ErrArgCountMismatch.Is(err) {
		t.Errorf("add(1,2,3) error = %v, want arg-count mismatch", err)
	}
}

func TestInstanceMethodReceiverChecks(t *testing.T) {
	d := NewApplicationDomain(nil)
	c := newClass(t, d, ClassDef{
		Name:    pub("Recv"),
		Declare: declaring(declMethod(methodDef(pub("m"), false))),
	})
	m, err := c.GetMethod("m")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.TryInvoke(nil, nil, nil); !ErrNullReference.Is(err) {
		t.Errorf("null receiver error = %v", err)
	}
	if _, _, err := m.TryInvoke(nil, Undefined, nil); !ErrUndefinedReference.Is(err) {
		t.Errorf("undefined receiver error = %v", err)
	}
}

func TestMethodClosureValue(t *testing.T) {
	d := NewApplicationDomain(nil)
	c := newClass(t, d, ClassDef{
		Name: pub("Closure"),
		Declare: declaring(declMethod(MethodSpec{
			Name:      pub("who"),
			Signature: Signature{HasReturn: true},
			Impl: func(receiver Value, _ []Value) (Value, error) {
				return receiver, nil
			},
		})),
	})
	obj, err := NewDynamicObject(c)
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.GetMethod("who")
	if err != nil {
		t.Fatal(err)
	}
	st, v, err := m.TryGetValue(obj)
	if err != nil || st != BindSuccess {
		t.Fatalf("TryGetValue = %v/%v", st, err)
	}
	mc := v.(*MethodClosure)
	_, got, err := mc.TryCall("ignored", nil)
	if err != nil || got != Value(obj) {
		t.Errorf("closure call receiver = %v/%v, want the bound object", got, err)
	}

	// Assigning over a method is refused.
	st, err = m.TrySetValue(obj, 1)
	if err != nil || st != BindFailedAssignMethod {
		t.Errorf("method TrySetValue = %v, want failedAssignMethod", st)
	}
}

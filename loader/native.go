package loader

import (
	"reflect"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/avmcore/names"
	"github.com/oxhq/avmcore/vm"
)

// LoadNativeClass builds a class from a Go struct type and defines it as a
// global of domain. Exported fields become field traits, exported methods
// become method traits dispatched through reflection. typ may be a
// reflect.Type or any value of the type to load.
func LoadNativeClass(domain *vm.ApplicationDomain, typ any) (*vm.Class, error) {
	if domain == nil {
		return nil, vm.ErrArgumentNull.New("domain")
	}
	t, err := structTypeOf(typ)
	if err != nil {
		return nil, err
	}
	if t.Name() == "" {
		return nil, ErrNativeClassUnnamed.New()
	}

	def := vm.ClassDef{
		Name:   names.PublicName(t.Name()),
		Tag:    vm.TagObject,
		Parent: vm.CoreClasses().Object,
		Declare: func(c *vm.Class) error {
			return declareNativeTraits(c, t)
		},
	}
	cls, err := vm.NewClass(domain, def)
	if err != nil {
		return nil, err
	}
	if err := domain.TryDefineGlobalTrait(cls, false); err != nil {
		return nil, err
	}
	log.Debug().Str("type", t.String()).Msg("native class loaded")
	return cls, nil
}

func structTypeOf(typ any) (reflect.Type, error) {
	var t reflect.Type
	switch v := typ.(type) {
	case nil:
		return nil, ErrNativeClassNil.New()
	case reflect.Type:
		t = v
	default:
		t = reflect.TypeOf(typ)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, ErrNativeClassNotStruct.New(t.String())
	}
	return t, nil
}

func declareNativeTraits(c *vm.Class, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if _, err := c.DefineField(vm.FieldSpec{
			Name: names.PublicName(f.Name),
			Type: classForGoType(f.Type),
		}); err != nil {
			return err
		}
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if !m.IsExported() {
			continue
		}
		if _, err := c.DefineMethod(vm.MethodSpec{
			Name:      names.PublicName(m.Name),
			Signature: signatureForGoMethod(m.Type),
			Impl:      reflectInvoker(m.Func),
		}); err != nil {
			return err
		}
	}
	return nil
}

// classForGoType maps a Go type onto a core class; unknown types are
// untyped (any).
func classForGoType(t reflect.Type) *vm.Class {
	ct := vm.CoreClasses()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ct.Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ct.UInt
	case reflect.Float32, reflect.Float64:
		return ct.Number
	case reflect.Bool:
		return ct.Boolean
	case reflect.String:
		return ct.String
	default:
		return nil
	}
}

// signatureForGoMethod derives a method signature from a Go func type whose
// first input is the receiver.
func signatureForGoMethod(ft reflect.Type) vm.Signature {
	sig := vm.Signature{}
	for i := 1; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			sig.HasRest = true
			break
		}
		sig.Params = append(sig.Params, vm.Param{Type: classForGoType(in)})
	}
	if ft.NumOut() > 0 && ft.Out(0).Kind() != reflect.Interface {
		sig.HasReturn = true
		sig.ReturnType = classForGoType(ft.Out(0))
	} else if ft.NumOut() > 0 {
		sig.HasReturn = true
	}
	return sig
}

// reflectInvoker adapts a reflected func (receiver-first) to the method
// dispatch contract. Argument conversion beyond what reflection accepts
// directly fails the call.
func reflectInvoker(fn reflect.Value) vm.MethodImpl {
	ft := fn.Type()
	return func(receiver vm.Value, args []vm.Value) (vm.Value, error) {
		in := make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(receiver))
		for i, a := range args {
			pos := i + 1
			if pos >= ft.NumIn() {
				pos = ft.NumIn() - 1
			}
			pt := ft.In(pos)
			if ft.IsVariadic() && pos == ft.NumIn()-1 {
				pt = pt.Elem()
			}
			if a == nil || vm.IsUndefined(a) {
				in = append(in, reflect.Zero(pt))
				continue
			}
			av := reflect.ValueOf(a)
			if !av.Type().AssignableTo(pt) {
				return vm.Undefined, vm.ErrTypeCoercionFailed.New(pt.String())
			}
			in = append(in, av)
		}
		out := fn.Call(in)
		switch len(out) {
		case 0:
			return vm.Undefined, nil
		default:
			if last := out[len(out)-1]; last.Type() == errType && !last.IsNil() {
				return vm.Undefined, last.Interface().(error)
			}
			return out[0].Interface(), nil
		}
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Assembly is a batch of Go types treated as one loadable unit.
type Assembly struct {
	Name  string
	Types []any
}

// LoadNativeClassesFromAssembly loads every struct type in the assembly
// whose slash-joined path (pkgpath/TypeName) matches the include patterns.
// With no patterns everything loads.
func LoadNativeClassesFromAssembly(domain *vm.ApplicationDomain, asm *Assembly, include ...string) ([]*vm.Class, error) {
	if asm == nil {
		return nil, ErrAssemblyNil.New()
	}
	var out []*vm.Class
	for _, typ := range asm.Types {
		t, err := structTypeOf(typ)
		if err != nil {
			return out, err
		}
		if !matchesAny(t.PkgPath()+"/"+t.Name(), include) {
			continue
		}
		cls, err := LoadNativeClass(domain, t)
		if err != nil {
			return out, err
		}
		out = append(out, cls)
	}
	log.Info().Str("assembly", asm.Name).Int("classes", len(out)).Msg("assembly loaded")
	return out, nil
}

func matchesAny(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

// LoadNativeModule exposes the exported fields and methods of a struct
// value as globals of domain and registers a module handle for it.
func LoadNativeModule(domain *vm.ApplicationDomain, value any) (*vm.Module, error) {
	if domain == nil {
		return nil, vm.ErrArgumentNull.New("domain")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrNativeModuleNotStruct.New(reflect.TypeOf(value))
	}
	t := rv.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tr, err := vm.NewGlobalField(domain, vm.FieldSpec{
			Name: names.PublicName(f.Name),
			Type: classForGoType(f.Type),
		})
		if err != nil {
			return nil, err
		}
		if err := domain.TryDefineGlobalTrait(tr, false); err != nil {
			return nil, err
		}
		if _, err := tr.TrySetValue(nil, rv.Field(i).Interface()); err != nil {
			return nil, err
		}
	}

	pv := reflect.ValueOf(value)
	pt := pv.Type()
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if !m.IsExported() {
			continue
		}
		bound := pv.Method(i)
		tr, err := vm.NewGlobalMethod(domain, vm.MethodSpec{
			Name:      names.PublicName(m.Name),
			Signature: signatureForGoFunc(bound.Type()),
			Impl:      reflectCaller(bound),
		})
		if err != nil {
			return nil, err
		}
		if err := domain.TryDefineGlobalTrait(tr, false); err != nil {
			return nil, err
		}
	}

	mod := vm.NewModule(t.String())
	if err := vm.RegisterModule(mod, domain); err != nil {
		return nil, err
	}
	log.Debug().Str("module", mod.Name()).Msg("native module loaded")
	return mod, nil
}

// signatureForGoFunc derives a signature from a bound func type (no
// receiver input).
func signatureForGoFunc(ft reflect.Type) vm.Signature {
	sig := vm.Signature{}
	for i := 0; i < ft.NumIn(); i++ {
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			sig.HasRest = true
			break
		}
		sig.Params = append(sig.Params, vm.Param{Type: classForGoType(ft.In(i))})
	}
	if ft.NumOut() > 0 {
		sig.HasReturn = true
		sig.ReturnType = classForGoType(ft.Out(0))
	}
	return sig
}

// reflectCaller adapts a bound reflected func to the dispatch contract.
func reflectCaller(fn reflect.Value) vm.MethodImpl {
	ft := fn.Type()
	return func(_ vm.Value, args []vm.Value) (vm.Value, error) {
		in := make([]reflect.Value, 0, len(args))
		for i, a := range args {
			if a == nil || vm.IsUndefined(a) {
				pos := i
				if pos >= ft.NumIn() {
					pos = ft.NumIn() - 1
				}
				pt := ft.In(pos)
				if ft.IsVariadic() && pos == ft.NumIn()-1 {
					pt = pt.Elem()
				}
				in = append(in, reflect.Zero(pt))
				continue
			}
			in = append(in, reflect.ValueOf(a))
		}
		out := fn.Call(in)
		switch len(out) {
		case 0:
			return vm.Undefined, nil
		default:
			if last := out[len(out)-1]; last.Type() == errType && !last.IsNil() {
				return vm.Undefined, last.Interface().(error)
			}
			return out[0].Interface(), nil
		}
	}
}

package vm

import (
	"testing"

	"github.com/oxhq/avmcore/names"
)

func pub(local string) names.QName { return names.PublicName(local) }

func uriNS(t *testing.T, uri string) names.Namespace {
	t.Helper()
	ns, err := names.NewNamespace(names.KindNamespace, uri)
	if err != nil {
		t.Fatalf("NewNamespace(%q): %v", uri, err)
	}
	return ns
}

func nopImpl(Value, []Value) (Value, error) { return Undefined, nil }

// newClass builds a class in d; a non-interface object class declared
// without a parent gets the core Object class as its parent.
func newClass(t *testing.T, d *ApplicationDomain, def ClassDef) *Class {
	t.Helper()
	if def.Tag == TagObject && def.Parent == nil && !def.IsInterface {
		def.Parent = CoreClasses().Object
	}
	c, err := NewClass(d, def)
	if err != nil {
		t.Fatalf("NewClass(%v): %v", def.Name, err)
	}
	return c
}

// methodDef is shorthand for a no-op method declaration.
func methodDef(name names.QName, override bool) MethodSpec {
	return MethodSpec{Name: name, Override: override, Impl: nopImpl}
}

// declaring wraps a set of declarations into a Declare callback.
func declaring(decls ...func(c *Class) error) func(*Class) error {
	return func(c *Class) error {
		for _, d := range decls {
			if err := d(c); err != nil {
				return err
			}
		}
		return nil
	}
}

func declMethod(spec MethodSpec) func(*Class) error {
	return func(c *Class) error {
		_, err := c.DefineMethod(spec)
		return err
	}
}

func declField(spec FieldSpec) func(*Class) error {
	return func(c *Class) error {
		_, err := c.DefineField(spec)
		return err
	}
}

func declProperty(spec PropertySpec) func(*Class) error {
	return func(c *Class) error {
		_, err := c.DefineProperty(spec)
		return err
	}
}

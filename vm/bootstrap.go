package vm

import (
	"sync"

	"github.com/oxhq/avmcore/names"
)

// CoreTypes holds the classes every domain tree depends on. They are built
// once, installed into the system domain's global table, and closed lazily
// like any other class.
type CoreTypes struct {
	Object    *Class
	Class     *Class
	Function  *Class
	Int       *Class
	UInt      *Class
	Number    *Class
	Boolean   *Class
	String    *Class
	Namespace *Class
	QName     *Class
}

var (
	coreOnce  sync.Once
	coreTypes *CoreTypes
)

// CoreClasses returns the core type set, building it on first use.
func CoreClasses() *CoreTypes {
	ensureCoreClasses()
	return coreTypes
}

// ensureCoreClasses builds the core classes and defines them as globals of
// the system domain. LookupGlobalTrait calls this before the system domain
// is searched, so bytecode always finds the core types.
func ensureCoreClasses() {
	coreOnce.Do(func() {
		sys := SystemDomain()
		ct := &CoreTypes{}
		// coreTypes is published before the classes below are filled in;
		// CoreClasses called from inside this Do would block on coreOnce.
		coreTypes = ct

		mustClass := func(local string, tag ClassTag, parent *Class, dynamic, final bool) *Class {
			c, err := NewClass(sys, ClassDef{
				Name:      names.PublicName(local),
				Tag:       tag,
				Parent:    parent,
				IsDynamic: dynamic,
				IsFinal:   final,
			})
			if err != nil {
				panic(err)
			}
			return c
		}

		ct.Object = mustClass("Object", TagObject, nil, true, false)
		ct.Class = mustClass("Class", TagClass, ct.Object, true, false)
		ct.Function = mustClass("Function", TagFunction, ct.Object, true, false)
		ct.Int = mustClass("int", TagInt, ct.Object, false, true)
		ct.UInt = mustClass("uint", TagUint, ct.Object, false, true)
		ct.Number = mustClass("Number", TagNumber, ct.Object, false, true)
		ct.Boolean = mustClass("Boolean", TagBoolean, ct.Object, false, true)
		ct.String = mustClass("String", TagString, ct.Object, false, true)
		ct.Namespace = mustClass("Namespace", TagNamespace, ct.Object, false, true)
		ct.QName = mustClass("QName", TagQName, ct.Object, false, true)

		for _, c := range []*Class{
			ct.Object, ct.Class, ct.Function, ct.Int, ct.UInt,
			ct.Number, ct.Boolean, ct.String, ct.Namespace, ct.QName,
		} {
			if err := sys.TryDefineGlobalTrait(c, false); err != nil {
				panic(err)
			}
		}
		logger.Debug().Msg("core classes loaded into system domain")
	})
}

package vm

import (
	"sync"
	"sync/atomic"

	"github.com/oxhq/avmcore/metrics"
	"github.com/oxhq/avmcore/names"
)

// ApplicationDomain is a node in the domain tree rooted at the system
// domain. Each domain owns a global trait table, a global object and a
// global-memory buffer; descendants shadow ancestors during lookup.
type ApplicationDomain struct {
	parent  *ApplicationDomain
	globals *TraitTable

	mu        sync.RWMutex
	globalObj *DynamicObject

	mem atomic.Pointer[globalMemory]
}

type globalMemory struct {
	buf  []byte
	size int
}

var (
	systemDomainOnce sync.Once
	systemDomain     *ApplicationDomain
)

// SystemDomain returns the unique root of the domain tree.
func SystemDomain() *ApplicationDomain {
	systemDomainOnce.Do(func() {
		systemDomain = &ApplicationDomain{}
		systemDomain.globals = NewTraitTable(nil, systemDomain)
	})
	return systemDomain
}

// NewApplicationDomain creates a child domain. A nil parent adopts the
// system domain.
func NewApplicationDomain(parent *ApplicationDomain) *ApplicationDomain {
	if parent == nil {
		parent = SystemDomain()
	}
	d := &ApplicationDomain{parent: parent}
	d.globals = NewTraitTable(nil, d)
	logger.Debug().Bool("parentIsSystem", parent.IsSystem()).Msg("application domain created")
	return d
}

// Parent returns the parent domain, nil only for the system domain.
func (d *ApplicationDomain) Parent() *ApplicationDomain { return d.parent }

// IsSystem reports whether this is the system domain.
func (d *ApplicationDomain) IsSystem() bool { return d.parent == nil }

// GlobalTraits returns the domain's global trait table.
func (d *ApplicationDomain) GlobalTraits() *TraitTable { return d.globals }

// GlobalObject returns the domain's global object, a dynamic-property
// container created on first use.
func (d *ApplicationDomain) GlobalObject() (*DynamicObject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.globalObj == nil {
		obj, err := NewDynamicObject(CoreClasses().Object)
		if err != nil {
			return nil, err
		}
		d.globalObj = obj
	}
	return d.globalObj, nil
}

// LookupGlobalTrait resolves a global name, walking from this domain up the
// parent chain so that descendants shadow ancestors. The walk stops at the
// first level that answers anything but not-found; ambiguity terminates it.
// The system domain's core classes are loaded before it is searched.
func (d *ApplicationDomain) LookupGlobalTrait(name names.QName, noInherited bool) (BindStatus, Trait) {
	st, tr := d.lookupGlobal(noInherited, func(t *TraitTable) (BindStatus, Trait) {
		return t.TryGetTrait(name, ScopeAll)
	})
	metrics.GlobalLookups.WithLabelValues(st.String()).Inc()
	return st, tr
}

// LookupGlobalTraitNS is LookupGlobalTrait for a (local name, namespace set)
// multiname.
func (d *ApplicationDomain) LookupGlobalTraitNS(local string, set *names.NamespaceSet, noInherited bool) (BindStatus, Trait) {
	st, tr := d.lookupGlobal(noInherited, func(t *TraitTable) (BindStatus, Trait) {
		return t.TryGetTraitNS(local, set, ScopeAll)
	})
	metrics.GlobalLookups.WithLabelValues(st.String()).Inc()
	return st, tr
}

func (d *ApplicationDomain) lookupGlobal(noInherited bool, search func(*TraitTable) (BindStatus, Trait)) (BindStatus, Trait) {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.IsSystem() {
			ensureCoreClasses()
		}
		cur.mu.RLock()
		st, tr := search(cur.globals)
		cur.mu.RUnlock()
		if st != BindNotFound {
			return st, tr
		}
		if noInherited {
			break
		}
	}
	return BindNotFound, nil
}

// GetGlobalTrait is the convenience lookup that must produce a trait.
func (d *ApplicationDomain) GetGlobalTrait(name names.QName) (Trait, error) {
	st, tr := d.LookupGlobalTrait(name, false)
	if st != BindSuccess {
		return nil, BindError(st, name)
	}
	return tr, nil
}

// TryDefineGlobalTrait adds a trait to the domain's global table. The
// definition is refused when an ancestor already defines the name, unless
// canHideFromParent is set, and on a local-name collision within the domain.
func (d *ApplicationDomain) TryDefineGlobalTrait(tr Trait, canHideFromParent bool) error {
	if tr == nil {
		return ErrArgumentNull.New("trait")
	}
	name := tr.Name()
	if !canHideFromParent {
		for anc := d.parent; anc != nil; anc = anc.parent {
			anc.mu.RLock()
			st, _ := anc.globals.TryGetTrait(name, ScopeAll)
			anc.mu.RUnlock()
			if st != BindNotFound {
				return ErrGlobalTraitConflict.New(name)
			}
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, _ := d.globals.TryGetTrait(names.NewQName(names.AnyNamespace, name.Local()), ScopeAll); st != BindNotFound {
		// A same-qualified-name property pair may still merge; any other
		// local-name collision is refused.
		if existing, _ := d.globals.findExact(name); existing != nil {
			return d.globals.TryAddTrait(tr, true)
		}
		return ErrGlobalTraitConflict.New(name)
	}
	return d.globals.TryAddTrait(tr, true)
}

// SetGlobalMemory installs buf as the domain's global memory with the given
// logical size. Readers observe the buffer and size as one atomic pair.
func (d *ApplicationDomain) SetGlobalMemory(buf []byte, size int) error {
	if buf == nil {
		return ErrArgumentNull.New("buf")
	}
	if size < 0 || size > len(buf) {
		return ErrArgumentOutOfRange.New("size", size)
	}
	d.mem.Store(&globalMemory{buf: buf, size: size})
	return nil
}

// GlobalMemorySpan returns a view of the global memory restricted to its
// logical size. The view must not be held across a later SetGlobalMemory.
func (d *ApplicationDomain) GlobalMemorySpan() []byte {
	m := d.mem.Load()
	if m == nil {
		return nil
	}
	return m.buf[:m.size:m.size]
}

// GlobalMemorySize returns the logical size of the global memory.
func (d *ApplicationDomain) GlobalMemorySize() int {
	if m := d.mem.Load(); m != nil {
		return m.size
	}
	return 0
}

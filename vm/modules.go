package vm

import (
	"runtime"
	"sync"
	"weak"

	"github.com/google/uuid"
)

// Module is an opaque handle for a unit of loaded code. Modules map to the
// domain they were loaded into through a process-wide registry; the registry
// holds modules weakly, so a registration never keeps a module (or its
// domain mapping) alive.
type Module struct {
	id   uuid.UUID
	name string
}

// NewModule creates a module handle with a diagnostic name.
func NewModule(name string) *Module {
	return &Module{id: uuid.New(), name: name}
}

// ID returns the module's unique id.
func (m *Module) ID() uuid.UUID { return m.id }

// Name returns the module's diagnostic name.
func (m *Module) Name() string { return m.name }

// moduleRegistry maps weak module pointers to their owning domain.
// Insert-only, concurrent-map semantics; entries are cleaned up when their
// module is collected.
var moduleRegistry sync.Map // weak.Pointer[Module] -> *ApplicationDomain

// RegisterModule records that m belongs to d. Registration is insert-only:
// re-registering a module to a different domain fails.
func RegisterModule(m *Module, d *ApplicationDomain) error {
	if m == nil {
		return ErrArgumentNull.New("module")
	}
	if d == nil {
		return ErrArgumentNull.New("domain")
	}
	key := weak.Make(m)
	if prev, loaded := moduleRegistry.LoadOrStore(key, d); loaded {
		if prev.(*ApplicationDomain) != d {
			return ErrModuleAlreadyRegistered.New(m.name)
		}
		return nil
	}
	runtime.AddCleanup(m, func(k weak.Pointer[Module]) {
		moduleRegistry.Delete(k)
	}, key)
	return nil
}

// ModuleDomain returns the domain m was registered to.
func (m *Module) ModuleDomain() (*ApplicationDomain, bool) {
	if m == nil {
		return nil, false
	}
	d, ok := moduleRegistry.Load(weak.Make(m))
	if !ok {
		return nil, false
	}
	return d.(*ApplicationDomain), true
}

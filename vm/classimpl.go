package vm

import (
	"sync"
	"sync/atomic"

	"github.com/oxhq/avmcore/metrics"
	"github.com/oxhq/avmcore/names"
)

const (
	classBuilding int32 = iota
	classClosing
	classClosed
	classCorrupted
)

// ClassImpl is the concrete class record behind a Class handle. It owns the
// trait table, the constructor record and the merged specials, and runs the
// one-time closure that merges inherited traits and seals the table.
type ClassImpl struct {
	handle *Class
	def    ClassDef
	name   names.QName
	domain *ApplicationDomain
	parent *Class

	declaredIfaces []*Class
	ifaceList      []*Class
	ifaceSet       map[*Class]struct{}

	table    *TraitTable
	ctor     *MethodTrait
	specials atomic.Pointer[ClassSpecials]

	// Closure guard. state is published with release semantics by the
	// closing goroutine; initOwner lets that goroutine observe the class
	// as in-progress when closure re-enters itself.
	state     atomic.Int32
	initMu    sync.Mutex
	initOwner atomic.Uint64

	zones sync.Map // *Zone -> *zoneState

	vectorOnce  sync.Once
	vectorClass *Class
}

type zoneState struct {
	protoOnce sync.Once
	proto     *DynamicObject
	protoErr  error
	classOnce sync.Once
	classObj  *DynamicObject
	classErr  error
}

func newClassImpl(handle *Class, domain *ApplicationDomain, def ClassDef) *ClassImpl {
	ci := &ClassImpl{
		handle:         handle,
		def:            def,
		name:           def.Name,
		domain:         domain,
		parent:         def.Parent,
		declaredIfaces: append([]*Class(nil), def.Interfaces...),
	}
	ci.table = NewTraitTable(handle, domain)
	ci.specials.Store(def.Specials)
	ci.buildInterfaceClosure()
	return ci
}

// buildInterfaceClosure flattens the implemented-interface DAG into a
// deterministic pre-order list and a membership set. The parent's transitive
// interfaces are included for classes.
func (ci *ClassImpl) buildInterfaceClosure() {
	ci.ifaceSet = make(map[*Class]struct{})
	var visit func(ifc *Class)
	visit = func(ifc *Class) {
		if ifc == nil {
			return
		}
		if _, seen := ci.ifaceSet[ifc]; seen {
			return
		}
		ci.ifaceSet[ifc] = struct{}{}
		ci.ifaceList = append(ci.ifaceList, ifc)
		for _, p := range ifc.DeclaredInterfaces() {
			visit(p)
		}
	}
	for _, ifc := range ci.declaredIfaces {
		visit(ifc)
	}
	if ci.parent != nil {
		for _, ifc := range ci.parent.Interfaces() {
			visit(ifc)
		}
	}
}

func (ci *ClassImpl) newBase(name names.QName, static bool, meta Metadata) baseTrait {
	return baseTrait{
		name:      name,
		declClass: ci.handle,
		domain:    ci.domain,
		static:    static,
		meta:      meta,
	}
}

func (ci *ClassImpl) newMethod(spec MethodSpec) *MethodTrait {
	return &MethodTrait{
		baseTrait: ci.newBase(spec.Name, spec.Static, spec.Metadata),
		sig:       spec.Signature,
		override:  spec.Override,
		impl:      spec.Impl,
	}
}

// ensureClosed runs the closure exactly once. A second thread blocks until
// the closure publishes; the closing goroutine itself re-entering observes
// the class as in-progress and proceeds against the partial table.
func (ci *ClassImpl) ensureClosed() error {
	switch ci.state.Load() {
	case classClosed:
		return nil
	case classCorrupted:
		return ErrTraitTableCorrupted.New(ci.name)
	}

	gid := goroutineID()
	if ci.state.Load() == classClosing && ci.initOwner.Load() == gid {
		// Recursive touch from our own initialiser: only the declared
		// traits are visible. This is the documented sentinel.
		return nil
	}

	ci.initMu.Lock()
	defer ci.initMu.Unlock()

	switch ci.state.Load() {
	case classClosed:
		return nil
	case classCorrupted:
		return ErrTraitTableCorrupted.New(ci.name)
	}

	ci.initOwner.Store(gid)
	ci.state.Store(classClosing)
	err := ci.initialize()
	ci.initOwner.Store(0)
	if err != nil {
		ci.table.markCorrupted()
		ci.state.Store(classCorrupted)
		metrics.ClassClosureFailures.Inc()
		logger.Warn().Stringer("class", ci.name).Err(err).Msg("class closure failed")
		return err
	}
	ci.state.Store(classClosed)
	metrics.ClassClosures.Inc()
	logger.Debug().Stringer("class", ci.name).Int("traits", ci.table.Len()).Msg("class closed")
	return nil
}

// initialize is the closure body: parent, then interfaces, then own
// declarations, then the inheritance merge, sealing, and the specials merge.
func (ci *ClassImpl) initialize() error {
	if ci.parent != nil {
		if err := ci.parent.EnsureClosed(); err != nil {
			return err
		}
	}
	for _, ifc := range ci.declaredIfaces {
		if err := ifc.EnsureClosed(); err != nil {
			return err
		}
	}

	if ci.def.Declare != nil {
		if err := ci.def.Declare(ci.handle); err != nil {
			return err
		}
	}
	if ci.def.Constructor != nil {
		spec := *ci.def.Constructor
		spec.Name = ci.name
		spec.Static = false
		ci.ctor = ci.newMethod(spec)
	}

	if ci.def.IsInterface {
		for _, ifc := range ci.ifaceList {
			ptbl, err := ifc.Traits()
			if err != nil {
				return err
			}
			if err := ci.table.MergeWithParentInterface(ptbl); err != nil {
				return err
			}
		}
	} else if ci.parent != nil {
		ptbl, err := ci.parent.Traits()
		if err != nil {
			return err
		}
		if err := ci.table.MergeWithParentClass(ptbl, ci.def.HideInheritedTraits); err != nil {
			return err
		}
	}

	if err := ci.table.Seal(); err != nil {
		return err
	}

	sp := ci.def.Specials
	if ci.parent != nil {
		sp = sp.mergedWith(ci.parent.Specials())
	}
	ci.specials.Store(sp)
	return nil
}

// zoneStateFor returns the per-zone derived-object state, creating it on
// first touch. A nil zone maps to the default zone.
func (ci *ClassImpl) zoneStateFor(z *Zone) *zoneState {
	if z == nil {
		z = DefaultZone()
	}
	if zs, ok := ci.zones.Load(z); ok {
		return zs.(*zoneState)
	}
	zs, _ := ci.zones.LoadOrStore(z, &zoneState{})
	return zs.(*zoneState)
}

// PrototypeObject returns the class's prototype object for the zone,
// materialising it on first access. The prototype's constructor slot is set
// to the class object before any user prototype initialisation runs.
func (c *Class) PrototypeObject(z *Zone) (*DynamicObject, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return nil, err
	}
	zs := c.impl.zoneStateFor(z)
	zs.protoOnce.Do(func() {
		ct := CoreClasses()
		proto, err := NewDynamicObject(ct.Object)
		if err != nil {
			zs.protoErr = err
			return
		}
		classObj, err := c.ClassObject(z)
		if err != nil {
			zs.protoErr = err
			return
		}
		if _, err := proto.TrySetProperty(names.PublicName("constructor"), classObj); err != nil {
			zs.protoErr = err
			return
		}
		if c.impl.def.PrototypeInit != nil {
			c.impl.def.PrototypeInit(z, proto)
		}
		zs.proto = proto
	})
	return zs.proto, zs.protoErr
}

// ClassObject returns the class's per-zone class object, materialising it on
// first access.
func (c *Class) ClassObject(z *Zone) (*DynamicObject, error) {
	if err := c.impl.ensureClosed(); err != nil {
		return nil, err
	}
	zs := c.impl.zoneStateFor(z)
	zs.classOnce.Do(func() {
		ct := CoreClasses()
		obj, err := NewDynamicObject(ct.Class)
		if err != nil {
			zs.classErr = err
			return
		}
		zs.classObj = obj
	})
	return zs.classObj, zs.classErr
}

// VectorClass returns the lazily materialised vector-of-this companion
// class.
func (c *Class) VectorClass() *Class {
	ci := c.impl
	ci.vectorOnce.Do(func() {
		vecNS, _ := names.NewNamespace(names.KindNamespace, "__AS3__.vec")
		vc, err := NewClass(ci.domain, ClassDef{
			Name:    names.NewQName(vecNS, "Vector.<"+ci.name.Local()+">"),
			Tag:     TagVector,
			Parent:  CoreClasses().Object,
			IsFinal: true,
		})
		if err != nil {
			logger.Warn().Stringer("class", ci.name).Err(err).Msg("vector companion creation failed")
			return
		}
		ci.vectorClass = vc
	})
	return ci.vectorClass
}

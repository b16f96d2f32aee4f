package loader

import (
	"github.com/oxhq/avmcore/internal/config"
	"github.com/oxhq/avmcore/vm"
)

// ScriptLoaderOptions configures a script loader. A nil IncludePatterns
// falls back to the process configuration.
type ScriptLoaderOptions struct {
	// HideParentDefinitions lets script globals hide same-named globals of
	// ancestor domains.
	HideParentDefinitions bool

	// Zone is the execution zone new per-class objects belong to; nil uses
	// the default zone.
	Zone *vm.Zone

	// IncludePatterns filters which definitions the loader accepts, as
	// doublestar globs over the name's String form with dots as slashes
	// (e.g. "demo/app::Main").
	IncludePatterns []string
}

// ScriptLoader is the entry point the bytecode pipeline drives to populate
// a domain. Compilation is external to this package; the loader owns the
// domain plumbing and its invariants, chiefly that bytecode never loads
// into the system domain.
type ScriptLoader struct {
	domain *vm.ApplicationDomain
	opts   ScriptLoaderOptions
}

// CreateScriptLoader builds a loader for domain. Loading bytecode into the
// system domain is forbidden.
func CreateScriptLoader(domain *vm.ApplicationDomain, opts ScriptLoaderOptions) (*ScriptLoader, error) {
	if domain == nil {
		return nil, vm.ErrArgumentNull.New("domain")
	}
	if domain.IsSystem() {
		return nil, vm.ErrLoadIntoSystemDomain.New()
	}
	if opts.IncludePatterns == nil {
		opts.IncludePatterns = config.Load().IncludePatterns
	}
	if opts.Zone == nil {
		opts.Zone = vm.DefaultZone()
	}
	return &ScriptLoader{domain: domain, opts: opts}, nil
}

// Domain returns the loader's target domain.
func (l *ScriptLoader) Domain() *vm.ApplicationDomain { return l.domain }

// Zone returns the loader's execution zone.
func (l *ScriptLoader) Zone() *vm.Zone { return l.opts.Zone }

// DefineGlobal installs a script-level trait into the target domain under
// the loader's hiding policy. A trait whose name matches none of the include
// patterns is skipped and nil is returned.
func (l *ScriptLoader) DefineGlobal(tr vm.Trait) error {
	if tr == nil {
		return vm.ErrArgumentNull.New("trait")
	}
	if !matchesAny(globPath(tr.Name().String()), l.opts.IncludePatterns) {
		log.Debug().Stringer("name", tr.Name()).Msg("definition filtered out")
		return nil
	}
	return l.domain.TryDefineGlobalTrait(tr, l.opts.HideParentDefinitions)
}

// DefineClass registers a class definition in the target domain and
// installs it as a global through DefineGlobal; a class filtered out by the
// include patterns is returned without being installed.
func (l *ScriptLoader) DefineClass(def vm.ClassDef) (*vm.Class, error) {
	cls, err := vm.NewClass(l.domain, def)
	if err != nil {
		return nil, err
	}
	if err := l.DefineGlobal(cls); err != nil {
		return nil, err
	}
	return cls, nil
}

func globPath(qname string) string {
	out := make([]byte, len(qname))
	for i := 0; i < len(qname); i++ {
		if qname[i] == '.' {
			out[i] = '/'
		} else {
			out[i] = qname[i]
		}
	}
	return string(out)
}

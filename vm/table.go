package vm

import (
	"hash/fnv"
	"sort"

	"github.com/oxhq/avmcore/metrics"
	"github.com/oxhq/avmcore/names"
)

type tableState uint8

const (
	tableBuilding tableState = iota
	tableSealed
	tableCorrupted
)

// Index views: one chained-hash view per (scope x qualification).
const (
	idxInstanceQual = iota
	idxInstanceUnqual
	idxStaticQual
	idxStaticUnqual
	idxViews
)

// traitIndex is one chained-hash view into the slot array. heads is sized to
// a prime bucket count; hashes and next run parallel to the slots.
type traitIndex struct {
	heads  []int32
	hashes []uint32
	next   []int32
}

func (ix *traitIndex) reset(buckets int) {
	ix.heads = make([]int32, buckets)
	for i := range ix.heads {
		ix.heads[i] = -1
	}
	ix.hashes = ix.hashes[:0]
	ix.next = ix.next[:0]
}

// link prepends slot to its hash chain, so the chain runs from the most
// recently inserted entry backwards.
func (ix *traitIndex) link(slot int, hash uint32) {
	for len(ix.hashes) <= slot {
		ix.hashes = append(ix.hashes, 0)
		ix.next = append(ix.next, -1)
	}
	b := int(hash % uint32(len(ix.heads)))
	ix.hashes[slot] = hash
	ix.next[slot] = ix.heads[b]
	ix.heads[b] = int32(slot)
}

// chain returns the head of the bucket for hash, or -1.
func (ix *traitIndex) chain(hash uint32) int32 {
	if len(ix.heads) == 0 {
		return -1
	}
	return ix.heads[hash%uint32(len(ix.heads))]
}

// TraitTable stores the declarations visible at a class or at a domain's
// global scope. A single append-only slot array holds the traits; four
// chained-hash views (instance/static x qualified/unqualified) index it.
//
// A table is mutable while its owning class initialises and sealed
// afterwards. Sealing partitions the slots so that inherited instance traits
// come first, then instance traits declared by the owner, then statics, with
// the instance partition in base-before-derived order.
type TraitTable struct {
	owner  *Class             // nil for a domain's global table
	domain *ApplicationDomain // set for global tables

	slots   []Trait
	idx     [idxViews]traitIndex
	buckets int
	state   tableState

	fenceDeclared int
	fenceStatic   int
}

// NewTraitTable creates an empty table owned by class (which may be nil for
// a global table).
func NewTraitTable(owner *Class, domain *ApplicationDomain) *TraitTable {
	t := &TraitTable{owner: owner, domain: domain, buckets: bucketPrimes[0]}
	for i := range t.idx {
		t.idx[i].reset(t.buckets)
	}
	return t
}

// Owner returns the owning class, or nil for a global table.
func (t *TraitTable) Owner() *Class { return t.owner }

// Len returns the number of traits in the table.
func (t *TraitTable) Len() int { return len(t.slots) }

// IsSealed reports whether the table has been sealed.
func (t *TraitTable) IsSealed() bool { return t.state == tableSealed }

// IsCorrupted reports whether an earlier merge failure poisoned the table.
func (t *TraitTable) IsCorrupted() bool { return t.state == tableCorrupted }

func (t *TraitTable) markCorrupted() { t.state = tableCorrupted }

func (t *TraitTable) ownerName() string {
	if t.owner != nil {
		return t.owner.Name().String()
	}
	return "<global>"
}

func localHash(local string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(local))
	return h.Sum32()
}

// viewsFor returns the qualified and unqualified view indices for a trait's
// scope.
func viewsFor(static bool) (qual, unqual int) {
	if static {
		return idxStaticQual, idxStaticUnqual
	}
	return idxInstanceQual, idxInstanceUnqual
}

// scopeOf classifies a slot for scope filtering. Globals count as declared.
func (t *TraitTable) scopeOf(tr Trait) TraitScope {
	if tr.IsStatic() {
		return ScopeStatic
	}
	if t.owner == nil || tr.DeclaringClass() == t.owner {
		return ScopeInstanceDeclared
	}
	return ScopeInstanceInherited
}

// TryAddTrait inserts a trait. It fails when the table is sealed or
// corrupted, and on a qualified-name collision unless allowMergeProperties
// is set and both the existing and the new trait are properties whose
// accessor roles do not conflict; in that case the two merge in place.
func (t *TraitTable) TryAddTrait(tr Trait, allowMergeProperties bool) error {
	switch t.state {
	case tableCorrupted:
		return ErrTraitTableCorrupted.New(t.ownerName())
	case tableSealed:
		return ErrTraitTableSealed.New(t.ownerName())
	}
	if tr == nil {
		return ErrArgumentNull.New("trait")
	}
	name := tr.Name()
	if !name.HasLocal() || name.Namespace().IsAny() {
		return ErrArgumentOutOfRange.New("trait.name", name)
	}

	if existing, i := t.findExact(name); existing != nil {
		if !allowMergeProperties {
			return ErrDuplicateTrait.New(name)
		}
		ep, eok := existing.(*PropertyTrait)
		np, nok := tr.(*PropertyTrait)
		if !eok || !nok || !ep.CanMergeWith(np) {
			return ErrDuplicateTrait.New(name)
		}
		t.slots[i] = ep.mergedWith(np)
		return nil
	}

	t.appendSlot(tr)
	return nil
}

func (t *TraitTable) appendSlot(tr Trait) {
	slot := len(t.slots)
	t.slots = append(t.slots, tr)
	if len(t.slots) >= t.buckets {
		t.rebuildIndexes(nextPrime(2 * len(t.slots)))
		return
	}
	t.linkSlot(slot)
}

func (t *TraitTable) linkSlot(slot int) {
	tr := t.slots[slot]
	qual, unqual := viewsFor(tr.IsStatic())
	t.idx[qual].link(slot, tr.Name().Hash())
	t.idx[unqual].link(slot, localHash(tr.Name().Local()))
}

// rebuildIndexes relinks every view in slot order, so chains end up running
// from the highest slot (the most derived declarer once sealed) backwards.
func (t *TraitTable) rebuildIndexes(buckets int) {
	t.buckets = buckets
	for i := range t.idx {
		t.idx[i].reset(buckets)
	}
	for slot := range t.slots {
		t.linkSlot(slot)
	}
}

// findExact locates a trait by exact qualified name in either scope.
func (t *TraitTable) findExact(name names.QName) (Trait, int) {
	hash := name.Hash()
	for _, view := range [2]int{idxInstanceQual, idxStaticQual} {
		ix := &t.idx[view]
		for s := ix.chain(hash); s >= 0; s = ix.next[s] {
			if ix.hashes[s] == hash && t.slots[s].Name() == name {
				return t.slots[s], int(s)
			}
		}
	}
	return nil, -1
}

// TryGetTrait resolves an exact qualified name against the table. An "any"
// namespace searches the unqualified view with the ambiguity rules; a public
// namespace takes the unqualified fast path and only checks the public flag
// of each candidate; anything else uses the qualified view.
//
// Before sealing the Ambiguous result is unreliable: a later merge may
// resolve or introduce ambiguity.
func (t *TraitTable) TryGetTrait(name names.QName, scopes TraitScope) (BindStatus, Trait) {
	st, tr := t.lookupQName(name, scopes)
	metrics.TraitLookups.WithLabelValues(st.String()).Inc()
	return st, tr
}

func (t *TraitTable) lookupQName(name names.QName, scopes TraitScope) (BindStatus, Trait) {
	if !name.HasLocal() {
		return t.scanWildcard(name.Namespace(), scopes)
	}
	ns := name.Namespace()
	switch {
	case ns.IsAny():
		return t.scanUnqualified(name.Local(), scopes, func(Trait) bool { return true })
	case ns.IsPublic():
		return t.scanUnqualified(name.Local(), scopes, func(tr Trait) bool {
			return tr.Name().Namespace().IsPublic()
		})
	default:
		tr, _ := t.findExactScoped(name, scopes)
		if tr == nil {
			return BindNotFound, nil
		}
		return BindSuccess, tr
	}
}

// TryGetTraitNS resolves a local name against a namespace set, applying the
// ambiguity rules across every candidate whose namespace is in the set.
func (t *TraitTable) TryGetTraitNS(local string, set *names.NamespaceSet, scopes TraitScope) (BindStatus, Trait) {
	if set == nil {
		return BindNotFound, nil
	}
	st, tr := t.scanUnqualified(local, scopes, func(tr Trait) bool {
		return set.Contains(tr.Name().Namespace())
	})
	metrics.TraitLookups.WithLabelValues(st.String()).Inc()
	return st, tr
}

func (t *TraitTable) findExactScoped(name names.QName, scopes TraitScope) (Trait, int) {
	hash := name.Hash()
	for _, view := range [2]int{idxInstanceQual, idxStaticQual} {
		if view == idxInstanceQual && scopes&ScopeInstance == 0 {
			continue
		}
		if view == idxStaticQual && scopes&ScopeStatic == 0 {
			continue
		}
		ix := &t.idx[view]
		for s := ix.chain(hash); s >= 0; s = ix.next[s] {
			if ix.hashes[s] != hash || t.slots[s].Name() != name {
				continue
			}
			if scopes&t.scopeOf(t.slots[s]) == 0 {
				continue
			}
			return t.slots[s], int(s)
		}
	}
	return nil, -1
}

// scanUnqualified walks the unqualified chains for local, filtering with
// accept, and folds the candidates through the ambiguity rules.
func (t *TraitTable) scanUnqualified(local string, scopes TraitScope, accept func(Trait) bool) (BindStatus, Trait) {
	hash := localHash(local)
	cs := candidateSet{table: t}
	for _, view := range [2]int{idxInstanceUnqual, idxStaticUnqual} {
		if view == idxInstanceUnqual && scopes&ScopeInstance == 0 {
			continue
		}
		if view == idxStaticUnqual && scopes&ScopeStatic == 0 {
			continue
		}
		ix := &t.idx[view]
		for s := ix.chain(hash); s >= 0; s = ix.next[s] {
			tr := t.slots[s]
			if ix.hashes[s] != hash || tr.Name().Local() != local {
				continue
			}
			if scopes&t.scopeOf(tr) == 0 || !accept(tr) {
				continue
			}
			if cs.add(tr) {
				break
			}
		}
		if cs.stopped {
			break
		}
	}
	return cs.result()
}

// scanWildcard handles lookups with an absent local name: every trait in the
// requested namespace is a candidate.
func (t *TraitTable) scanWildcard(ns names.Namespace, scopes TraitScope) (BindStatus, Trait) {
	cs := candidateSet{table: t}
	for _, tr := range t.slots {
		if scopes&t.scopeOf(tr) == 0 {
			continue
		}
		if !ns.IsAny() && tr.Name().Namespace() != ns {
			continue
		}
		if cs.add(tr) {
			break
		}
	}
	return cs.result()
}

// candidateSet folds lookup candidates through the ambiguity rules. Chains
// in a sealed table are traversed most-derived first, which is what makes
// "first candidate wins" correct for non-interface classes.
type candidateSet struct {
	table     *TraitTable
	best      Trait
	ambiguous bool
	stopped   bool
}

func sameDeclarer(a, b Trait) bool {
	if a.DeclaringClass() != b.DeclaringClass() {
		return false
	}
	if a.DeclaringClass() == nil {
		return a.Domain() == b.Domain()
	}
	return true
}

// add folds one candidate in and reports whether scanning can stop.
func (c *candidateSet) add(tr Trait) bool {
	if c.best == nil {
		// Scanning continues even in a sealed table: a same-class
		// duplicate sits right behind the first candidate in the chain.
		c.best = tr
		return false
	}
	if sameDeclarer(c.best, tr) {
		c.ambiguous = true
		c.stopped = true
		return true
	}

	a, b := c.best.DeclaringClass(), tr.DeclaringClass()
	if c.table.state == tableSealed {
		if c.table.owner == nil || !c.table.owner.IsInterface() {
			// Chains run most-derived first, so a candidate from a
			// different class is shadowed by the one already held.
			c.stopped = true
			return true
		}
		// Interface tables: candidates on unrelated branches of the
		// interface DAG are ambiguous; otherwise the more derived wins.
		switch {
		case a != nil && b != nil && a.AssignableTo(b):
			// best is the more derived or equal; keep it.
		case a != nil && b != nil && b.AssignableTo(a):
			c.best = tr
		default:
			c.ambiguous = true
			c.stopped = true
			return true
		}
		return false
	}

	// Unsealed: resolve by assignability where possible, otherwise mark
	// ambiguous and keep scanning; a later, more derived match resolves it.
	switch {
	case a != nil && b != nil && a.AssignableTo(b) && a != b:
		// best already more derived
	case a != nil && b != nil && b.AssignableTo(a) && a != b:
		c.best = tr
		c.ambiguous = false
	default:
		c.ambiguous = true
	}
	return false
}

func (c *candidateSet) result() (BindStatus, Trait) {
	switch {
	case c.ambiguous:
		return BindAmbiguous, nil
	case c.best == nil:
		return BindNotFound, nil
	default:
		return BindSuccess, c.best
	}
}

// MergeWithParentClass folds the sealed parent table's instance traits into
// this one. A name conflict with a declared trait resolves by property
// merging, by hiding when allowHiding is set, or by the override discipline;
// anything else corrupts the table.
func (t *TraitTable) MergeWithParentClass(parent *TraitTable, allowHiding bool) error {
	if t.state == tableCorrupted {
		return ErrTraitTableCorrupted.New(t.ownerName())
	}
	if t.state == tableSealed {
		return ErrTraitTableSealed.New(t.ownerName())
	}
	for _, ptr := range parent.instanceSlots() {
		err := t.TryAddTrait(ptr, true)
		if err == nil {
			continue
		}
		if !ErrDuplicateTrait.Is(err) {
			return err
		}
		declared, idx := t.findExact(ptr.Name())

		if allowHiding {
			dp, dok := declared.(*PropertyTrait)
			pp, pok := ptr.(*PropertyTrait)
			if dok && pok {
				// The child hides the accessors it declares and keeps the
				// ones only the parent provides.
				t.slots[idx] = dp.mergedWith(pp)
			}
			continue
		}

		if legalOverride(declared, ptr) {
			continue
		}
		t.markCorrupted()
		return ErrNameConflictInClass.New(ptr.Name(), t.ownerName())
	}
	return nil
}

// legalOverride reports whether declared may replace the inherited trait:
// an override-marked method of the same shape, or a property every one of
// whose inherited accessors is overridden by a matching override-marked
// accessor.
func legalOverride(declared, inherited Trait) bool {
	if dm, ok := declared.(*MethodTrait); ok {
		im, ok2 := inherited.(*MethodTrait)
		return ok2 && dm.override && dm.sig.Matches(im.sig)
	}
	dp, ok := declared.(*PropertyTrait)
	ip, ok2 := inherited.(*PropertyTrait)
	if !ok || !ok2 {
		return false
	}
	if ip.getter != nil {
		if dp.getter == nil || !dp.getter.override || !dp.getter.sig.Matches(ip.getter.sig) {
			return false
		}
	}
	if ip.setter != nil {
		if dp.setter == nil || !dp.setter.override || !dp.setter.sig.Matches(ip.setter.sig) {
			return false
		}
	}
	return true
}

// MergeWithParentInterface folds the declared instance traits of a sealed
// parent interface into this table. A repeated trait is dropped; a name
// conflict between distinct traits requires signature compatibility and
// keeps the trait already present.
func (t *TraitTable) MergeWithParentInterface(parent *TraitTable) error {
	if t.state == tableCorrupted {
		return ErrTraitTableCorrupted.New(t.ownerName())
	}
	if t.state == tableSealed {
		return ErrTraitTableSealed.New(t.ownerName())
	}
	for _, ptr := range parent.declaredInstanceSlots() {
		existing, _ := t.findExact(ptr.Name())
		if existing == nil {
			if err := t.TryAddTrait(ptr, false); err != nil {
				return err
			}
			continue
		}
		if existing == ptr {
			continue
		}
		if !interfaceSignatureCompatible(existing, ptr) {
			t.markCorrupted()
			return ErrInterfaceTraitSignatureMismatch.New(ptr.Name(), t.ownerName())
		}
	}
	return nil
}

// interfaceSignatureCompatible reports whether two traits inherited under
// the same name have compatible shapes: both methods with matching
// signatures, or both properties whose accessors match recursively.
func interfaceSignatureCompatible(a, b Trait) bool {
	if am, ok := a.(*MethodTrait); ok {
		bm, ok2 := b.(*MethodTrait)
		return ok2 && am.sig.Matches(bm.sig)
	}
	if ap, ok := a.(*PropertyTrait); ok {
		bp, ok2 := b.(*PropertyTrait)
		return ok2 && ap.signatureCompatible(bp)
	}
	return false
}

// instanceSlots returns the instance traits. On a sealed table that is the
// leading partition; otherwise it filters.
func (t *TraitTable) instanceSlots() []Trait {
	if t.state == tableSealed {
		return t.slots[:t.fenceStatic]
	}
	out := make([]Trait, 0, len(t.slots))
	for _, tr := range t.slots {
		if !tr.IsStatic() {
			out = append(out, tr)
		}
	}
	return out
}

// declaredInstanceSlots returns the instance traits declared by the owner.
func (t *TraitTable) declaredInstanceSlots() []Trait {
	if t.state == tableSealed {
		return t.slots[t.fenceDeclared:t.fenceStatic]
	}
	out := make([]Trait, 0, len(t.slots))
	for _, tr := range t.slots {
		if !tr.IsStatic() && t.scopeOf(tr) == ScopeInstanceDeclared {
			out = append(out, tr)
		}
	}
	return out
}

// Seal finalises the table: instance traits before statics, the instance
// partition in base-before-derived declarer order, fences recorded, links
// rebuilt. Sealing twice is a no-op.
func (t *TraitTable) Seal() error {
	if t.state == tableSealed {
		return nil
	}
	if t.state == tableCorrupted {
		return ErrTraitTableCorrupted.New(t.ownerName())
	}

	ord := t.declarerOrdinals()
	rank := func(tr Trait) int {
		if c := tr.DeclaringClass(); c != nil {
			return ord[c]
		}
		return 0
	}
	sort.SliceStable(t.slots, func(i, j int) bool {
		a, b := t.slots[i], t.slots[j]
		if a.IsStatic() != b.IsStatic() {
			return !a.IsStatic()
		}
		if a.IsStatic() {
			return false
		}
		return rank(a) < rank(b)
	})

	t.fenceStatic = len(t.slots)
	for i, tr := range t.slots {
		if tr.IsStatic() {
			t.fenceStatic = i
			break
		}
	}
	t.fenceDeclared = t.fenceStatic
	for i := 0; i < t.fenceStatic; i++ {
		if t.owner == nil || t.slots[i].DeclaringClass() == t.owner {
			t.fenceDeclared = i
			break
		}
	}

	t.assignFieldSlots()
	t.rebuildIndexes(nextPrime(max(2*len(t.slots), bucketPrimes[0])))
	t.state = tableSealed
	return nil
}

// assignFieldSlots numbers the instance field slots in canonical order.
// Inherited fields keep the index their declaring class assigned; the
// base-first canonical order makes the numbering agree across the chain.
// Static fields declared by the owner are numbered independently.
func (t *TraitTable) assignFieldSlots() {
	n := 0
	for i := 0; i < t.fenceStatic; i++ {
		f, ok := t.slots[i].(*FieldTrait)
		if !ok {
			continue
		}
		if t.owner == nil || f.DeclaringClass() == t.owner {
			f.slot = n
		}
		n++
	}
	sn := 0
	for i := t.fenceStatic; i < len(t.slots); i++ {
		f, ok := t.slots[i].(*FieldTrait)
		if !ok {
			continue
		}
		if t.owner == nil || f.DeclaringClass() == t.owner {
			f.slot = sn
		}
		sn++
	}
}

// instanceFieldCount returns the number of instance field slots, used to
// size the slot arrays of new objects.
func (t *TraitTable) instanceFieldCount() int {
	n := 0
	for _, tr := range t.slots {
		if _, ok := tr.(*FieldTrait); ok && !tr.IsStatic() {
			n++
		}
	}
	return n
}

// declarerOrdinals computes the base-before-derived ordering of declaring
// classes. For a linear chain that is the inheritance depth; for an
// interface it is a parents-first DFS of the implemented-interface DAG.
func (t *TraitTable) declarerOrdinals() map[*Class]int {
	ord := make(map[*Class]int)
	if t.owner == nil {
		return ord
	}
	if !t.owner.IsInterface() {
		depth := 0
		for c := t.owner; c != nil; c = c.Parent() {
			depth++
		}
		for c, i := t.owner, depth-1; c != nil; c, i = c.Parent(), i-1 {
			ord[c] = i
		}
		return ord
	}
	n := 0
	var visit func(*Class)
	visit = func(c *Class) {
		if _, seen := ord[c]; seen {
			return
		}
		// Reserve before descending so a cycle cannot recurse forever.
		ord[c] = -1
		for _, p := range c.DeclaredInterfaces() {
			visit(p)
		}
		ord[c] = n
		n++
	}
	visit(t.owner)
	return ord
}

// GetTraits returns the traits matching the kind and scope filters. On a
// sealed table a contiguous scope range with no kind filter is returned as a
// view of the slot array without scanning; every other combination scans.
func (t *TraitTable) GetTraits(kinds TraitKind, scopes TraitScope) []Trait {
	if t.state == tableSealed && kinds == TraitAny {
		if lo, hi, ok := t.scopeRange(scopes); ok {
			return t.slots[lo:hi:hi]
		}
	}
	out := make([]Trait, 0, len(t.slots))
	for _, tr := range t.slots {
		if kinds&tr.Kind() == 0 || scopes&t.scopeOf(tr) == 0 {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// scopeRange maps a scope mix onto a contiguous slot range when one exists.
// Static plus inherited-instance without declared-instance is the one
// non-contiguous mix.
func (t *TraitTable) scopeRange(scopes TraitScope) (lo, hi int, ok bool) {
	switch scopes {
	case ScopeAll:
		return 0, len(t.slots), true
	case ScopeInstance:
		return 0, t.fenceStatic, true
	case ScopeInstanceInherited:
		return 0, t.fenceDeclared, true
	case ScopeInstanceDeclared:
		return t.fenceDeclared, t.fenceStatic, true
	case ScopeStatic:
		return t.fenceStatic, len(t.slots), true
	case ScopeInstanceDeclared | ScopeStatic:
		return t.fenceDeclared, len(t.slots), true
	default:
		return 0, 0, false
	}
}

package names

// NamespaceSet is an immutable, deduplicated sequence of namespaces used
// during multiname lookup. Membership-by-kind and the public test are O(1)
// through a summary bitfield; first-seen order is preserved for iteration.
type NamespaceSet struct {
	list  []Namespace
	flags uint16
}

// publicBit marks a set that contains the public namespace. Kind bits occupy
// the low positions, one per NamespaceKind.
const publicBit = 1 << 15

// NewNamespaceSet builds a set from the given namespaces, dropping duplicates
// while keeping the first occurrence of each.
func NewNamespaceSet(nss ...Namespace) *NamespaceSet {
	s := &NamespaceSet{list: make([]Namespace, 0, len(nss))}
	for _, ns := range nss {
		if s.Contains(ns) {
			continue
		}
		s.list = append(s.list, ns)
		s.flags |= 1 << ns.Kind()
		if ns.IsPublic() {
			s.flags |= publicBit
		}
	}
	return s
}

// Len returns the number of namespaces in the set.
func (s *NamespaceSet) Len() int { return len(s.list) }

// At returns the namespace at position i in first-seen order.
func (s *NamespaceSet) At(i int) Namespace { return s.list[i] }

// Contains reports whether ns is a member of the set.
func (s *NamespaceSet) Contains(ns Namespace) bool {
	if s.flags&(1<<ns.Kind()) == 0 {
		return false
	}
	for _, m := range s.list {
		if m == ns {
			return true
		}
	}
	return false
}

// ContainsKind reports whether any member has the given kind.
func (s *NamespaceSet) ContainsKind(kind NamespaceKind) bool {
	return s.flags&(1<<kind) != 0
}

// ContainsPublic reports whether the public namespace is a member.
func (s *NamespaceSet) ContainsPublic() bool {
	return s.flags&publicBit != 0
}

// Namespaces returns the members in first-seen order. The returned slice is
// shared; callers must not modify it.
func (s *NamespaceSet) Namespaces() []Namespace { return s.list }

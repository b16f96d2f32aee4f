package names

import (
	"hash/fnv"
	"strings"
)

// QName is a fully qualified name: a namespace plus a local name.
//
// The local name may be absent. An absent local name is the "any name" used
// as a wildcard during lookups; it is distinct from the empty local name.
// The zero QName is the any name in the any namespace.
type QName struct {
	ns       Namespace
	local    string
	hasLocal bool
}

// AnyName is the wildcard QName: any namespace, absent local name.
var AnyName = QName{}

// NewQName builds a QName from a namespace and a local name.
func NewQName(ns Namespace, local string) QName {
	return QName{ns: ns, local: local, hasLocal: true}
}

// AnyLocalQName builds a QName with an absent local name in the given
// namespace.
func AnyLocalQName(ns Namespace) QName {
	return QName{ns: ns}
}

// PublicName is shorthand for a public-namespace QName.
func PublicName(local string) QName {
	return NewQName(PublicNamespace, local)
}

// Namespace returns the qualifier.
func (q QName) Namespace() Namespace { return q.ns }

// Local returns the local name, or the empty string when absent.
func (q QName) Local() string { return q.local }

// HasLocal reports whether the local name is present.
func (q QName) HasLocal() bool { return q.hasLocal }

// IsAny reports whether both components are wildcards.
func (q QName) IsAny() bool { return q.ns.IsAny() && !q.hasLocal }

// Hash returns a hash consistent with ==.
func (q QName) Hash() uint32 {
	h := fnv.New32a()
	if q.hasLocal {
		h.Write([]byte(q.local))
	}
	return h.Sum32() ^ q.ns.Hash()
}

// String renders the name so that ParseQName can read it back for public,
// any and URI namespaces whose URI contains no "::". An absent local name
// renders as "*", which ParseQName reads back as the local name "*".
func (q QName) String() string {
	local := q.local
	if !q.hasLocal {
		local = "*"
	}
	switch {
	case q.ns.IsPublic():
		return local
	case q.ns.Kind() == KindAny:
		return "*::" + local
	default:
		return q.ns.String() + "::" + local
	}
}

// ParseQName converts a source-form name into a QName. hasInput=false stands
// in for a null input and yields the any name.
//
// Rules, in order: empty input is the empty public name; a lone "*" is the
// any-namespace name with local "*"; "ns::local" splits at the last "::"
// with "*" on the left meaning the any namespace; "pkg.local" splits at the
// last dot not immediately followed by "<", so "Vector.<int>" stays a single
// public local name; anything else is a public local name.
func ParseQName(s string, hasInput bool) QName {
	if !hasInput {
		return AnyName
	}
	if s == "" {
		return PublicName("")
	}
	if s == "*" {
		return NewQName(AnyNamespace, "*")
	}
	if i := strings.LastIndex(s, "::"); i >= 0 {
		uri, local := s[:i], s[i+2:]
		if uri == "*" {
			return NewQName(AnyNamespace, local)
		}
		ns, _ := NewNamespace(KindNamespace, uri)
		return NewQName(ns, local)
	}
	if i := lastPackageDot(s); i >= 0 {
		ns, _ := NewNamespace(KindNamespace, s[:i])
		return NewQName(ns, s[i+1:])
	}
	return PublicName(s)
}

// MustParseQName is ParseQName for non-null input.
func MustParseQName(s string) QName {
	return ParseQName(s, true)
}

// lastPackageDot finds the last '.' in s that is not immediately followed by
// '<'. Returns -1 when there is none.
func lastPackageDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '.' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '<' {
			continue
		}
		return i
	}
	return -1
}

package names

import (
	"hash/fnv"
	"strconv"
	"sync/atomic"
)

// NamespaceKind classifies a namespace. The zero value is KindAny.
type NamespaceKind uint8

const (
	// KindAny is the wildcard namespace used in lookups. It has no URI.
	KindAny NamespaceKind = iota

	// KindNamespace is an ordinary URI namespace. The empty URI is the
	// public namespace.
	KindNamespace

	// KindPackageInternal scopes a name to its defining package.
	KindPackageInternal

	// KindProtected scopes a name to a class and its subclasses.
	KindProtected

	// KindExplicit is a namespace introduced by an explicit qualifier.
	KindExplicit

	// KindStaticProtected is the static counterpart of KindProtected.
	KindStaticProtected

	// KindPrivate scopes a name to its defining class. Private namespaces
	// carry a unique id instead of a URI.
	KindPrivate
)

// String returns the kind's name.
func (k NamespaceKind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNamespace:
		return "namespace"
	case KindPackageInternal:
		return "packageInternal"
	case KindProtected:
		return "protected"
	case KindExplicit:
		return "explicit"
	case KindStaticProtected:
		return "staticProtected"
	case KindPrivate:
		return "private"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// MaxPrivateID is the largest id a private namespace can carry.
const MaxPrivateID = 1<<28 - 1

// privateIDCounter hands out process-wide unique private namespace ids.
// The next id to allocate is the current value.
var privateIDCounter atomic.Uint32

// Namespace identifies a named scope. The zero value is the "any" namespace.
//
// Namespaces are comparable: for non-private kinds identity is (kind, URI);
// for private namespaces it is the id alone. The constructors keep the unused
// field at its zero value so that == implements exactly that rule.
type Namespace struct {
	kind NamespaceKind
	uri  string
	id   uint32
}

// AnyNamespace is the wildcard namespace singleton.
var AnyNamespace = Namespace{}

// PublicNamespace is the public namespace: kind KindNamespace, empty URI.
var PublicNamespace = Namespace{kind: KindNamespace}

// NewNamespace constructs a namespace of the given kind with the given URI.
// KindAny and KindPrivate are rejected; use AnyNamespace or NewPrivateNamespace.
func NewNamespace(kind NamespaceKind, uri string) (Namespace, error) {
	if kind == KindAny || kind == KindPrivate || kind > KindPrivate {
		return Namespace{}, ErrInvalidNamespaceKind.New(kind)
	}
	return Namespace{kind: kind, uri: uri}, nil
}

// NewPrivateNamespace allocates a fresh private namespace with a unique id.
// It fails once the 28-bit id space is exhausted.
func NewPrivateNamespace() (Namespace, error) {
	id := privateIDCounter.Add(1) - 1
	if id > MaxPrivateID {
		// Park the counter past the limit so later calls keep failing.
		privateIDCounter.Store(MaxPrivateID + 1)
		return Namespace{}, ErrPrivateNamespaceLimit.New(id)
	}
	return Namespace{kind: KindPrivate, id: id}, nil
}

// PrivateNamespace constructs a private namespace with a caller-supplied id.
// Two private namespaces with the same id are equal regardless of origin.
func PrivateNamespace(id uint32) (Namespace, error) {
	if id > MaxPrivateID {
		return Namespace{}, ErrPrivateNamespaceLimit.New(id)
	}
	return Namespace{kind: KindPrivate, id: id}, nil
}

// Kind returns the namespace kind.
func (n Namespace) Kind() NamespaceKind { return n.kind }

// URI returns the namespace URI. Private and "any" namespaces have none.
func (n Namespace) URI() string { return n.uri }

// PrivateID returns the id of a private namespace; zero otherwise.
func (n Namespace) PrivateID() uint32 { return n.id }

// IsAny reports whether this is the wildcard namespace.
func (n Namespace) IsAny() bool { return n.kind == KindAny }

// IsPublic reports whether this is the public namespace.
func (n Namespace) IsPublic() bool { return n.kind == KindNamespace && n.uri == "" }

// Hash returns a hash consistent with ==.
func (n Namespace) Hash() uint32 {
	h := fnv.New32a()
	h.Write([]byte{byte(n.kind)})
	if n.kind == KindPrivate {
		h.Write([]byte{byte(n.id), byte(n.id >> 8), byte(n.id >> 16), byte(n.id >> 24)})
	} else {
		h.Write([]byte(n.uri))
	}
	return h.Sum32()
}

// String renders the namespace in qualifier position.
func (n Namespace) String() string {
	switch n.kind {
	case KindAny:
		return "*"
	case KindPrivate:
		return "<private #" + strconv.FormatUint(uint64(n.id), 10) + ">"
	default:
		return n.uri
	}
}

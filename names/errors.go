package names

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidNamespaceKind is returned when a namespace is constructed
	// with a kind that requires a dedicated constructor.
	ErrInvalidNamespaceKind = errors.NewKind("namespace kind %s cannot be constructed from a URI")

	// ErrPrivateNamespaceLimit is returned when the private namespace id
	// space is exhausted or a supplied id does not fit in 28 bits.
	ErrPrivateNamespaceLimit = errors.NewKind("private namespace id %d exceeds the 28-bit limit")
)

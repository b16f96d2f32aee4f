package vm

import "github.com/oxhq/avmcore/names"

// BindStatus is the result of a resolution or invocation attempt. Failures
// are returned, not raised; BindError converts a status into the error kind a
// convenience operation must surface.
type BindStatus int

const (
	// BindNotFound means no candidate matched the name.
	BindNotFound BindStatus = iota

	// BindSuccess means the operation resolved and completed.
	BindSuccess

	// BindSoftSuccess means the operation resolved to a conventional
	// undefined value. Scope-stack searches treat it as a failure.
	BindSoftSuccess

	// BindAmbiguous means more than one permissible candidate matched.
	BindAmbiguous

	// BindFailedMethodConstruct means a construct was applied to a method.
	BindFailedMethodConstruct

	// BindFailedNotFunction means an invoke was applied to a non-callable.
	BindFailedNotFunction

	// BindFailedNotConstructor means a construct was applied to a value
	// that is not a constructor.
	BindFailedNotConstructor

	// BindFailedCreateDynamicNonPublic means a dynamic property creation
	// used a non-public namespace.
	BindFailedCreateDynamicNonPublic

	// BindFailedReadOnly means a write was applied to a read-only target.
	BindFailedReadOnly

	// BindFailedWriteOnly means a read was applied to a write-only target.
	BindFailedWriteOnly

	// BindFailedAssignMethod means a write was applied to a method trait.
	BindFailedAssignMethod

	// BindFailedAssignClass means a write was applied to a class trait.
	BindFailedAssignClass

	// BindFailedDescendantOp means the descendants operator was applied to
	// an object that does not support it.
	BindFailedDescendantOp
)

var bindStatusNames = map[BindStatus]string{
	BindNotFound:                     "notFound",
	BindSuccess:                      "success",
	BindSoftSuccess:                  "softSuccess",
	BindAmbiguous:                    "ambiguous",
	BindFailedMethodConstruct:        "failedMethodConstruct",
	BindFailedNotFunction:            "failedNotFunction",
	BindFailedNotConstructor:         "failedNotConstructor",
	BindFailedCreateDynamicNonPublic: "failedCreateDynamicNonPublic",
	BindFailedReadOnly:               "failedReadOnly",
	BindFailedWriteOnly:              "failedWriteOnly",
	BindFailedAssignMethod:           "failedAssignMethod",
	BindFailedAssignClass:            "failedAssignClass",
	BindFailedDescendantOp:           "failedDescendantOp",
}

func (s BindStatus) String() string {
	if n, ok := bindStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsSuccess reports whether the status carries a usable value.
func (s BindStatus) IsSuccess() bool {
	return s == BindSuccess || s == BindSoftSuccess
}

// BindError converts a non-success status into the error raised by
// convenience operations, using the fixed status-to-kind mapping. It returns
// nil for BindSuccess and BindSoftSuccess.
func BindError(s BindStatus, name names.QName) error {
	switch s {
	case BindSuccess, BindSoftSuccess:
		return nil
	case BindNotFound:
		return ErrPropertyNotFound.New(name)
	case BindAmbiguous:
		return ErrAmbiguousName.New(name)
	case BindFailedMethodConstruct:
		return ErrCannotCallMethodAsCtor.New(name)
	case BindFailedNotFunction:
		return ErrNotAFunction.New(name)
	case BindFailedNotConstructor:
		return ErrInstantiateNonConstructor.New(name)
	case BindFailedCreateDynamicNonPublic:
		return ErrCannotCreatePropertyNonPublic.New(name)
	case BindFailedReadOnly:
		return ErrIllegalWriteReadOnly.New(name)
	case BindFailedWriteOnly:
		return ErrIllegalReadWriteOnly.New(name)
	case BindFailedAssignMethod:
		return ErrCannotAssignToMethod.New(name)
	case BindFailedAssignClass:
		return ErrCannotAssignToClass.New(name)
	case BindFailedDescendantOp:
		return ErrDescendantsNotSupported.New(name)
	default:
		return ErrPropertyNotFound.New(name)
	}
}

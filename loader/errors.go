package loader

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNativeClassNotStruct is returned when the loaded type is not a
	// struct or pointer to struct.
	ErrNativeClassNotStruct = errors.NewKind("native class type %s is not a struct")

	// ErrNativeClassUnnamed is returned for anonymous types.
	ErrNativeClassUnnamed = errors.NewKind("native class type has no name")

	// ErrNativeClassNil is returned when the loaded value carries no type.
	ErrNativeClassNil = errors.NewKind("native class value is nil")

	// ErrNativeModuleNotStruct is returned when a native module value is
	// not a struct or pointer to struct.
	ErrNativeModuleNotStruct = errors.NewKind("native module %s is not a struct")

	// ErrAssemblyNil is returned when the assembly handle is nil.
	ErrAssemblyNil = errors.NewKind("assembly handle must not be nil")
)

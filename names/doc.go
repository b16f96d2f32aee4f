// Package names contains the value types that identify declarations in the
// virtual machine: namespaces, qualified names and namespace sets.
//
// All three types are immutable. Namespace and QName are values that are
// safe to copy, to compare with == and to use as map keys; their hash
// functions are consistent with their equality. NamespaceSet is used through
// a pointer and has neither == equality nor a hash.
package names

// Package vm implements the type system and name-resolution runtime of the
// virtual machine: traits, trait tables, classes, application domains and the
// binding contracts that connect them.
//
// The package is built around four pieces. A Trait is a single named
// declaration (field, method, property, constant or class). A TraitTable
// indexes the declarations visible at a class or at a domain's global scope
// and answers qualified, multiname and wildcard lookups with ambiguity
// detection. A Class lazily closes its record on first use: parent first,
// then interfaces, then its own declarations, then the inheritance merge and
// sealing. ApplicationDomains form a tree rooted at the system domain, with
// descendants shadowing ancestors during global lookup.
//
// Resolution results are reported as BindStatus values; errors are raised
// only by the convenience operations that must produce a value, and by class
// closure when a merge conflict poisons the class.
package vm

// Package loader exposes the runtime's loading surface: reflection-driven
// native class and module loading, and the script-loader entry point used by
// the bytecode pipeline. The bytecode compiler itself lives elsewhere; this
// package owns the domain plumbing and the rejection taxonomy.
package loader

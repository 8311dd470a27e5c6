// Package vm implements the Kestrel object model.
//
// This package contains:
//   - NaN-boxed value representation
//   - Canonical string pool with preloaded well-known identifiers
//   - Namespace, multiname and qualified-name resolution
//   - Class metadata and vtable-based method dispatch
//   - Base object slot/dynamic-property storage
//   - The proxy meta-object dispatcher
package vm

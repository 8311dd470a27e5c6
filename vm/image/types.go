// Package image implements the Kestrel class-metadata image format.
//
// An image is a CBOR snapshot of a VM's class definitions (names,
// namespaces, sealed flags, trait variables, method qualified names) plus
// the string pool contents, encoded canonically so identical VM states
// produce identical bytes. Applying an image to a fresh VM recreates the
// class graph and pre-interns every name the dispatch path will touch.
// Method bodies are the compiler's concern and are not part of the format.
package image

import "github.com/kestrelvm/kestrel/vm"

// FormatVersion is the current image format version.
const FormatVersion uint32 = 1

// NamespaceDef is the serialized form of a namespace.
type NamespaceDef struct {
	Kind uint8  `cbor:"1,keyasint"`
	URI  string `cbor:"2,keyasint,omitempty"`
}

// MethodDef records one method's qualified name on a class.
type MethodDef struct {
	Namespace NamespaceDef `cbor:"1,keyasint"`
	Name      string       `cbor:"2,keyasint"`
}

// ClassDef is the serialized metadata for one class.
type ClassDef struct {
	Name       string      `cbor:"1,keyasint"`
	Superclass string      `cbor:"2,keyasint,omitempty"`
	Sealed     bool        `cbor:"3,keyasint,omitempty"`
	Proxy      bool        `cbor:"4,keyasint,omitempty"`
	InstVars   []string    `cbor:"5,keyasint,omitempty"`
	Methods    []MethodDef `cbor:"6,keyasint,omitempty"`
}

// Image is a complete class-metadata snapshot.
type Image struct {
	Version uint32     `cbor:"1,keyasint"`
	Pool    []string   `cbor:"2,keyasint,omitempty"` // string pool contents, ID order
	Classes []ClassDef `cbor:"3,keyasint,omitempty"`
}

// namespaceDef converts a runtime namespace to its serialized form.
func namespaceDef(v *vm.VM, ns vm.Namespace) NamespaceDef {
	d := NamespaceDef{Kind: uint8(ns.Kind)}
	if ns.Kind == vm.NsNamed || ns.Kind == vm.NsProxy {
		d.URI = v.Strings.Name(ns.URI)
	}
	return d
}

// runtimeNamespace converts a serialized namespace back, interning its URI.
func runtimeNamespace(v *vm.VM, d NamespaceDef) vm.Namespace {
	ns := vm.Namespace{Kind: vm.NamespaceKind(d.Kind)}
	if ns.Kind == vm.NsNamed || ns.Kind == vm.NsProxy {
		ns.URI = v.Strings.Intern(d.URI)
	}
	return ns
}

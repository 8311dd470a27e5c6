package vm

// ---------------------------------------------------------------------------
// Namespace: Qualifier for property names
// ---------------------------------------------------------------------------

// NamespaceKind identifies the variant of a Namespace.
type NamespaceKind uint8

const (
	// NsAny is the wildcard namespace ("*").
	NsAny NamespaceKind = iota
	// NsPublic is the default/public namespace.
	NsPublic
	// NsNamed is an explicitly named namespace with a URI.
	NsNamed
	// NsProxy is the reserved namespace that qualifies proxy delegate
	// method names. It is not reachable from script source, so delegate
	// names can never be shadowed by ordinary lookups.
	NsProxy
)

// Namespace distinguishes identically-named properties. The URI field is a
// string pool ID and is meaningful only for NsNamed.
type Namespace struct {
	Kind NamespaceKind
	URI  uint32
}

// AnyNamespace returns the wildcard namespace.
func AnyNamespace() Namespace {
	return Namespace{Kind: NsAny}
}

// PublicNamespace returns the default/public namespace.
func PublicNamespace() Namespace {
	return Namespace{Kind: NsPublic}
}

// NamedNamespace returns an explicitly named namespace for a pool URI.
func NamedNamespace(uri uint32) Namespace {
	return Namespace{Kind: NsNamed, URI: uri}
}

// IsAny returns true for the wildcard namespace.
func (ns Namespace) IsAny() bool {
	return ns.Kind == NsAny
}

// IsPublic returns true for the default/public namespace.
func (ns Namespace) IsPublic() bool {
	return ns.Kind == NsPublic
}

// IsNamed returns true for an explicitly named namespace.
func (ns Namespace) IsNamed() bool {
	return ns.Kind == NsNamed
}

// qualifiesForDelegation reports whether a namespace may be resolved into a
// QName for proxy delegation. Every script-reachable kind currently
// qualifies; the reserved proxy namespace does not, since it can only occur
// in multinames the VM builds itself.
func (ns Namespace) qualifiesForDelegation() bool {
	return ns.Kind == NsAny || ns.Kind == NsPublic || ns.Kind == NsNamed
}

// ---------------------------------------------------------------------------
// Multiname: Unresolved lookup key
// ---------------------------------------------------------------------------

// Multiname is an unresolved property-lookup key: an optional local name
// plus an ordered set of candidate namespaces. Order matters: the first
// qualifying namespace wins. Multinames are built by the caller per lookup
// and read-only to the dispatcher.
type Multiname struct {
	namespaces []Namespace
	name       uint32
	hasName    bool
}

// NewMultiname creates a multiname with a local name (a pool ID).
func NewMultiname(namespaces []Namespace, name uint32) *Multiname {
	return &Multiname{namespaces: namespaces, name: name, hasName: true}
}

// NewAnyNameMultiname creates a multiname with no local name.
func NewAnyNameMultiname(namespaces []Namespace) *Multiname {
	return &Multiname{namespaces: namespaces}
}

// LocalName returns the local name pool ID, and false if absent.
func (mn *Multiname) LocalName() (uint32, bool) {
	return mn.name, mn.hasName
}

// mustLocalName returns the local name pool ID.
// Panics if the multiname has no local name.
func (mn *Multiname) mustLocalName() uint32 {
	if !mn.hasName {
		panic("Multiname.mustLocalName: no local name")
	}
	return mn.name
}

// NamespaceSet returns the candidate namespaces in declared order.
// Callers must not mutate the returned slice.
func (mn *Multiname) NamespaceSet() []Namespace {
	return mn.namespaces
}

// ---------------------------------------------------------------------------
// QName: Resolved (namespace, local name) pair
// ---------------------------------------------------------------------------

// QName is a single resolved qualified name. It exists only for the
// duration of one delegation or lookup; it is never persisted.
type QName struct {
	Namespace Namespace
	Name      uint32
}

// NewQName creates a QName from a namespace and a local name pool ID.
func NewQName(ns Namespace, name uint32) QName {
	return QName{Namespace: ns, Name: name}
}

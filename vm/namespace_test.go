package vm

import "testing"

func TestNamespaceConstructors(t *testing.T) {
	if ns := AnyNamespace(); !ns.IsAny() || ns.IsPublic() || ns.IsNamed() {
		t.Errorf("AnyNamespace() = %+v", ns)
	}
	if ns := PublicNamespace(); !ns.IsPublic() || ns.IsAny() || ns.IsNamed() {
		t.Errorf("PublicNamespace() = %+v", ns)
	}
	if ns := NamedNamespace(7); !ns.IsNamed() || ns.URI != 7 {
		t.Errorf("NamedNamespace(7) = %+v", ns)
	}
}

func TestNamespaceEquality(t *testing.T) {
	if NamedNamespace(1) == NamedNamespace(2) {
		t.Error("named namespaces with different URIs must differ")
	}
	if NamedNamespace(3) != NamedNamespace(3) {
		t.Error("named namespaces with the same URI must be equal")
	}
	if PublicNamespace() != PublicNamespace() {
		t.Error("public namespaces must be equal")
	}
	if AnyNamespace() == PublicNamespace() {
		t.Error("wildcard and public namespaces must differ")
	}
}

func TestNamespaceQualifiesForDelegation(t *testing.T) {
	tests := []struct {
		ns   Namespace
		want bool
	}{
		{AnyNamespace(), true},
		{PublicNamespace(), true},
		{NamedNamespace(5), true},
		{Namespace{Kind: NsProxy, URI: 5}, false},
	}
	for _, tt := range tests {
		if got := tt.ns.qualifiesForDelegation(); got != tt.want {
			t.Errorf("%+v.qualifiesForDelegation() = %v, want %v", tt.ns, got, tt.want)
		}
	}
}

func TestMultinameLocalName(t *testing.T) {
	named := NewMultiname([]Namespace{PublicNamespace()}, 42)
	if id, ok := named.LocalName(); !ok || id != 42 {
		t.Errorf("LocalName() = %d, %v; want 42, true", id, ok)
	}
	if named.mustLocalName() != 42 {
		t.Error("mustLocalName should return the pool ID")
	}

	anon := NewAnyNameMultiname([]Namespace{PublicNamespace()})
	if _, ok := anon.LocalName(); ok {
		t.Error("LocalName on an anonymous multiname should report absent")
	}
}

func TestMultinameMustLocalNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustLocalName without a local name should panic")
		}
	}()
	NewAnyNameMultiname(nil).mustLocalName()
}

func TestMultinameNamespaceSetOrder(t *testing.T) {
	nss := []Namespace{NamedNamespace(2), AnyNamespace(), PublicNamespace()}
	mn := NewMultiname(nss, 1)

	got := mn.NamespaceSet()
	if len(got) != 3 {
		t.Fatalf("NamespaceSet() length = %d, want 3", len(got))
	}
	for i := range nss {
		if got[i] != nss[i] {
			t.Errorf("NamespaceSet()[%d] = %+v, want %+v (declared order preserved)", i, got[i], nss[i])
		}
	}
}

func TestQName(t *testing.T) {
	q := NewQName(NamedNamespace(9), 4)
	if q.Namespace.Kind != NsNamed || q.Namespace.URI != 9 || q.Name != 4 {
		t.Errorf("NewQName = %+v", q)
	}
}

func TestNameTableIntern(t *testing.T) {
	nt := NewNameTable()

	q := NewQName(PublicNamespace(), 3)
	id := nt.Intern(q)
	if again := nt.Intern(q); again != id {
		t.Errorf("Intern twice: %d then %d", id, again)
	}

	// Same local name in a different namespace is a different entry.
	other := nt.Intern(NewQName(NamedNamespace(1), 3))
	if other == id {
		t.Error("distinct namespaces should not share a qualified-name ID")
	}

	got, ok := nt.Name(id)
	if !ok || got != q {
		t.Errorf("Name(%d) = %+v, %v; want %+v, true", id, got, ok, q)
	}
}

func TestNameTableLookup(t *testing.T) {
	nt := NewNameTable()

	q := NewQName(PublicNamespace(), 8)
	if got := nt.Lookup(q); got != -1 {
		t.Errorf("Lookup before Intern = %d, want -1", got)
	}

	id := nt.Intern(q)
	if got := nt.Lookup(q); got != id {
		t.Errorf("Lookup after Intern = %d, want %d", got, id)
	}
}

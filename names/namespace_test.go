package names

import "testing"

func TestNewNamespaceRejectsSpecialKinds(t *testing.T) {
	for _, kind := range []NamespaceKind{KindAny, KindPrivate, KindPrivate + 1} {
		if _, err := NewNamespace(kind, "uri"); !ErrInvalidNamespaceKind.Is(err) {
			t.Errorf("NewNamespace(%v) error = %v, want invalid-kind", kind, err)
		}
	}
}

func TestNamespaceEquality(t *testing.T) {
	a, _ := NewNamespace(KindNamespace, "flash.display")
	b, _ := NewNamespace(KindNamespace, "flash.display")
	c, _ := NewNamespace(KindExplicit, "flash.display")
	d, _ := NewNamespace(KindNamespace, "flash.utils")

	if a != b {
		t.Error("namespaces with same kind and URI should be equal")
	}
	if a == c {
		t.Error("namespaces with different kinds should not be equal")
	}
	if a == d {
		t.Error("namespaces with different URIs should not be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal namespaces must hash equally")
	}
}

func TestPrivateNamespaceIdentity(t *testing.T) {
	a, err := PrivateNamespace(42)
	if err != nil {
		t.Fatalf("PrivateNamespace(42): %v", err)
	}
	b, _ := PrivateNamespace(42)
	if a != b {
		t.Error("private namespaces with the same id must be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal private namespaces must hash equally")
	}

	x, err := NewPrivateNamespace()
	if err != nil {
		t.Fatalf("NewPrivateNamespace: %v", err)
	}
	y, err := NewPrivateNamespace()
	if err != nil {
		t.Fatalf("NewPrivateNamespace: %v", err)
	}
	if x == y {
		t.Error("freshly created private namespaces must be distinct")
	}
}

func TestPrivateNamespaceBounds(t *testing.T) {
	if _, err := PrivateNamespace(0); err != nil {
		t.Errorf("id 0 should succeed, got %v", err)
	}
	if _, err := PrivateNamespace(MaxPrivateID); err != nil {
		t.Errorf("id 2^28-1 should succeed, got %v", err)
	}
	if _, err := PrivateNamespace(MaxPrivateID + 1); !ErrPrivateNamespaceLimit.Is(err) {
		t.Errorf("id 2^28 should fail with limit error, got %v", err)
	}
}

func TestPublicAndAnySingletons(t *testing.T) {
	if !PublicNamespace.IsPublic() {
		t.Error("PublicNamespace must be public")
	}
	if PublicNamespace.Kind() != KindNamespace || PublicNamespace.URI() != "" {
		t.Error("public namespace is the empty-URI Namespace kind")
	}
	if !AnyNamespace.IsAny() || AnyNamespace.Kind() != KindAny {
		t.Error("AnyNamespace must have the zero kind")
	}
	ns, _ := NewNamespace(KindNamespace, "u")
	if ns.IsPublic() {
		t.Error("a URI namespace is not public")
	}
}

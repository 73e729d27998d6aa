package signaling

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b := &Client{}, &Client{}

	if err := r.Register("A1", a); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("A1", b); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("duplicate Register err = %v, want ErrDuplicateIdentity", err)
	}
	if got, ok := r.Lookup("A1"); !ok || got != a {
		t.Fatalf("Lookup bound the wrong client")
	}

	r.Register("B1", b)
	if got := r.IDs(); !slices.Equal(got, []string{"A1", "B1"}) {
		t.Fatalf("IDs = %v", got)
	}

	r.Unregister("A1")
	r.Unregister("A1")
	r.Unregister("ghost")
	if _, ok := r.Lookup("A1"); ok {
		t.Fatalf("A1 still bound")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	// A freed id can be bound again.
	if err := r.Register("A1", b); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
}

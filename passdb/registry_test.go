package passdb

import "testing"

func TestOpenSharesHandleByPath(t *testing.T) {
	t.Parallel()

	h1, err := Open("/tmp/example.passwd")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h2, err := Open("/tmp/example.passwd")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if h1 != h2 {
		t.Fatalf("expected same handle for same path, got %p != %p", h1, h2)
	}
	if got := refcountFor("/tmp/example.passwd"); got != 2 {
		t.Fatalf("refcount = %d, want 2", got)
	}

	Close(h1)
	if got := refcountFor("/tmp/example.passwd"); got != 1 {
		t.Fatalf("refcount after one Close = %d, want 1", got)
	}

	Close(h2)
	if got := refcountFor("/tmp/example.passwd"); got != 0 {
		t.Fatalf("refcount after both Close = %d, want 0", got)
	}
}

func TestOpenDistinctPaths(t *testing.T) {
	t.Parallel()

	h1, _ := Open("/tmp/a.passwd")
	h2, _ := Open("/tmp/b.passwd")
	if h1 == h2 {
		t.Fatal("expected distinct handles for distinct paths")
	}
	Close(h1)
	Close(h2)
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

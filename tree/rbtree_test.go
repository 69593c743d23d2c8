package tree

import (
	"math/rand"
	"testing"

	"github.com/nomasters/mailtree/recordindex"
	"github.com/nomasters/mailtree/recordindex/fake"
)

func newAnonTestTree(t *testing.T, indexID uint32) *Tree {
	t.Helper()
	idx := fake.New(indexID)
	if err := idx.SetLock(recordindex.LockExclusive); err != nil {
		t.Fatalf("SetLock: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = Close(tr) })
	return tr
}

func TestTree_AnonymousRoundTrip1000(t *testing.T) {
	tr := newAnonTestTree(t, 1)

	const n = 1000
	order := rand.New(rand.NewSource(1)).Perm(n)

	for _, v := range order {
		uid := uint32(v + 1)
		if err := tr.Insert(uid, uid*7); err != nil {
			t.Fatalf("Insert(%d): %v", uid, err)
		}
	}

	for uid := uint32(1); uid <= n; uid++ {
		pos, err := tr.Lookup(uid)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", uid, err)
		}
		if pos != uid*7 {
			t.Errorf("Lookup(%d) = %d, want %d", uid, pos, uid*7)
		}
	}

	pairs, err := tr.InOrder()
	if err != nil {
		t.Fatalf("InOrder: %v", err)
	}
	if len(pairs) != n {
		t.Fatalf("InOrder returned %d pairs, want %d", len(pairs), n)
	}
	for i, p := range pairs {
		if p.UID != uint32(i+1) {
			t.Fatalf("InOrder not sorted at index %d: got uid %d", i, p.UID)
		}
	}
}

func TestTree_InsertLookupDeleteInterleaved(t *testing.T) {
	tr := newAnonTestTree(t, 2)

	uids := []uint32{50, 25, 75, 10, 30, 60, 90, 5, 15, 27, 33, 55, 65, 80, 95}
	for _, uid := range uids {
		if err := tr.Insert(uid, uid*2); err != nil {
			t.Fatalf("Insert(%d): %v", uid, err)
		}
	}

	toDelete := []uint32{25, 90, 50, 5}
	for _, uid := range toDelete {
		if err := tr.Delete(uid); err != nil {
			t.Fatalf("Delete(%d): %v", uid, err)
		}
	}

	deleted := map[uint32]bool{}
	for _, uid := range toDelete {
		deleted[uid] = true
	}

	for _, uid := range uids {
		pos, err := tr.Lookup(uid)
		if deleted[uid] {
			if err != ErrNotFound {
				t.Errorf("Lookup(%d) after delete = %v; want ErrNotFound", uid, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Lookup(%d): %v", uid, err)
		}
		if pos != uid*2 {
			t.Errorf("Lookup(%d) = %d, want %d", uid, pos, uid*2)
		}
	}

	pairs, err := tr.InOrder()
	if err != nil {
		t.Fatalf("InOrder: %v", err)
	}
	wantCount := len(uids) - len(toDelete)
	if len(pairs) != wantCount {
		t.Fatalf("InOrder returned %d pairs, want %d", len(pairs), wantCount)
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].UID >= pairs[i].UID {
			t.Fatalf("InOrder not strictly ascending at %d: %d >= %d",
				i, pairs[i-1].UID, pairs[i].UID)
		}
	}
}

func TestTree_DeleteMissingUIDReturnsNotFound(t *testing.T) {
	tr := newAnonTestTree(t, 3)

	if err := tr.Insert(1, 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tr.Delete(2); err != ErrNotFound {
		t.Fatalf("Delete(2) = %v; want ErrNotFound", err)
	}
}

func TestTree_DeleteRequiresExclusiveLock(t *testing.T) {
	idx := fake.New(4)
	_ = idx.SetLock(recordindex.LockExclusive)

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	if err := tr.Insert(1, 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_ = idx.SetLock(recordindex.LockShared)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic deleting without exclusive lock")
		}
	}()
	_ = tr.Delete(1)
}

func TestTree_LookupDoesNotRequireExclusiveLock(t *testing.T) {
	idx := fake.New(5)
	_ = idx.SetLock(recordindex.LockExclusive)

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	if err := tr.Insert(42, 420); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_ = idx.SetLock(recordindex.LockShared)
	if pos, err := tr.Lookup(42); err != nil || pos != 420 {
		t.Fatalf("Lookup under shared lock = %d, %v; want 420, nil", pos, err)
	}

	_ = idx.SetLock(recordindex.LockUnlocked)
	if pos, err := tr.Lookup(42); err != nil || pos != 420 {
		t.Fatalf("Lookup under no lock = %d, %v; want 420, nil", pos, err)
	}
}

func TestTree_InOrderEmptyTree(t *testing.T) {
	tr := newAnonTestTree(t, 6)

	pairs, err := tr.InOrder()
	if err != nil {
		t.Fatalf("InOrder: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("InOrder on empty tree returned %d pairs, want 0", len(pairs))
	}
}

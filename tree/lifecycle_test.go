package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nomasters/mailtree/recordindex"
	"github.com/nomasters/mailtree/recordindex/fake"
)

func mustTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "mailtree-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("RemoveAll: %v", err)
		}
	})
	return dir
}

func TestTree_CreateAnonymousBasicOperations(t *testing.T) {
	idx := fake.New(1)
	if err := idx.SetLock(recordindex.LockExclusive); err != nil {
		t.Fatalf("SetLock: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	if !tr.IsAnonymous() {
		t.Fatal("expected anonymous tree")
	}

	if err := tr.Insert(10, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tr.Insert(5, 50); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tr.Insert(20, 200); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	pos, err := tr.Lookup(10)
	if err != nil || pos != 100 {
		t.Fatalf("Lookup(10) = %d, %v; want 100, nil", pos, err)
	}

	if _, err := tr.Lookup(999); err != ErrNotFound {
		t.Fatalf("Lookup(999) err = %v; want ErrNotFound", err)
	}

	pairs, err := tr.InOrder()
	if err != nil {
		t.Fatalf("InOrder: %v", err)
	}
	wantUIDs := []uint32{5, 10, 20}
	if len(pairs) != len(wantUIDs) {
		t.Fatalf("InOrder returned %d pairs, want %d", len(pairs), len(wantUIDs))
	}
	for i, want := range wantUIDs {
		if pairs[i].UID != want {
			t.Errorf("pairs[%d].UID = %d, want %d", i, pairs[i].UID, want)
		}
	}
}

func TestTree_InsertDuplicateUIDPanics(t *testing.T) {
	idx := fake.New(1)
	_ = idx.SetLock(recordindex.LockExclusive)

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	if err := tr.Insert(1, 10); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate uid insert")
		}
	}()
	_ = tr.Insert(1, 20)
}

func TestTree_InsertRequiresExclusiveLock(t *testing.T) {
	idx := fake.New(1)
	_ = idx.SetLock(recordindex.LockExclusive)

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	_ = idx.SetLock(recordindex.LockShared)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic inserting without exclusive lock")
		}
	}()
	_ = tr.Insert(1, 10)
}

func TestTree_GrowthAcrossManyInserts(t *testing.T) {
	dir := mustTempDir(t)
	path := filepath.Join(dir, "mailbox.tree")

	idx := fake.New(42)
	_ = idx.SetLock(recordindex.LockExclusive)

	const n = 200
	idx.SetMessagesCount(n)

	tr, err := Create(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	for i := uint32(1); i <= n; i++ {
		if err := tr.Insert(i, i*10); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	for i := uint32(1); i <= n; i++ {
		pos, err := tr.Lookup(i)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", i, err)
		}
		if pos != i*10 {
			t.Errorf("Lookup(%d) = %d, want %d", i, pos, i*10)
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
			t.Fatalf("InOrder out of order at %d: got uid %d", i, p.UID)
		}
	}
}

func TestTree_DeleteTriggersTruncate(t *testing.T) {
	dir := mustTempDir(t)
	path := filepath.Join(dir, "mailbox.tree")

	idx := fake.New(7)
	_ = idx.SetLock(recordindex.LockExclusive)

	const n = 300
	idx.SetMessagesCount(n)

	tr, err := Create(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(tr)

	for i := uint32(1); i <= n; i++ {
		if err := tr.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	grownLength := tr.mmapFullLength

	idx.SetMessagesCount(0)
	for i := uint32(1); i < n; i++ {
		if err := tr.Delete(i); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
	}

	if tr.mmapFullLength >= grownLength {
		t.Fatalf("expected truncate to shrink file: before=%d after=%d", grownLength, tr.mmapFullLength)
	}

	pos, err := tr.Lookup(n)
	if err != nil || pos != n {
		t.Fatalf("Lookup(%d) = %d, %v; want %d, nil", n, pos, err, n)
	}
}

func TestTree_OpenOrCreateRebuildsOnCorruption(t *testing.T) {
	dir := mustTempDir(t)
	path := filepath.Join(dir, "mailbox.tree")

	idx := fake.New(3)
	_ = idx.SetLock(recordindex.LockExclusive)

	records := []fake.Record{
		fake.NewRecord(1, 100),
		fake.NewRecord(2, 200),
		fake.NewRecord(3, 300),
	}
	idx.Seed(records...)

	tr, err := Create(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Close(tr); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteAt([]byte("XXXXXXXX"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_ = idx.SetLock(recordindex.LockUnlocked)

	tr2, err := OpenOrCreate(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	defer Close(tr2)

	for _, r := range records {
		pos, err := tr2.Lookup(r.UID())
		if err != nil {
			t.Fatalf("Lookup(%d) after rebuild: %v", r.UID(), err)
		}
		if pos != r.Position() {
			t.Errorf("Lookup(%d) = %d, want %d", r.UID(), pos, r.Position())
		}
	}
}

func TestTree_OpenOrCreatePartialRecordRetriesUnderLock(t *testing.T) {
	dir := mustTempDir(t)
	path := filepath.Join(dir, "mailbox.tree")

	idx := fake.New(9)
	_ = idx.SetLock(recordindex.LockExclusive)

	tr, err := Create(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tr.Insert(1, 10); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := Close(tr); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-1); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	_ = idx.SetLock(recordindex.LockUnlocked)

	tr2, err := OpenOrCreate(idx, path, DefaultConfig())
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	defer Close(tr2)

	if idx.LockType() != recordindex.LockExclusive {
		t.Fatalf("expected OpenOrCreate to leave the index locked exclusive after the retry path")
	}
}

func TestTree_ClosedHandleReturnsErrClosed(t *testing.T) {
	idx := fake.New(1)
	_ = idx.SetLock(recordindex.LockExclusive)

	cfg := DefaultConfig()
	cfg.Anonymous = true
	tr, err := Create(idx, "", cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Close(tr); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := tr.Lookup(1); err != ErrClosed {
		t.Fatalf("Lookup after close = %v; want ErrClosed", err)
	}
}

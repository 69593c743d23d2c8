// Package passdb is a faithful port of a non-core Dovecot collaborator:
// the password-database module's process-wide handle with a refcount
// (passdb_pwf / userdb_pwf in passdb-passwd-file.c). It has nothing to
// do with the tree index; it is carried here as the module-scope
// shared-handle pattern the original's passdb/userdb split relies on.
//
// The original keeps a single global *db_passwd_file and bumps its
// refcount when a second subsystem (passdb vs userdb) opens the same
// path. Re-expressed as a module-scope registry keyed by path: each
// Open call returns a shared *Handle for that path, refcounted, freed
// when the count reaches zero.
package passdb

import (
	"fmt"
	"sync"
)

// Handle is a shared, refcounted handle to one passwd-file-shaped
// backing store, identified by its path.
type Handle struct {
	path     string
	refcount int
}

// Path returns the file path this handle was opened against.
func (h *Handle) Path() string { return h.path }

var (
	mu       sync.Mutex
	registry = map[string]*Handle{}
)

// Open returns the shared Handle for path, creating it if this is the
// first opener, or incrementing its refcount if another subsystem
// already opened the same path — mirroring passwd_file_init's
// same-path reuse of userdb_pwf.
func Open(path string) (*Handle, error) {
	if path == "" {
		return nil, fmt.Errorf("passdb: empty path")
	}

	mu.Lock()
	defer mu.Unlock()

	if h, ok := registry[path]; ok {
		h.refcount++
		return h, nil
	}

	h := &Handle{path: path, refcount: 1}
	registry[path] = h
	return h, nil
}

// Close decrements the handle's refcount, removing it from the
// registry once no opener remains (db_passwd_file_unref).
func Close(h *Handle) {
	if h == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	h.refcount--
	if h.refcount <= 0 {
		delete(registry, h.path)
	}
}

// refcountFor exposes the current count for tests only.
func refcountFor(path string) int {
	mu.Lock()
	defer mu.Unlock()
	if h, ok := registry[path]; ok {
		return h.refcount
	}
	return 0
}

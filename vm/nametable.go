package vm

import "sync"

// NameTable interns qualified method names to numeric IDs for fast lookup.
//
// A qualified name is a (namespace, local name) pair. By converting pairs
// to numeric IDs at class-definition time, method dispatch can use fast
// array indexing into a vtable instead of map lookups on every send.
//
// The table is append-only and thread-safe for concurrent reads after
// initial population.
type NameTable struct {
	mu    sync.RWMutex
	byKey map[qnameKey]int // qualified name -> ID
	byID  []QName          // ID -> qualified name
}

// qnameKey is the comparable form of a QName used for map lookup. The URI
// field is a pool ID, so equal contents always produce equal keys.
type qnameKey struct {
	kind NamespaceKind
	uri  uint32
	name uint32
}

func keyOf(q QName) qnameKey {
	k := qnameKey{kind: q.Namespace.Kind, name: q.Name}
	if q.Namespace.Kind == NsNamed {
		k.uri = q.Namespace.URI
	}
	return k
}

// NewNameTable creates a new empty name table.
func NewNameTable() *NameTable {
	return &NameTable{
		byKey: make(map[qnameKey]int),
		byID:  make([]QName, 0, 256), // Pre-allocate for common case
	}
}

// Intern returns the ID for a qualified name, creating a new ID if needed.
// This is the primary method for populating the table.
func (nt *NameTable) Intern(q QName) int {
	key := keyOf(q)

	// Fast path: read-only lookup
	nt.mu.RLock()
	if id, ok := nt.byKey[key]; ok {
		nt.mu.RUnlock()
		return id
	}
	nt.mu.RUnlock()

	// Slow path: need to add a new name
	nt.mu.Lock()
	defer nt.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := nt.byKey[key]; ok {
		return id
	}

	id := len(nt.byID)
	nt.byKey[key] = id
	nt.byID = append(nt.byID, q)
	return id
}

// Lookup returns the ID for a qualified name, or -1 if not interned.
// Use this on the dispatch path, where a miss must not create entries.
func (nt *NameTable) Lookup(q QName) int {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if id, ok := nt.byKey[keyOf(q)]; ok {
		return id
	}
	return -1
}

// Name returns the qualified name for an ID.
// The second result is false if the ID is invalid.
func (nt *NameTable) Name(id int) (QName, bool) {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if id < 0 || id >= len(nt.byID) {
		return QName{}, false
	}
	return nt.byID[id], true
}

// Len returns the number of interned qualified names.
func (nt *NameTable) Len() int {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return len(nt.byID)
}

package vm

import "sync"

// ---------------------------------------------------------------------------
// StringTable: Canonical interned strings
// ---------------------------------------------------------------------------

// StringTable interns string contents to unique pool IDs.
//
// Every VM owns one table. At construction it is preloaded with a fixed set
// of well-known identifiers plus all single-byte ASCII code points, so hot
// lookups on common names never allocate or rehash. The preloaded region is
// append-only like everything else; dynamic interning grows the table after
// it.
type StringTable struct {
	mu     sync.RWMutex
	byName map[string]uint32 // content -> ID
	byID   []string          // ID -> content
}

// asciiCharsLen is the number of single-byte strings preloaded into the pool.
const asciiCharsLen = 0x80

// commonIdentifiers is the fixed set of well-known identifier strings,
// interned eagerly into every VM's pool. Alphabetical order; the pool IDs
// of entries the VM caches are resolved at bootstrap, not assumed.
var commonIdentifiers = []string{
	"",
	"Boolean",
	"Class",
	"Namespace",
	"Number",
	"Object",
	"Proxy",
	"QName",
	"String",
	"arguments",
	"boolean",
	"callProperty",
	"callee",
	"caller",
	"constructor",
	"deleteProperty",
	"dynamic",
	"false",
	"getProperty",
	"hasProperty",
	"int",
	"isPrototypeOf",
	"length",
	"localName",
	"nextName",
	"nextNameIndex",
	"nextValue",
	"null",
	"object",
	"prototype",
	"setProperty",
	"string",
	"toString",
	"true",
	"uint",
	"undefined",
	"uri",
	"valueOf",
}

// newStringTable creates a string table preloaded with the ASCII region and
// the well-known identifier set. Preloading happens once per VM; the table
// is never rebuilt.
func newStringTable() *StringTable {
	st := &StringTable{
		byName: make(map[string]uint32, asciiCharsLen+len(commonIdentifiers)+64),
		byID:   make([]string, 0, asciiCharsLen+len(commonIdentifiers)+64),
	}
	for c := 0; c < asciiCharsLen; c++ {
		st.intern(string(rune(c)))
	}
	for _, s := range commonIdentifiers {
		st.intern(s)
	}
	return st
}

// intern adds without locking; bootstrap only.
func (st *StringTable) intern(name string) uint32 {
	if id, ok := st.byName[name]; ok {
		return id
	}
	id := uint32(len(st.byID))
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Intern returns the ID for a string, creating a new one if needed.
func (st *StringTable) Intern(name string) uint32 {
	// Fast path: read-only lookup
	st.mu.RLock()
	if id, ok := st.byName[name]; ok {
		st.mu.RUnlock()
		return id
	}
	st.mu.RUnlock()

	// Slow path: need to add a new string
	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := st.byName[name]; ok {
		return id
	}

	id := uint32(len(st.byID))
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the ID for a string, or 0 and false if not interned.
func (st *StringTable) Lookup(name string) (uint32, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	id, ok := st.byName[name]
	return id, ok
}

// Name returns the string content for an ID, or "" if invalid.
func (st *StringTable) Name(id uint32) string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if int(id) >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned strings.
func (st *StringTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}

// All returns all interned strings in ID order.
// This allocates a new slice; use for debugging and image snapshots only.
func (st *StringTable) All() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]string, len(st.byID))
	copy(result, st.byID)
	return result
}

// StringValue creates a Value from string content, interning it.
func (st *StringTable) StringValue(s string) Value {
	return FromStringID(st.Intern(s))
}

package vm

// VTable holds the method dispatch table for a class.
//
// Methods are stored in an array indexed by interned qualified-name ID,
// allowing O(1) lookup for monomorphic call sites. Inheritance is handled
// by walking the parent chain when a method is not found locally.
type VTable struct {
	class   *Class   // The class this vtable belongs to
	parent  *VTable  // Parent vtable for inheritance lookup
	methods []Method // Methods indexed by qualified-name ID
}

// NewVTable creates a new vtable for a class.
func NewVTable(class *Class, parent *VTable) *VTable {
	return &VTable{
		class:   class,
		parent:  parent,
		methods: make([]Method, 0, 32), // Pre-allocate for typical class
	}
}

// Lookup finds a method by qualified-name ID, walking the inheritance chain.
// Returns nil if no method is found.
func (vt *VTable) Lookup(id int) Method {
	for v := vt; v != nil; v = v.parent {
		if id >= 0 && id < len(v.methods) {
			if m := v.methods[id]; m != nil {
				return m
			}
		}
	}
	return nil
}

// LookupLocal finds a method by qualified-name ID in this vtable only.
// Does not check parent vtables.
func (vt *VTable) LookupLocal(id int) Method {
	if id >= 0 && id < len(vt.methods) {
		return vt.methods[id]
	}
	return nil
}

// AddMethod adds or replaces a method at the given qualified-name ID.
// The methods array is grown as needed.
func (vt *VTable) AddMethod(id int, method Method) {
	if id >= len(vt.methods) {
		// Grow the methods slice
		newMethods := make([]Method, id+1)
		copy(newMethods, vt.methods)
		vt.methods = newMethods
	}
	vt.methods[id] = method
}

// RemoveMethod removes a method at the given qualified-name ID.
func (vt *VTable) RemoveMethod(id int) {
	if id >= 0 && id < len(vt.methods) {
		vt.methods[id] = nil
	}
}

// HasMethod returns true if this vtable (not parents) has a method for id.
func (vt *VTable) HasMethod(id int) bool {
	return vt.LookupLocal(id) != nil
}

// Parent returns the parent vtable.
func (vt *VTable) Parent() *VTable {
	return vt.parent
}

// Class returns the class this vtable belongs to.
func (vt *VTable) Class() *Class {
	return vt.class
}

// MethodCount returns the number of method slots (including nil slots).
func (vt *VTable) MethodCount() int {
	return len(vt.methods)
}

// LocalMethods returns all non-nil methods defined in this vtable,
// as a map of qualified-name ID to method.
func (vt *VTable) LocalMethods() map[int]Method {
	result := make(map[int]Method)
	for i, m := range vt.methods {
		if m != nil {
			result[i] = m
		}
	}
	return result
}

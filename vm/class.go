package vm

// ---------------------------------------------------------------------------
// Class: Kestrel class metadata
// ---------------------------------------------------------------------------

// Class represents a Kestrel class definition.
type Class struct {
	Name       string    // Class name
	Namespace  Namespace // Namespace the class itself is defined in
	Superclass *Class    // Parent class (nil for Object)
	Sealed     bool      // Sealed classes reject ad-hoc properties
	InstVars   []string  // Declared instance variable (trait) names
	NumSlots   int       // Total slots needed, including inherited

	vtable *VTable    // Method dispatch table
	kind   ObjectKind // Kind of instances this class allocates
}

// Method represents an invokable method body. Script-level handler methods
// and native primitives both satisfy it.
type Method interface {
	Invoke(act *Activation, receiver Value, args []Value) (Value, error)
}

// NativeMethod adapts a Go function to the Method interface.
type NativeMethod func(act *Activation, receiver Value, args []Value) (Value, error)

// Invoke calls the wrapped function.
func (f NativeMethod) Invoke(act *Activation, receiver Value, args []Value) (Value, error) {
	return f(act, receiver, args)
}

// VTable returns the class's method dispatch table.
func (c *Class) VTable() *VTable {
	return c.vtable
}

// Kind returns the object kind instances of this class are allocated with.
func (c *Class) Kind() ObjectKind {
	return c.kind
}

// InstVarIndex returns the slot index for an instance variable by name.
// Returns -1 if the variable is not found.
func (c *Class) InstVarIndex(name string) int {
	// Check this class's instance variables
	for i, n := range c.InstVars {
		if n == name {
			return c.instVarOffset() + i
		}
	}
	// Check superclass
	if c.Superclass != nil {
		return c.Superclass.InstVarIndex(name)
	}
	return -1
}

// instVarOffset returns the starting slot index for this class's instance
// variables, accounting for inherited ones.
func (c *Class) instVarOffset() int {
	if c.Superclass == nil {
		return 0
	}
	return c.Superclass.NumSlots
}

// AllInstVarNames returns all instance variable names including inherited ones.
func (c *Class) AllInstVarNames() []string {
	if c.Superclass == nil {
		return c.InstVars
	}
	inherited := c.Superclass.AllInstVarNames()
	result := make([]string, len(inherited)+len(c.InstVars))
	copy(result, inherited)
	copy(result[len(inherited):], c.InstVars)
	return result
}

// IsSubclassOf returns true if c is a subclass of other (or is the same class).
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.Superclass {
		if current == other {
			return true
		}
	}
	return false
}

// AddMethod installs a method under a qualified name, interning the name
// into the given table.
func (c *Class) AddMethod(names *NameTable, q QName, m Method) {
	c.vtable.AddMethod(names.Intern(q), m)
}

// LookupMethod finds a method by interned qualified-name ID, walking the
// superclass chain. Returns nil if no method is found.
func (c *Class) LookupMethod(id int) Method {
	return c.vtable.Lookup(id)
}

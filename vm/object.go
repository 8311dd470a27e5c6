package vm

// ---------------------------------------------------------------------------
// ScriptObject: Heap-allocated instance storage
// ---------------------------------------------------------------------------

// ObjectKind identifies how an instance answers property operations. The
// set is closed: property dispatch switches on it exactly once per
// operation.
type ObjectKind uint8

const (
	// KindScript instances use ordinary trait-slot and dynamic-property
	// storage.
	KindScript ObjectKind = iota
	// KindProxy instances intercept every property operation and delegate
	// it to script-level handler methods.
	KindProxy
)

// ScriptObject represents a heap-allocated Kestrel instance.
//
// Instances use a hybrid slot layout optimized for common cases:
//   - 4 inline slots for instances with ≤4 declared trait variables
//   - Overflow slice for instances with more
//
// Ad-hoc (dynamic) properties of unsealed classes live in a lazily
// allocated map keyed by string pool ID. Proxy instances never store
// script-visible properties here; their base storage exists only so the
// allocator and class metadata contracts are uniform across kinds.
type ScriptObject struct {
	class *Class
	kind  ObjectKind
	id    uint32 // Instance registry ID

	// Inline slots for the first 4 trait variables.
	slot0 Value
	slot1 Value
	slot2 Value
	slot3 Value

	// Overflow for instances with >4 trait variables.
	overflow []Value

	// Dynamic properties, allocated on first write. dynKeys preserves
	// insertion order for enumeration.
	dynamic map[uint32]Value
	dynKeys []uint32
}

// NumInlineSlots is the number of slots stored directly in the struct.
const NumInlineSlots = 4

// newScriptObject creates instance storage for a class with all slots
// initialized to Undefined. The registry assigns the ID.
func newScriptObject(class *Class) *ScriptObject {
	obj := &ScriptObject{class: class, kind: class.kind}

	obj.slot0 = Undefined
	obj.slot1 = Undefined
	obj.slot2 = Undefined
	obj.slot3 = Undefined

	if class.NumSlots > NumInlineSlots {
		obj.overflow = make([]Value, class.NumSlots-NumInlineSlots)
		for i := range obj.overflow {
			obj.overflow[i] = Undefined
		}
	}

	return obj
}

// Class returns the instance's class definition.
func (obj *ScriptObject) Class() *Class {
	return obj.class
}

// Kind returns the instance's object kind.
func (obj *ScriptObject) Kind() ObjectKind {
	return obj.kind
}

// IsProxy returns true if this instance delegates property operations.
func (obj *ScriptObject) IsProxy() bool {
	return obj.kind == KindProxy
}

// ID returns the instance registry ID.
func (obj *ScriptObject) ID() uint32 {
	return obj.id
}

// ToValue returns the NaN-boxed value referencing this instance.
func (obj *ScriptObject) ToValue() Value {
	return FromObjectID(obj.id)
}

// ---------------------------------------------------------------------------
// Slot access
// ---------------------------------------------------------------------------

// GetSlot returns the value at the given trait slot index.
// Panics if index is out of range.
func (obj *ScriptObject) GetSlot(index int) Value {
	switch index {
	case 0:
		return obj.slot0
	case 1:
		return obj.slot1
	case 2:
		return obj.slot2
	case 3:
		return obj.slot3
	default:
		overflowIdx := index - NumInlineSlots
		if overflowIdx < 0 || overflowIdx >= len(obj.overflow) {
			panic("ScriptObject.GetSlot: index out of range")
		}
		return obj.overflow[overflowIdx]
	}
}

// SetSlot sets the value at the given trait slot index.
// Panics if index is out of range.
func (obj *ScriptObject) SetSlot(index int, value Value) {
	switch index {
	case 0:
		obj.slot0 = value
	case 1:
		obj.slot1 = value
	case 2:
		obj.slot2 = value
	case 3:
		obj.slot3 = value
	default:
		overflowIdx := index - NumInlineSlots
		if overflowIdx < 0 || overflowIdx >= len(obj.overflow) {
			panic("ScriptObject.SetSlot: index out of range")
		}
		obj.overflow[overflowIdx] = value
	}
}

// NumSlots returns the total number of trait slots in this instance.
func (obj *ScriptObject) NumSlots() int {
	return NumInlineSlots + len(obj.overflow)
}

// ---------------------------------------------------------------------------
// Base storage semantics (KindScript)
// ---------------------------------------------------------------------------

// resolveTrait returns the slot index for a multiname's local name, or -1.
// Declared traits live in the public namespace, so only Any and Public
// candidates can match them.
func (obj *ScriptObject) resolveTrait(act *Activation, mn *Multiname) int {
	name, ok := mn.LocalName()
	if !ok {
		return -1
	}
	for _, ns := range mn.NamespaceSet() {
		if ns.IsAny() || ns.IsPublic() {
			return obj.class.InstVarIndex(act.vm.Strings.Name(name))
		}
	}
	return -1
}

// getPropertyLocal implements GET for plain instances.
func (obj *ScriptObject) getPropertyLocal(act *Activation, mn *Multiname) (Value, error) {
	if idx := obj.resolveTrait(act, mn); idx >= 0 {
		return obj.GetSlot(idx), nil
	}
	if name, ok := mn.LocalName(); ok && obj.dynamic != nil {
		if v, present := obj.dynamic[name]; present {
			return v, nil
		}
	}
	if !obj.class.Sealed {
		return Undefined, nil
	}
	return Undefined, undefinedPropertyError(act, OpGet, mn)
}

// setPropertyLocal implements SET for plain instances.
func (obj *ScriptObject) setPropertyLocal(act *Activation, mn *Multiname, value Value) error {
	if idx := obj.resolveTrait(act, mn); idx >= 0 {
		obj.SetSlot(idx, value)
		return nil
	}
	name, ok := mn.LocalName()
	if !ok {
		if obj.class.Sealed {
			return undefinedPropertyError(act, OpSet, mn)
		}
		return &InvalidSetTargetError{}
	}
	if obj.class.Sealed {
		return undefinedPropertyError(act, OpSet, mn)
	}
	if obj.dynamic == nil {
		obj.dynamic = make(map[uint32]Value)
	}
	if _, present := obj.dynamic[name]; !present {
		obj.dynKeys = append(obj.dynKeys, name)
	}
	obj.dynamic[name] = value
	return nil
}

// deletePropertyLocal implements DELETE for plain instances. Declared
// traits cannot be deleted; dynamic properties can.
func (obj *ScriptObject) deletePropertyLocal(act *Activation, mn *Multiname) (bool, error) {
	if obj.resolveTrait(act, mn) >= 0 {
		return false, nil
	}
	name, ok := mn.LocalName()
	if !ok || obj.dynamic == nil {
		return false, nil
	}
	if _, present := obj.dynamic[name]; !present {
		return false, nil
	}
	delete(obj.dynamic, name)
	for i, k := range obj.dynKeys {
		if k == name {
			obj.dynKeys = append(obj.dynKeys[:i], obj.dynKeys[i+1:]...)
			break
		}
	}
	return true, nil
}

// hasPropertyLocal implements the `in` operator for plain instances.
func (obj *ScriptObject) hasPropertyLocal(act *Activation, mn *Multiname) (bool, error) {
	if idx := obj.resolveTrait(act, mn); idx >= 0 {
		return true, nil
	}
	if name, ok := mn.LocalName(); ok && obj.dynamic != nil {
		if _, present := obj.dynamic[name]; present {
			return true, nil
		}
	}
	return false, nil
}

// nextEnumerantLocal advances the index-driven enumeration sequence over
// dynamic properties. Index 0 is the conventional terminator.
func (obj *ScriptObject) nextEnumerantLocal(lastIndex uint32) (uint32, error) {
	if int(lastIndex) < len(obj.dynKeys) {
		return lastIndex + 1, nil
	}
	return 0, nil
}

// enumerantNameLocal returns the name at a 1-based enumeration index.
func (obj *ScriptObject) enumerantNameLocal(index uint32) (Value, error) {
	if index == 0 || int(index) > len(obj.dynKeys) {
		return Null, nil
	}
	return FromStringID(obj.dynKeys[index-1]), nil
}

// enumerantValueLocal returns the value at a 1-based enumeration index.
func (obj *ScriptObject) enumerantValueLocal(index uint32) (Value, error) {
	if index == 0 || int(index) > len(obj.dynKeys) {
		return Undefined, nil
	}
	return obj.dynamic[obj.dynKeys[index-1]], nil
}

package vm

// ---------------------------------------------------------------------------
// Property operation entry points
// ---------------------------------------------------------------------------
//
// These are the interpreter-facing entry points for every property touch.
// Each resolves the receiver once, switches on the closed set of object
// kinds once, and runs either base storage semantics or proxy delegation.

// GetProperty reads a property of the receiver.
func (act *Activation) GetProperty(receiver Value, mn *Multiname) (Value, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return Undefined, err
	}
	if obj.kind == KindProxy {
		return act.proxyGet(obj, mn)
	}
	return obj.getPropertyLocal(act, mn)
}

// SetProperty writes a property of the receiver.
func (act *Activation) SetProperty(receiver Value, mn *Multiname, value Value) error {
	obj, err := act.instance(receiver)
	if err != nil {
		return err
	}
	if obj.kind == KindProxy {
		return act.proxySet(obj, mn, value)
	}
	return obj.setPropertyLocal(act, mn, value)
}

// DeleteProperty removes a property of the receiver, reporting whether the
// deletion succeeded.
func (act *Activation) DeleteProperty(receiver Value, mn *Multiname) (bool, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return false, err
	}
	if obj.kind == KindProxy {
		return act.proxyDelete(obj, mn)
	}
	return obj.deletePropertyLocal(act, mn)
}

// HasProperty implements the `in` operator against the receiver.
func (act *Activation) HasProperty(receiver Value, mn *Multiname) (bool, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return false, err
	}
	if obj.kind == KindProxy {
		return act.proxyHas(obj, mn)
	}
	return obj.hasPropertyLocal(act, mn)
}

// NextEnumerant advances the receiver's index-driven enumeration sequence.
// The result is always reported as a present index; by convention 0
// terminates the sequence.
func (act *Activation) NextEnumerant(receiver Value, lastIndex uint32) (uint32, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return 0, err
	}
	if obj.kind == KindProxy {
		return act.proxyNextEnumerant(obj, lastIndex)
	}
	return obj.nextEnumerantLocal(lastIndex)
}

// EnumerantName returns the property name at an enumeration index.
func (act *Activation) EnumerantName(receiver Value, index uint32) (Value, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return Undefined, err
	}
	if obj.kind == KindProxy {
		return act.proxyEnumerantName(obj, index)
	}
	return obj.enumerantNameLocal(index)
}

// EnumerantValue returns the property value at an enumeration index.
func (act *Activation) EnumerantValue(receiver Value, index uint32) (Value, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return Undefined, err
	}
	if obj.kind == KindProxy {
		return act.proxyEnumerantValue(obj, index)
	}
	return obj.enumerantValueLocal(index)
}

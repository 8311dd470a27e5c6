package vm

// ---------------------------------------------------------------------------
// Proxy: Meta-object property delegation
// ---------------------------------------------------------------------------
//
// A proxy instance never answers property operations from its own storage.
// Each operation resolves the lookup multiname to a single QName and
// forwards it to a handler method defined under the reserved proxy
// namespace: getProperty, setProperty, callProperty, deleteProperty,
// hasProperty, nextNameIndex, nextName, nextValue. When no namespace in
// the multiname qualifies for delegation, a fixed per-operation fallback
// applies, driven by the class's sealed flag.

// ProxyAllocator allocates a fresh proxy instance of a class with empty
// base storage. Failures of the underlying registry propagate unchanged.
func ProxyAllocator(class *Class, act *Activation) (Value, error) {
	obj, err := act.vm.NewInstance(class)
	if err != nil {
		return Undefined, err
	}
	return obj.ToValue(), nil
}

// delegate runs the namespace scan shared by GET, SET, CALL and DELETE:
// iterate the multiname's namespaces in declared order, and for the first
// one that qualifies, reify the QName and invoke the delegate method with
// the QName prepended to extra. No further namespaces are tried once one
// qualifies. The second result reports whether a delegate call happened;
// when it is false the caller applies its fallback policy.
func (act *Activation) delegate(obj *ScriptObject, delegateID int, mn *Multiname, extra []Value) (Value, bool, error) {
	name, ok := mn.LocalName()
	if !ok {
		return Undefined, false, nil
	}
	for _, ns := range mn.NamespaceSet() {
		if !ns.qualifiesForDelegation() {
			continue
		}
		qname, err := act.MakeQName(NewQName(ns, name))
		if err != nil {
			return Undefined, false, err
		}

		args := make([]Value, 0, len(extra)+1)
		args = append(args, qname)
		args = append(args, extra...)

		res, err := act.callMethodByID(obj, delegateID, args)
		return res, true, err
	}
	return Undefined, false, nil
}

// proxyGet implements GET: delegate to getProperty(qname), or fall back to
// undefined on a dynamic class and an undefined-property error on a sealed
// one.
func (act *Activation) proxyGet(obj *ScriptObject, mn *Multiname) (Value, error) {
	res, called, err := act.delegate(obj, act.vm.delegates.getProperty, mn, nil)
	if err != nil {
		return Undefined, err
	}
	if called {
		return res, nil
	}

	if !obj.class.Sealed {
		return Undefined, nil
	}
	return Undefined, undefinedPropertyError(act, OpGet, mn)
}

// proxySet implements SET: delegate to setProperty(qname, value) and
// discard the result. Without a qualifying namespace, a dynamic class
// silently drops a named write (proxies never store script-visible fields
// in base storage) and rejects a nameless one; a sealed class always
// rejects.
func (act *Activation) proxySet(obj *ScriptObject, mn *Multiname, value Value) error {
	_, called, err := act.delegate(obj, act.vm.delegates.setProperty, mn, []Value{value})
	if err != nil {
		return err
	}
	if called {
		return nil
	}

	if !obj.class.Sealed {
		if _, ok := mn.LocalName(); ok {
			return nil
		}
		return &InvalidSetTargetError{}
	}
	return undefinedPropertyError(act, OpSet, mn)
}

// proxyCall implements CALL: delegate to callProperty(qname, args...).
// Calling an undefined property is an error regardless of the sealed flag;
// there is no fallback.
func (act *Activation) proxyCall(obj *ScriptObject, mn *Multiname, callArgs []Value) (Value, error) {
	res, called, err := act.delegate(obj, act.vm.delegates.callProperty, mn, callArgs)
	if err != nil {
		return Undefined, err
	}
	if called {
		return res, nil
	}
	return Undefined, undefinedPropertyError(act, OpCall, mn)
}

// proxyDelete implements DELETE: delegate to deleteProperty(qname) and
// coerce the result to a boolean. Without a qualifying namespace an absent
// property deletes successfully on a dynamic class and is denied on a
// sealed one; this path never fails.
func (act *Activation) proxyDelete(obj *ScriptObject, mn *Multiname) (bool, error) {
	res, called, err := act.delegate(obj, act.vm.delegates.deleteProperty, mn, nil)
	if err != nil {
		return false, err
	}
	if called {
		return act.vm.CoerceToBoolean(res), nil
	}
	return !obj.class.Sealed, nil
}

// proxyHas implements the `in` operator: unconditional delegation to
// hasProperty(localName), with no namespace scan and no sealed/dynamic
// fallback. A multiname without a local name is a precondition violation.
func (act *Activation) proxyHas(obj *ScriptObject, mn *Multiname) (bool, error) {
	name := mn.mustLocalName()
	res, err := act.callMethodByID(obj, act.vm.delegates.hasProperty, []Value{FromStringID(name)})
	if err != nil {
		return false, err
	}
	return act.vm.CoerceToBoolean(res), nil
}

// proxyNextEnumerant delegates to nextNameIndex(lastIndex) and coerces the
// result to a uint32. The numeric result is always reported as a present
// index; the delegate signals exhaustion by returning 0.
func (act *Activation) proxyNextEnumerant(obj *ScriptObject, lastIndex uint32) (uint32, error) {
	res, err := act.callMethodByID(obj, act.vm.delegates.nextNameIndex, []Value{FromSmallInt(int64(lastIndex))})
	if err != nil {
		return 0, err
	}
	return act.CoerceToU32(res)
}

// proxyEnumerantName delegates to nextName(index), returning the raw result.
func (act *Activation) proxyEnumerantName(obj *ScriptObject, index uint32) (Value, error) {
	return act.callMethodByID(obj, act.vm.delegates.nextName, []Value{FromSmallInt(int64(index))})
}

// proxyEnumerantValue delegates to nextValue(index), returning the raw result.
func (act *Activation) proxyEnumerantValue(obj *ScriptObject, index uint32) (Value, error) {
	return act.callMethodByID(obj, act.vm.delegates.nextValue, []Value{FromSmallInt(int64(index))})
}

// ---------------------------------------------------------------------------
// Delegate registration
// ---------------------------------------------------------------------------

// DelegateKind names one of the eight proxy handler methods.
type DelegateKind uint8

const (
	DelegateGetProperty DelegateKind = iota
	DelegateSetProperty
	DelegateCallProperty
	DelegateDeleteProperty
	DelegateHasProperty
	DelegateNextNameIndex
	DelegateNextName
	DelegateNextValue
)

// delegateID maps a delegate kind to its interned qualified-name ID.
func (vm *VM) delegateID(kind DelegateKind) int {
	d := &vm.delegates
	switch kind {
	case DelegateSetProperty:
		return d.setProperty
	case DelegateCallProperty:
		return d.callProperty
	case DelegateDeleteProperty:
		return d.deleteProperty
	case DelegateHasProperty:
		return d.hasProperty
	case DelegateNextNameIndex:
		return d.nextNameIndex
	case DelegateNextName:
		return d.nextName
	case DelegateNextValue:
		return d.nextValue
	default:
		return d.getProperty
	}
}

// AddDelegate installs a handler method for one proxy operation on a
// class, under the reserved proxy namespace. Script compilation reaches
// the same vtable slots when a Proxy subclass overrides the handlers.
func (vm *VM) AddDelegate(class *Class, kind DelegateKind, m Method) {
	class.vtable.AddMethod(vm.delegateID(kind), m)
}

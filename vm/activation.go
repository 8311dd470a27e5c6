package vm

// ---------------------------------------------------------------------------
// Activation: Execution context for property operations
// ---------------------------------------------------------------------------

// Activation is the execution context a property operation runs under. It
// carries the VM back-reference and the frame depth counter that bounds
// delegate reentrancy. Everything is synchronous call/return on one
// logical call stack; delegate bodies may re-enter any property operation,
// including further operations on the same instance.
type Activation struct {
	vm    *VM
	depth int
}

// NewActivation creates an execution context for a VM.
func NewActivation(vm *VM) *Activation {
	return &Activation{vm: vm}
}

// VM returns the owning VM.
func (act *Activation) VM() *VM {
	return act.vm
}

// Depth returns the current call depth.
func (act *Activation) Depth() int {
	return act.depth
}

// invoke runs a method body under the frame depth guard. The guard lives
// here at the interpreter boundary; the property dispatcher itself
// performs no reentrancy checks.
func (act *Activation) invoke(m Method, receiver Value, args []Value) (Value, error) {
	if act.depth >= act.vm.maxFrameDepth {
		return Undefined, &StackOverflowError{Limit: act.vm.maxFrameDepth}
	}
	act.depth++
	defer func() { act.depth-- }()
	return m.Invoke(act, receiver, args)
}

// instance resolves a receiver value to live instance storage.
func (act *Activation) instance(v Value) (*ScriptObject, error) {
	if !v.IsObject() {
		return nil, &NotAnObjectError{Value: v}
	}
	obj := act.vm.registry.Get(v.ObjectID())
	if obj == nil {
		return nil, &NotAnObjectError{Value: v}
	}
	return obj, nil
}

// resolveMethod finds a method on a class by scanning a multiname's
// namespaces in declared order against the vtable chain. Resolution is by
// exact qualified name; a pool miss on the pair means no class anywhere
// has defined that method.
func (act *Activation) resolveMethod(class *Class, mn *Multiname) Method {
	name, ok := mn.LocalName()
	if !ok {
		return nil
	}
	for _, ns := range mn.NamespaceSet() {
		id := act.vm.Names.Lookup(NewQName(ns, name))
		if id < 0 {
			continue
		}
		if m := class.LookupMethod(id); m != nil {
			return m
		}
	}
	return nil
}

// CallProperty invokes a named property of the receiver as a function and
// returns its result. Method traits resolve first; proxy receivers then
// fall back to delegation, plain receivers to a dispatch error.
func (act *Activation) CallProperty(receiver Value, mn *Multiname, args []Value) (Value, error) {
	obj, err := act.instance(receiver)
	if err != nil {
		return Undefined, err
	}

	if m := act.resolveMethod(obj.class, mn); m != nil {
		return act.invoke(m, receiver, args)
	}

	if obj.kind == KindProxy {
		return act.proxyCall(obj, mn, args)
	}

	name := ""
	if id, ok := mn.LocalName(); ok {
		name = act.vm.Strings.Name(id)
	}
	return Undefined, &NoSuchMethodError{Name: name, Class: obj.class.Name}
}

// callMethodByID invokes a method resolved by interned qualified-name ID.
// Used for delegate invocation, where the name is fixed and pre-interned.
func (act *Activation) callMethodByID(obj *ScriptObject, id int, args []Value) (Value, error) {
	m := obj.class.LookupMethod(id)
	if m == nil {
		name := ""
		if q, ok := act.vm.Names.Name(id); ok {
			name = act.vm.Strings.Name(q.Name)
		}
		return Undefined, &NoSuchMethodError{Name: name, Class: obj.class.Name}
	}
	return act.invoke(m, obj.ToValue(), args)
}

// MakeQName reifies a resolved (namespace, local name) pair as a fresh
// QName instance. The instance exists only for the duration of one
// delegation; construction fails only on registry exhaustion.
func (act *Activation) MakeQName(q QName) (Value, error) {
	obj, err := act.vm.NewInstance(act.vm.QNameClass)
	if err != nil {
		return Undefined, err
	}

	var uri Value
	switch q.Namespace.Kind {
	case NsAny:
		uri = Null
	case NsNamed, NsProxy:
		uri = FromStringID(q.Namespace.URI)
	default:
		uri = FromStringID(act.vm.strEmpty)
	}
	obj.SetSlot(0, uri)
	obj.SetSlot(1, FromStringID(q.Name))

	return obj.ToValue(), nil
}

package vm

import "fmt"

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------
//
// All failures in the object model are explicit error returns that unwind
// to the interpreter, which decides whether to convert them into a
// script-visible exception. Errors raised inside delegate method bodies
// propagate unchanged; the dispatcher never wraps, suppresses, or retries.

// PropertyOp identifies which property operation failed, for error messages.
type PropertyOp uint8

const (
	OpGet PropertyOp = iota
	OpSet
	OpCall
)

// UndefinedPropertyError is returned by GET or SET on a sealed class with
// no qualifying namespace, and by CALL whenever no namespace qualifies.
type UndefinedPropertyError struct {
	Op      PropertyOp
	Name    string // Attempted local name; empty when absent
	HasName bool
}

func (e *UndefinedPropertyError) Error() string {
	name := e.Name
	if !e.HasName {
		name = "(no local name)"
	}
	switch e.Op {
	case OpSet:
		return fmt.Sprintf("Cannot set undefined property %s", name)
	case OpCall:
		return fmt.Sprintf("Attempted to call undefined property %s", name)
	default:
		return fmt.Sprintf("Cannot get undefined property %s", name)
	}
}

// undefinedPropertyError builds an UndefinedPropertyError from a multiname,
// resolving the local name through the pool for the message.
func undefinedPropertyError(act *Activation, op PropertyOp, mn *Multiname) error {
	e := &UndefinedPropertyError{Op: op}
	if name, ok := mn.LocalName(); ok {
		e.Name = act.vm.Strings.Name(name)
		e.HasName = true
	}
	return e
}

// InvalidSetTargetError is returned by SET on a dynamic class when the
// multiname carries no local name at all. It distinguishes "silently
// dropped write" from "truly unnameable target".
type InvalidSetTargetError struct{}

func (e *InvalidSetTargetError) Error() string {
	return "Cannot set undefined property using any name"
}

// NoSuchMethodError is returned by the call dispatcher when no method is
// reachable for any candidate namespace.
type NoSuchMethodError struct {
	Name  string
	Class string
}

func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("No method %s on class %s", e.Name, e.Class)
}

// CoercionError is returned when a value cannot be coerced to the
// requested numeric type.
type CoercionError struct {
	Target string
	Value  Value
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("Cannot convert value to %s", e.Target)
}

// StackOverflowError is returned when a call would exceed the configured
// frame depth limit. The check lives at the interpreter boundary, not in
// the property dispatcher.
type StackOverflowError struct {
	Limit int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("Call stack depth limit (%d) exceeded", e.Limit)
}

// NotAnObjectError is returned when a property operation is applied to a
// value that does not reference a live heap instance.
type NotAnObjectError struct {
	Value Value
}

func (e *NotAnObjectError) Error() string {
	return "Property operation on a non-object value"
}

// RegistryFullError is returned when the instance arena cannot allocate.
type RegistryFullError struct {
	Capacity int
}

func (e *RegistryFullError) Error() string {
	return fmt.Sprintf("Instance registry full (capacity %d)", e.Capacity)
}

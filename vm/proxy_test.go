package vm

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestProxy(t *testing.T, v *VM, sealed bool) (*Class, Value) {
	t.Helper()
	cls := v.NewProxyClass("TestProxy", nil, sealed)
	act := NewActivation(v)
	p, err := ProxyAllocator(cls, act)
	if err != nil {
		t.Fatalf("ProxyAllocator failed: %v", err)
	}
	return cls, p
}

// qnameParts decodes the uri and localName traits of a reified QName value.
func qnameParts(v *VM, q Value) (string, string) {
	obj := v.InstanceOf(q)
	if obj == nil {
		return "", ""
	}
	return v.StringContent(obj.GetSlot(0)), v.StringContent(obj.GetSlot(1))
}

func mustUndefined(t *testing.T, got Value) {
	t.Helper()
	if got != Undefined {
		t.Errorf("result = %v, want Undefined", got)
	}
}

// ---------------------------------------------------------------------------
// GET
// ---------------------------------------------------------------------------

func TestProxyGetDelegatesToFirstQualifyingNamespace(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	nsA := NamedNamespace(v.Strings.Intern("http://a"))
	nsB := NamedNamespace(v.Strings.Intern("http://b"))

	calls := 0
	var gotURI, gotLocal string
	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		calls++
		if len(args) != 1 {
			t.Fatalf("getProperty args = %d, want 1", len(args))
		}
		gotURI, gotLocal = qnameParts(v, args[0])
		return v.StringValue("hit"), nil
	}))

	mn := NewMultiname([]Namespace{nsA, nsB, PublicNamespace()}, v.Strings.Intern("foo"))
	res, err := act.GetProperty(p, mn)
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("delegate calls = %d, want exactly 1", calls)
	}
	if gotURI != "http://a" {
		t.Errorf("qname uri = %q, want http://a (first qualifying namespace)", gotURI)
	}
	if gotLocal != "foo" {
		t.Errorf("qname localName = %q, want foo", gotLocal)
	}
	if v.StringContent(res) != "hit" {
		t.Errorf("result = %v, want \"hit\"", res)
	}
}

func TestProxyGetDynamicFallbackIsUndefined(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, false)

	// Empty namespace set: nothing qualifies, so the dynamic class
	// answers undefined without error.
	mn := NewMultiname(nil, v.Strings.Intern("foo"))
	res, err := act.GetProperty(p, mn)
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	mustUndefined(t, res)
}

func TestProxyGetSealedFallbackFails(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, true)

	mn := NewMultiname(nil, v.Strings.Intern("foo"))
	_, err := act.GetProperty(p, mn)
	if err == nil {
		t.Fatal("expected UndefinedPropertyError on sealed class")
	}

	var upe *UndefinedPropertyError
	if !errors.As(err, &upe) {
		t.Fatalf("error type = %T, want *UndefinedPropertyError", err)
	}
	if upe.Op != OpGet {
		t.Errorf("op = %v, want OpGet", upe.Op)
	}
	if !strings.Contains(err.Error(), "foo") {
		t.Errorf("error %q should mention the attempted name foo", err.Error())
	}
}

func TestProxyGetNoLocalName(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)

	// No local name means no delegation regardless of namespaces.
	clsDyn, pDyn := newTestProxy(t, v, false)
	v.AddDelegate(clsDyn, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		t.Fatal("delegate must not be called without a local name")
		return Undefined, nil
	}))
	mn := NewAnyNameMultiname([]Namespace{PublicNamespace()})

	res, err := act.GetProperty(pDyn, mn)
	if err != nil {
		t.Fatalf("GetProperty on dynamic class failed: %v", err)
	}
	mustUndefined(t, res)

	v2 := NewVM()
	act2 := NewActivation(v2)
	_, pSealed := newTestProxy(t, v2, true)
	_, err = act2.GetProperty(pSealed, NewAnyNameMultiname([]Namespace{PublicNamespace()}))
	var upe *UndefinedPropertyError
	if !errors.As(err, &upe) {
		t.Fatalf("error type = %T, want *UndefinedPropertyError", err)
	}
	if upe.HasName {
		t.Error("error should record the local name as absent")
	}
}

// ---------------------------------------------------------------------------
// SET
// ---------------------------------------------------------------------------

func TestProxySetDelegatesAndDiscardsResult(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	calls := 0
	v.AddDelegate(cls, DelegateSetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		calls++
		if len(args) != 2 {
			t.Fatalf("setProperty args = %d, want 2 (qname, value)", len(args))
		}
		_, local := qnameParts(v, args[0])
		if local != "foo" {
			t.Errorf("qname localName = %q, want foo", local)
		}
		if args[1].SmallInt() != 42 {
			t.Errorf("value = %v, want 42", args[1])
		}
		// The delegate's return value must be discarded.
		return v.StringValue("ignored"), nil
	}))

	mn := NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("foo"))
	if err := act.SetProperty(p, mn, FromSmallInt(42)); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("delegate calls = %d, want exactly 1", calls)
	}
}

func TestProxySetDynamicDropsNamedWrite(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	v.AddDelegate(cls, DelegateSetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		t.Fatal("delegate must not be called without a qualifying namespace")
		return Undefined, nil
	}))
	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		t.Fatal("storage must not have been mutated")
		return Undefined, nil
	}))

	// No qualifying namespace, local name present: the write succeeds
	// with no effect.
	mn := NewMultiname(nil, v.Strings.Intern("foo"))
	if err := act.SetProperty(p, mn, FromSmallInt(1)); err != nil {
		t.Fatalf("SetProperty should silently drop the write, got: %v", err)
	}

	// Base storage stayed empty.
	obj := v.InstanceOf(p)
	if got, _ := obj.hasPropertyLocal(act, mn); got {
		t.Error("dropped write must not reach base storage")
	}
}

func TestProxySetWithoutLocalNameFails(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, false)

	err := act.SetProperty(p, NewAnyNameMultiname(nil), FromSmallInt(1))
	var iste *InvalidSetTargetError
	if !errors.As(err, &iste) {
		t.Fatalf("error type = %T, want *InvalidSetTargetError", err)
	}
}

func TestProxySetSealedFallbackFails(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, true)

	err := act.SetProperty(p, NewMultiname(nil, v.Strings.Intern("foo")), FromSmallInt(1))
	var upe *UndefinedPropertyError
	if !errors.As(err, &upe) {
		t.Fatalf("error type = %T, want *UndefinedPropertyError", err)
	}
	if upe.Op != OpSet {
		t.Errorf("op = %v, want OpSet", upe.Op)
	}
}

// ---------------------------------------------------------------------------
// CALL
// ---------------------------------------------------------------------------

func TestProxyCallDelegatesWithArguments(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	v.AddDelegate(cls, DelegateCallProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		if len(args) != 3 {
			t.Fatalf("callProperty args = %d, want 3 (qname + 2 call args)", len(args))
		}
		_, local := qnameParts(v, args[0])
		if local != "doIt" {
			t.Errorf("qname localName = %q, want doIt", local)
		}
		// Original call argument order is preserved after the QName.
		return FromSmallInt(args[1].SmallInt() + args[2].SmallInt()), nil
	}))

	mn := NewMultiname([]Namespace{AnyNamespace()}, v.Strings.Intern("doIt"))
	res, err := act.CallProperty(p, mn, []Value{FromSmallInt(2), FromSmallInt(3)})
	if err != nil {
		t.Fatalf("CallProperty failed: %v", err)
	}
	if res.SmallInt() != 5 {
		t.Errorf("result = %v, want 5", res)
	}
}

func TestProxyCallNoQualifyingNamespaceAlwaysFails(t *testing.T) {
	// Unlike GET/SET/DELETE there is no sealed/dynamic fallback for
	// calls.
	for _, sealed := range []bool{false, true} {
		v := NewVM()
		act := NewActivation(v)
		_, p := newTestProxy(t, v, sealed)

		_, err := act.CallProperty(p, NewMultiname(nil, v.Strings.Intern("foo")), nil)
		var upe *UndefinedPropertyError
		if !errors.As(err, &upe) {
			t.Fatalf("sealed=%v: error type = %T, want *UndefinedPropertyError", sealed, err)
		}
		if upe.Op != OpCall {
			t.Errorf("sealed=%v: op = %v, want OpCall", sealed, upe.Op)
		}
		if !strings.Contains(err.Error(), "foo") {
			t.Errorf("error %q should mention the attempted name foo", err.Error())
		}
	}
}

// ---------------------------------------------------------------------------
// DELETE
// ---------------------------------------------------------------------------

func TestProxyDeleteDelegatesAndCoerces(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	ret := True
	v.AddDelegate(cls, DelegateDeleteProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		return ret, nil
	}))

	mn := NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("foo"))

	got, err := act.DeleteProperty(p, mn)
	if err != nil || !got {
		t.Errorf("delete = %v, %v; want true, nil", got, err)
	}

	// A non-boolean delegate result is coerced.
	ret = v.StringValue("yes")
	if got, _ = act.DeleteProperty(p, mn); !got {
		t.Error("truthy string result should coerce to true")
	}
	ret = FromSmallInt(0)
	if got, _ = act.DeleteProperty(p, mn); got {
		t.Error("zero result should coerce to false")
	}
}

func TestProxyDeleteFallbackNeverFails(t *testing.T) {
	vDyn := NewVM()
	actDyn := NewActivation(vDyn)
	_, pDyn := newTestProxy(t, vDyn, false)

	got, err := actDyn.DeleteProperty(pDyn, NewMultiname(nil, vDyn.Strings.Intern("foo")))
	if err != nil {
		t.Fatalf("delete fallback must not fail, got: %v", err)
	}
	if !got {
		t.Error("absent property on a dynamic class deletes successfully")
	}

	vSealed := NewVM()
	actSealed := NewActivation(vSealed)
	_, pSealed := newTestProxy(t, vSealed, true)

	got, err = actSealed.DeleteProperty(pSealed, NewMultiname(nil, vSealed.Strings.Intern("foo")))
	if err != nil {
		t.Fatalf("delete fallback must not fail, got: %v", err)
	}
	if got {
		t.Error("delete on a sealed class is denied, not an error")
	}
}

// ---------------------------------------------------------------------------
// HAS (`in` operator)
// ---------------------------------------------------------------------------

func TestProxyHasAlwaysDelegates(t *testing.T) {
	// hasProperty delegation ignores the namespace set and the sealed
	// flag entirely.
	for _, sealed := range []bool{false, true} {
		for _, nss := range [][]Namespace{nil, {PublicNamespace()}, {AnyNamespace(), PublicNamespace()}} {
			v := NewVM()
			act := NewActivation(v)
			cls, p := newTestProxy(t, v, sealed)

			var gotName string
			v.AddDelegate(cls, DelegateHasProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
				if len(args) != 1 {
					t.Fatalf("hasProperty args = %d, want 1 (local name)", len(args))
				}
				gotName = v.StringContent(args[0])
				return True, nil
			}))

			got, err := act.HasProperty(p, NewMultiname(nss, v.Strings.Intern("foo")))
			if err != nil {
				t.Fatalf("HasProperty failed: %v", err)
			}
			if !got {
				t.Error("HasProperty = false, want true")
			}
			if gotName != "foo" {
				t.Errorf("delegate received name %q, want foo (bare local name, not a QName)", gotName)
			}
		}
	}
}

func TestProxyHasWithoutLocalNamePanics(t *testing.T) {
	// A multiname with no local name violates an unchecked precondition
	// of the existence test; the fault is deliberate, not a fallback.
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, false)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for existence test without a local name")
		}
	}()
	_, _ = act.HasProperty(p, NewAnyNameMultiname([]Namespace{PublicNamespace()}))
}

// ---------------------------------------------------------------------------
// Enumeration
// ---------------------------------------------------------------------------

func TestProxyEnumerationProtocol(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	nameResult := v.StringValue("key3")
	valueResult := FromSmallInt(99)

	v.AddDelegate(cls, DelegateNextNameIndex, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		if args[0].SmallInt() != 0 {
			t.Errorf("nextNameIndex arg = %v, want 0", args[0])
		}
		return FromSmallInt(3), nil
	}))
	v.AddDelegate(cls, DelegateNextName, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		if args[0].SmallInt() != 3 {
			t.Errorf("nextName arg = %v, want 3", args[0])
		}
		return nameResult, nil
	}))
	v.AddDelegate(cls, DelegateNextValue, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		return valueResult, nil
	}))

	idx, err := act.NextEnumerant(p, 0)
	if err != nil {
		t.Fatalf("NextEnumerant failed: %v", err)
	}
	if idx != 3 {
		t.Errorf("NextEnumerant = %d, want 3", idx)
	}

	name, err := act.EnumerantName(p, 3)
	if err != nil {
		t.Fatalf("EnumerantName failed: %v", err)
	}
	if name != nameResult {
		t.Errorf("EnumerantName = %v, want the delegate's unmodified result", name)
	}

	val, err := act.EnumerantValue(p, 3)
	if err != nil {
		t.Fatalf("EnumerantValue failed: %v", err)
	}
	if val != valueResult {
		t.Errorf("EnumerantValue = %v, want the delegate's unmodified result", val)
	}
}

func TestProxyEnumerationCoercesIndex(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	ret := FromFloat64(3.7)
	v.AddDelegate(cls, DelegateNextNameIndex, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		return ret, nil
	}))

	idx, err := act.NextEnumerant(p, 0)
	if err != nil {
		t.Fatalf("NextEnumerant failed: %v", err)
	}
	if idx != 3 {
		t.Errorf("NextEnumerant = %d, want 3 (truncated)", idx)
	}

	// A terminating delegate returns 0; it is reported as-is.
	ret = FromSmallInt(0)
	if idx, _ = act.NextEnumerant(p, 7); idx != 0 {
		t.Errorf("NextEnumerant = %d, want 0", idx)
	}

	// Coercion failure on the delegate's result propagates.
	other, err2 := v.NewInstance(v.ObjectClass)
	if err2 != nil {
		t.Fatal(err2)
	}
	ret = other.ToValue()
	if _, err = act.NextEnumerant(p, 0); err == nil {
		t.Error("expected coercion error for object index result")
	}
}

// ---------------------------------------------------------------------------
// Error propagation and reentrancy
// ---------------------------------------------------------------------------

func TestProxyDelegateErrorPropagatesUnchanged(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	boom := errors.New("boom")
	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		return Undefined, boom
	}))

	_, err := act.GetProperty(p, NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("foo")))
	if err != boom {
		t.Errorf("error = %v, want the delegate's error unchanged", err)
	}
}

func TestProxyMissingDelegateMethodPropagates(t *testing.T) {
	// A qualifying namespace with no handler installed is a dispatch
	// failure inside the delegation, not a fallback case.
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, false)

	_, err := act.GetProperty(p, NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("foo")))
	var nsme *NoSuchMethodError
	if !errors.As(err, &nsme) {
		t.Fatalf("error type = %T, want *NoSuchMethodError", err)
	}
	if nsme.Name != "getProperty" {
		t.Errorf("missing method = %q, want getProperty", nsme.Name)
	}
}

func TestProxyDelegateReentrancy(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	var sets int
	v.AddDelegate(cls, DelegateSetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		sets++
		return Undefined, nil
	}))
	// getProperty re-enters SET on the same instance.
	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		mn := NewMultiname([]Namespace{PublicNamespace()}, act.VM().Strings.Intern("inner"))
		if err := act.SetProperty(recv, mn, FromSmallInt(1)); err != nil {
			return Undefined, err
		}
		return act.VM().StringValue("done"), nil
	}))

	res, err := act.GetProperty(p, NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("outer")))
	if err != nil {
		t.Fatalf("reentrant GetProperty failed: %v", err)
	}
	if v.StringContent(res) != "done" {
		t.Errorf("result = %v, want \"done\"", res)
	}
	if sets != 1 {
		t.Errorf("nested delegate calls = %d, want 1", sets)
	}
}

func TestProxyUnboundedRecursionHitsDepthLimit(t *testing.T) {
	v := NewVMWithConfig(Config{MaxFrameDepth: 25})
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		mn := NewMultiname([]Namespace{PublicNamespace()}, act.VM().Strings.Intern("again"))
		return act.GetProperty(recv, mn)
	}))

	_, err := act.GetProperty(p, NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("start")))
	var soe *StackOverflowError
	if !errors.As(err, &soe) {
		t.Fatalf("error type = %T, want *StackOverflowError", err)
	}
	if soe.Limit != 25 {
		t.Errorf("limit = %d, want 25", soe.Limit)
	}
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestEndToEndDynamicProxyGetHit(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	cls, p := newTestProxy(t, v, false)

	v.AddDelegate(cls, DelegateGetProperty, NativeMethod(func(act *Activation, recv Value, args []Value) (Value, error) {
		return act.VM().StringValue("hit"), nil
	}))

	mn := NewMultiname([]Namespace{PublicNamespace()}, v.Strings.Intern("foo"))
	res, err := act.GetProperty(p, mn)
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if v.StringContent(res) != "hit" {
		t.Errorf("result = %v, want \"hit\"", res)
	}
}

func TestEndToEndSealedProxyEmptyNamespaceSet(t *testing.T) {
	v := NewVM()
	act := NewActivation(v)
	_, p := newTestProxy(t, v, true)

	_, err := act.GetProperty(p, NewMultiname(nil, v.Strings.Intern("foo")))
	var upe *UndefinedPropertyError
	if !errors.As(err, &upe) {
		t.Fatalf("error type = %T, want *UndefinedPropertyError", err)
	}
	if !strings.Contains(err.Error(), "foo") {
		t.Errorf("error %q should mention foo", err.Error())
	}
}

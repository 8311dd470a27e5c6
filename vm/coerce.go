package vm

import (
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Coercions
// ---------------------------------------------------------------------------

// CoerceToBoolean converts any value to a boolean. Never fails.
// Undefined, null, false, numeric zero, NaN and the empty string are
// false; everything else is true.
func (vm *VM) CoerceToBoolean(v Value) bool {
	switch {
	case v == True:
		return true
	case v == False, v == Undefined, v == Null:
		return false
	case v.IsSmallInt():
		return v.SmallInt() != 0
	case v.IsString():
		return vm.Strings.Name(v.StringID()) != ""
	case v.IsObject():
		return true
	default:
		f := v.Float64()
		return f != 0 && !math.IsNaN(f)
	}
}

// CoerceToU32 converts a value to an unsigned 32-bit integer using the
// usual modular truncation. Strings coerce through their numeric reading;
// a non-numeric string reads as NaN, which truncates to 0. Only object
// values fail.
func (act *Activation) CoerceToU32(v Value) (uint32, error) {
	switch {
	case v.IsSmallInt():
		return uint32(uint64(v.SmallInt())), nil
	case v == True:
		return 1, nil
	case v == False, v == Undefined, v == Null:
		return 0, nil
	case v.IsString():
		return truncateToU32(stringToNumber(act.vm.Strings.Name(v.StringID()))), nil
	case v.IsObject():
		return 0, &CoercionError{Target: "uint", Value: v}
	default:
		return truncateToU32(v.Float64()), nil
	}
}

// stringToNumber reads a string as a number. Empty and whitespace-only
// strings read as 0; unparseable content reads as NaN.
func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// truncateToU32 truncates toward zero and reduces modulo 2^32.
func truncateToU32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	d := math.Trunc(f)
	m := math.Mod(d, 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

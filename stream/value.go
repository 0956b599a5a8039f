package stream

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindFloat
	KindInt
	KindIPv4
	KindMAC
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindIPv4:
		return "ipv4"
	case KindMAC:
		return "mac"
	}
	return "unknown"
}

// Value is a tagged union over the field types seen in network
// telemetry: 64-bit floats, 64-bit ints, IPv4 addresses and MAC
// addresses, plus an Empty variant used as the zero accumulator and
// as a placeholder where no value applies. The zero Value is Empty.
//
// Value is comparable; records holding equal fields compare equal
// regardless of how the values were built.
type Value struct {
	kind Kind
	f    float64
	i    int64
	ip   netip.Addr
	mac  [6]byte
}

// Float returns a Value holding a 64-bit float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Int returns a Value holding a 64-bit int.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// IPv4 returns a Value holding the given address. Mapped IPv4-in-IPv6
// addresses are unmapped first so equal addresses compare equal.
func IPv4(addr netip.Addr) Value { return Value{kind: KindIPv4, ip: addr.Unmap()} }

// MAC returns a Value holding a 6-byte hardware address.
func MAC(hw [6]byte) Value { return Value{kind: KindMAC, mac: hw} }

// Empty returns the Empty Value.
func Empty() Value { return Value{} }

// ParseIPv4 parses a dotted-quad address into an IPv4 Value.
func ParseIPv4(s string) (Value, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Value{}, err
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return Value{}, fmt.Errorf("parse ipv4 %q: not a v4 address", s)
	}
	return IPv4(addr), nil
}

// ParseMAC parses a colon or dash separated hardware address into a
// MAC Value.
func ParseMAC(s string) (Value, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return Value{}, err
	}
	if len(hw) != 6 {
		return Value{}, fmt.Errorf("parse mac %q: want 6 bytes, have %d", s, len(hw))
	}
	var mac [6]byte
	copy(mac[:], hw)
	return MAC(mac), nil
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the Empty variant.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsInt extracts the int payload, failing with ErrTypeMismatch for any
// other variant.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, typeMismatch("int", v.kind)
	}
	return v.i, nil
}

// AsFloat extracts the float payload, failing with ErrTypeMismatch for
// any other variant.
func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, typeMismatch("float", v.kind)
	}
	return v.f, nil
}

// AsIPv4 extracts the address payload, failing with ErrTypeMismatch
// for any other variant.
func (v Value) AsIPv4() (netip.Addr, error) {
	if v.kind != KindIPv4 {
		return netip.Addr{}, typeMismatch("ipv4", v.kind)
	}
	return v.ip, nil
}

// AsMAC extracts the hardware-address payload, failing with
// ErrTypeMismatch for any other variant.
func (v Value) AsMAC() ([6]byte, error) {
	if v.kind != KindMAC {
		return [6]byte{}, typeMismatch("mac", v.kind)
	}
	return v.mac, nil
}

// String renders v for display and CSV output. MAC addresses render as
// colon-separated lowercase hex, Empty renders as "Empty".
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindIPv4:
		return v.ip.String()
	case KindMAC:
		return net.HardwareAddr(v.mac[:]).String()
	}
	return "Empty"
}

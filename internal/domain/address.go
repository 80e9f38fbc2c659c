package domain

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"lukechampine.com/uint128"
)

// Family is the address family of a network or address.
type Family uint8

const (
	V4 Family = iota
	V6
)

// Bits returns the address width of the family.
func (f Family) Bits() int {
	if f == V6 {
		return 128
	}
	return 32
}

func (f Family) String() string {
	switch f {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Address is an IPv4 or IPv6 address held as its numeric value.
// IPv4 values occupy the low 32 bits of the payload.
type Address struct {
	family Family
	value  uint128.Uint128
}

// AddressFrom builds an address of the given family from its numeric value.
// Bits above the family width are discarded.
func AddressFrom(f Family, v uint128.Uint128) Address {
	if f == V4 {
		v = uint128.From64(v.Lo & 0xffffffff)
	}
	return Address{family: f, value: v}
}

// AddressOf converts a netip.Addr. IPv4-mapped IPv6 addresses stay IPv6.
func AddressOf(a netip.Addr) Address {
	if a.Is4() {
		b := a.As4()
		return Address{family: V4, value: uint128.From64(uint64(binary.BigEndian.Uint32(b[:])))}
	}
	b := a.As16()
	return Address{family: V6, value: uint128.FromBytesBE(b[:])}
}

func (a Address) Family() Family { return a.family }

func (a Address) Value() uint128.Uint128 { return a.value }

// Addr returns the address as a netip.Addr.
func (a Address) Addr() netip.Addr {
	if a.family == V4 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(a.value.Lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	a.value.PutBytesBE(b[:])
	return netip.AddrFrom16(b)
}

// String returns dotted-quad notation for IPv4 and RFC 5952 notation for IPv6.
func (a Address) String() string {
	return a.Addr().String()
}

func (a Address) MarshalText() ([]byte, error) {
	return a.Addr().MarshalText()
}

// Compare orders addresses by family first, then by value.
func (a Address) Compare(b Address) int {
	switch {
	case a.family < b.family:
		return -1
	case a.family > b.family:
		return 1
	}
	return a.value.Cmp(b.value)
}

package domain

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
	"strings"

	"go4.org/netipx"
	"lukechampine.com/uint128"
)

// ErrInvalidPrefix is matched by every *ParseError.
var ErrInvalidPrefix = errors.New("invalid network prefix")

// ParseError reports a range string that is not valid prefix notation.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid network %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidPrefix }

// Network is a parsed range: the masked prefix plus its numeric base.
type Network struct {
	prefix netip.Prefix
	family Family
	base   uint128.Uint128
}

// ParseNetwork parses s as "<address>/<prefix-length>". Host bits are
// cleared, and a bare address is read as a single-address network.
func ParseNetwork(s string) (Network, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Network{}, &ParseError{Input: s, Err: errors.New("empty input")}
	}
	if strings.Contains(in, "%") {
		return Network{}, &ParseError{Input: s, Err: errors.New("zoned addresses are not allowed")}
	}

	if !strings.Contains(in, "/") {
		a, err := netip.ParseAddr(in)
		if err != nil {
			return Network{}, &ParseError{Input: s, Err: err}
		}
		return NetworkFromPrefix(netip.PrefixFrom(a, a.BitLen())), nil
	}

	p, err := netip.ParsePrefix(in)
	if err != nil {
		return Network{}, &ParseError{Input: s, Err: err}
	}
	return NetworkFromPrefix(p), nil
}

// ParseNetworks parses every string in ranges, stopping at the first failure.
func ParseNetworks(ranges []string) ([]Network, error) {
	networks := make([]Network, 0, len(ranges))
	for _, r := range ranges {
		n, err := ParseNetwork(r)
		if err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}
	return networks, nil
}

// NetworkFromPrefix builds a Network from an already valid prefix.
func NetworkFromPrefix(p netip.Prefix) Network {
	p = p.Masked()
	base := AddressOf(p.Addr())
	return Network{prefix: p, family: base.family, base: base.value}
}

func (n Network) Family() Family { return n.family }

func (n Network) Prefix() netip.Prefix { return n.prefix }

// HostBits is the number of address bits not covered by the prefix,
// i.e. log2 of the address count.
func (n Network) HostBits() int {
	return n.family.Bits() - n.prefix.Bits()
}

// Base returns the first address of the network.
func (n Network) Base() Address {
	return Address{family: n.family, value: n.base}
}

// Last returns the final address of the network.
func (n Network) Last() Address {
	return AddressOf(netipx.PrefixLastIP(n.prefix))
}

// LastOffset is the address count minus one. Unlike the count itself it
// always fits in 128 bits.
func (n Network) LastOffset() uint128.Uint128 {
	h := n.HostBits()
	if h == 128 {
		return uint128.Max
	}
	return uint128.From64(1).Lsh(uint(h)).Sub64(1)
}

// Size returns the number of addresses in the network.
func (n Network) Size() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n.HostBits()))
}

func (n Network) Contains(a Address) bool {
	return a.family == n.family && n.prefix.Contains(a.Addr())
}

func (n Network) String() string {
	return n.prefix.String()
}

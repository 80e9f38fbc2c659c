package enumerator

import (
	"github.com/zinrai/netenum-go/internal/domain"
)

type partitionBounds struct {
	exact    int // networks with at most 2^exact addresses are one partition
	min, max int
}

var bounds = map[domain.Family]partitionBounds{
	domain.V4: {exact: 8, min: 8, max: 10},
	domain.V6: {exact: 16, min: 16, max: 20},
}

// PartitionSize returns how many consecutive addresses a cursor walks
// before it moves to the next partition of n.
//
// Small networks (up to 256 IPv4 or 65536 IPv6 addresses) are a single
// partition of their exact size. Larger ones use 2^clamp(log2(count)-8, 8, 10)
// for IPv4 and 2^clamp(log2(count)-16, 16, 20) for IPv6.
func PartitionSize(n domain.Network) uint64 {
	b := bounds[n.Family()]
	log2 := n.HostBits()
	if log2 <= b.exact {
		return 1 << log2
	}
	return 1 << min(max(log2-b.exact, b.min), b.max)
}

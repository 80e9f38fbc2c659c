package enumerator

import (
	"lukechampine.com/uint128"

	"github.com/zinrai/netenum-go/internal/domain"
)

// cursor walks one network in ascending order, one partition at a time.
// Its state is fixed-size regardless of the network size.
type cursor struct {
	family    domain.Family
	base      uint128.Uint128
	last      uint128.Uint128 // offset of the final address
	partition uint64

	start uint128.Uint128 // offset of the current partition
	span  uint64          // addresses in the current partition
	pos   uint64          // next index inside the current partition
	done  bool
}

func newCursor(n domain.Network) *cursor {
	c := &cursor{
		family:    n.Family(),
		base:      n.Base().Value(),
		last:      n.LastOffset(),
		partition: PartitionSize(n),
	}
	c.span = c.clip(uint128.Zero)
	return c
}

// clip returns the length of the partition starting at offset start,
// shortened to end on the final address.
func (c *cursor) clip(start uint128.Uint128) uint64 {
	remaining := c.last.Sub(start)
	if remaining.Cmp64(c.partition-1) < 0 {
		return remaining.Lo + 1
	}
	return c.partition
}

// next returns the next unvisited address, or false once the network is exhausted.
func (c *cursor) next() (domain.Address, bool) {
	if c.done {
		return domain.Address{}, false
	}

	if c.pos == c.span {
		// start+span would pass the final address
		if c.last.Sub(c.start).Cmp64(c.span) < 0 {
			c.done = true
			return domain.Address{}, false
		}
		c.start = c.start.Add64(c.span)
		c.span = c.clip(c.start)
		c.pos = 0
	}

	v := c.base.Add(c.start).Add64(c.pos)
	c.pos++
	return domain.AddressFrom(c.family, v), true
}

package domain

import (
	"context"
)

// RangeSource supplies the ordered list of range strings to enumerate.
type RangeSource interface {
	Ranges(ctx context.Context) ([]string, error)
}

// AddressWriter accepts one enumerated address per call.
type AddressWriter interface {
	WriteAddress(addr Address) error
	Flush() error
}

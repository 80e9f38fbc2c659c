package persistence

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/zinrai/netenum-go/internal/infrastructure/db"
)

// RangeRepository reads ranges from the networks table of an IPAM database.
type RangeRepository struct {
	db         *db.DB
	networkIDs []int64
}

// NewRangeRepository returns a source over every network, or only over
// networkIDs when any are given.
func NewRangeRepository(db *db.DB, networkIDs ...int64) *RangeRepository {
	return &RangeRepository{db: db, networkIDs: networkIDs}
}

// Ranges returns the network CIDRs ordered by id.
func (r *RangeRepository) Ranges(ctx context.Context) ([]string, error) {
	query := `SELECT cidr::text FROM networks ORDER BY id`
	args := []any{}
	if len(r.networkIDs) > 0 {
		query = `SELECT cidr::text FROM networks WHERE id = ANY($1) ORDER BY id`
		args = append(args, pq.Array(r.networkIDs))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	var ranges []string
	for rows.Next() {
		var cidr string
		if err := rows.Scan(&cidr); err != nil {
			return nil, fmt.Errorf("failed to scan network row: %w", err)
		}
		ranges = append(ranges, cidr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	return ranges, nil
}

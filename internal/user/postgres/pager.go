package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// IDPager walks user ids in ascending order with keyset pagination.
type IDPager struct {
	db *sqlx.DB
}

func NewIDPager(db *sqlx.DB) *IDPager {
	return &IDPager{db: db}
}

const idsQuery = `SELECT id FROM users WHERE id > ? ORDER BY id LIMIT ?`

// IDsAfter returns up to limit ids greater than afterID.
func (p *IDPager) IDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	if err := p.db.SelectContext(ctx, &ids, p.db.Rebind(idsQuery), afterID, limit); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

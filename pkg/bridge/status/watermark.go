package status

import (
	"context"
	"database/sql"
	"fmt"
)

// WatermarkStore persists the last finalized block number recorded for a
// named off-chain loop (e.g. "forwarder"), so a restart can report where
// that loop's block subscription last was. Reading it back does not make
// the subscription restart from that block.
type WatermarkStore struct {
	client *Client
}

// NewWatermarkStore builds a WatermarkStore over client.
func NewWatermarkStore(client *Client) *WatermarkStore {
	return &WatermarkStore{client: client}
}

// Watermark returns the last-recorded block number for loopName, or
// ok=false if none has been recorded yet.
func (w *WatermarkStore) Watermark(ctx context.Context, loopName string) (blockNumber uint64, ok bool, err error) {
	row := w.client.db.QueryRowContext(ctx,
		`SELECT block_number FROM forwarder_watermarks WHERE loop_name = $1`, loopName)
	var n int64
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("status: read watermark: %w", err)
	}
	return uint64(n), true, nil
}

// SetWatermark upserts loopName's watermark to blockNumber.
func (w *WatermarkStore) SetWatermark(ctx context.Context, loopName string, blockNumber uint64) error {
	_, err := w.client.db.ExecContext(ctx, `
INSERT INTO forwarder_watermarks (loop_name, block_number, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (loop_name) DO UPDATE SET block_number = EXCLUDED.block_number, updated_at = EXCLUDED.updated_at`,
		loopName, int64(blockNumber))
	if err != nil {
		return fmt.Errorf("status: set watermark: %w", err)
	}
	return nil
}

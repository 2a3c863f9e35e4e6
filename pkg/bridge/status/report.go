package status

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sxt-network/sxt-node/pkg/bridge/submitter"
)

// ReportStore persists the submitter's per-tx StatusReport for the
// structured status spec §7 promises "on request".
type ReportStore struct {
	client *Client
}

// NewReportStore builds a ReportStore over client.
func NewReportStore(client *Client) *ReportStore {
	return &ReportStore{client: client}
}

// Record upserts txID's latest status report.
func (r *ReportStore) Record(ctx context.Context, txID string, report submitter.StatusReport) error {
	_, err := r.client.db.ExecContext(ctx, `
INSERT INTO tx_status_reports (
	tx_id, validated, broadcasted_peers, in_best_block, finalized_in_block,
	dropped_message, invalid_message, error_message, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (tx_id) DO UPDATE SET
	validated = EXCLUDED.validated,
	broadcasted_peers = EXCLUDED.broadcasted_peers,
	in_best_block = EXCLUDED.in_best_block,
	finalized_in_block = EXCLUDED.finalized_in_block,
	dropped_message = EXCLUDED.dropped_message,
	invalid_message = EXCLUDED.invalid_message,
	error_message = EXCLUDED.error_message,
	updated_at = EXCLUDED.updated_at`,
		txID, report.Validated, report.BroadcastedPeers,
		nullableString(report.InBestBlock), nullableString(report.FinalizedInBlock),
		nullableString(report.DroppedMessage), nullableString(report.InvalidMessage),
		nullableString(report.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("status: record report: %w", err)
	}
	return nil
}

// Report returns txID's latest recorded status report, or ok=false if none
// has been recorded.
func (r *ReportStore) Report(ctx context.Context, txID string) (report submitter.StatusReport, ok bool, err error) {
	row := r.client.db.QueryRowContext(ctx, `
SELECT validated, broadcasted_peers, in_best_block, finalized_in_block,
       dropped_message, invalid_message, error_message
FROM tx_status_reports WHERE tx_id = $1`, txID)

	var inBest, finalized, dropped, invalid, errMsg sql.NullString
	if err := row.Scan(&report.Validated, &report.BroadcastedPeers, &inBest, &finalized, &dropped, &invalid, &errMsg); err != nil {
		if err == sql.ErrNoRows {
			return submitter.StatusReport{}, false, nil
		}
		return submitter.StatusReport{}, false, fmt.Errorf("status: read report: %w", err)
	}
	report.InBestBlock = nullToPtr(inBest)
	report.FinalizedInBlock = nullToPtr(finalized)
	report.DroppedMessage = nullToPtr(dropped)
	report.InvalidMessage = nullToPtr(invalid)
	report.ErrorMessage = nullToPtr(errMsg)
	return report, true, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Duplicate resolution types.
const (
	ResolutionMerge        = "merge"
	ResolutionKeepSeparate = "keep_separate"
	ResolutionEscalate     = "escalate"
)

// DuplicateResolution records how a duplicate group was handled, for audit.
type DuplicateResolution struct {
	ResolutionID   string
	EntityType     string // claim, person
	GroupKey       string
	RecordIDs      string // comma-separated
	ResolutionType string
	MasterRecordID string
	Justification  string
	ResolvedBy     string
	ResolvedAt     time.Time
	Status         string // resolved, escalated
}

// ResolutionRepository persists duplicate resolution decisions.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a resolution repository over db.
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Record saves a resolution decision, generating its ID and timestamp.
func (r *ResolutionRepository) Record(ctx context.Context, res *DuplicateResolution) error {
	if res.ResolutionID == "" {
		res.ResolutionID = uuid.NewString()
	}
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now()
	}
	if res.Status == "" {
		res.Status = "resolved"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO duplicate_resolutions
			(resolution_id, entity_type, group_key, record_ids, resolution_type,
			 master_record_id, justification, resolved_by, resolved_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ResolutionID, res.EntityType, res.GroupKey, res.RecordIDs, res.ResolutionType,
		nullString(res.MasterRecordID), res.Justification, nullString(res.ResolvedBy),
		formatTime(res.ResolvedAt), res.Status,
	)
	if err != nil {
		return fmt.Errorf("insert duplicate resolution: %w", err)
	}
	return nil
}

// History returns resolutions for an entity type, newest first. An empty
// entityType returns everything.
func (r *ResolutionRepository) History(ctx context.Context, entityType string) ([]DuplicateResolution, error) {
	query := `SELECT resolution_id, entity_type, group_key, record_ids, resolution_type,
		master_record_id, justification, resolved_by, resolved_at, status
		FROM duplicate_resolutions`
	var args []interface{}
	if entityType != "" {
		query += " WHERE entity_type = ?"
		args = append(args, entityType)
	}
	query += " ORDER BY resolved_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resolutions []DuplicateResolution
	for rows.Next() {
		var res DuplicateResolution
		var masterID, resolvedBy, resolvedAt sql.NullString
		if err := rows.Scan(&res.ResolutionID, &res.EntityType, &res.GroupKey, &res.RecordIDs,
			&res.ResolutionType, &masterID, &res.Justification, &resolvedBy, &resolvedAt, &res.Status); err != nil {
			return nil, err
		}
		res.MasterRecordID = masterID.String
		res.ResolvedBy = resolvedBy.String
		res.ResolvedAt = parseTimeValue(resolvedAt)
		resolutions = append(resolutions, res)
	}
	return resolutions, rows.Err()
}

// IsResolved reports whether a duplicate group key has a recorded, still
// standing resolution.
func (r *ResolutionRepository) IsResolved(ctx context.Context, entityType, groupKey string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duplicate_resolutions
		WHERE entity_type = ? AND group_key = ? AND status = 'resolved'`,
		entityType, groupKey).Scan(&n)
	return n > 0, err
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// ClaimFilter narrows List and Count queries. Zero values match everything.
type ClaimFilter struct {
	Status     string
	ClaimType  string
	Priority   string
	Source     string
	UnitID     string
	AssignedTo string
	Search     string // matches claim_id, case_number, unit_id
	Limit      int
	Offset     int
}

// ClaimHistoryEntry is one audit record: a JSON snapshot of the claim at the
// time of change plus the reason.
type ClaimHistoryEntry struct {
	HistoryID    string
	ClaimUUID    string
	ClaimID      string
	SnapshotData string
	ChangeReason string
	ChangedBy    string
	ChangedAt    time.Time
}

// ClaimStatistics aggregates claim counts for dashboards.
type ClaimStatistics struct {
	Total      int
	ByStatus   map[string]int
	ByType     map[string]int
	ByPriority map[string]int
	Conflicts  int
}

// ClaimRepository persists claims and their audit history.
type ClaimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a claim repository over db.
func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimColumns = `claim_uuid, claim_id, case_number, source, person_ids, unit_id,
	relation_ids, case_status, lifecycle_stage, claim_type, priority, assigned_to,
	assigned_date, awaiting_documents, submission_date, decision_date, notes,
	resolution_notes, review_notes, rejection_reason, has_conflict,
	conflict_claim_ids, legacy_stdm_id, created_at, updated_at, created_by, updated_by`

// Create inserts a new claim.
func (r *ClaimRepository) Create(ctx context.Context, c *models.Claim) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClaimUUID, c.ClaimID, c.CaseNumber, c.Source, c.PersonIDs, c.UnitID,
		c.RelationIDs, c.CaseStatus, c.LifecycleStage, c.ClaimType, c.Priority,
		nullString(c.AssignedTo), formatTimePtr(c.AssignedDate), boolToInt(c.AwaitingDocuments),
		formatTimePtr(c.SubmissionDate), formatTimePtr(c.DecisionDate),
		nullString(c.Notes), nullString(c.ResolutionNotes), nullString(c.ReviewNotes),
		nullString(c.RejectionReason), boolToInt(c.HasConflict), c.ConflictClaimIDs,
		nullString(c.LegacySTDMID), formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		nullString(c.CreatedBy), nullString(c.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert claim %s: %w", c.ClaimID, err)
	}
	return nil
}

// GetByUUID returns the claim with the given UUID.
func (r *ClaimRepository) GetByUUID(ctx context.Context, claimUUID string) (models.Claim, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+claimColumns+" FROM claims WHERE claim_uuid = ?", claimUUID)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Claim{}, apperrors.NewClaimNotFoundError(claimUUID)
	}
	return c, err
}

// GetByID returns the claim with the given human-readable claim ID.
func (r *ClaimRepository) GetByID(ctx context.Context, claimID string) (models.Claim, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+claimColumns+" FROM claims WHERE claim_id = ?", claimID)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Claim{}, apperrors.NewClaimNotFoundError(claimID)
	}
	return c, err
}

// GetByUnit returns all claims against the given unit.
func (r *ClaimRepository) GetByUnit(ctx context.Context, unitID string) ([]models.Claim, error) {
	return r.queryClaims(ctx,
		"SELECT "+claimColumns+" FROM claims WHERE unit_id = ? ORDER BY created_at DESC", unitID)
}

// List returns claims matching the filter, newest first.
func (r *ClaimRepository) List(ctx context.Context, filter ClaimFilter) ([]models.Claim, error) {
	where, args := filter.build()
	query := "SELECT " + claimColumns + " FROM claims" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	return r.queryClaims(ctx, query, args...)
}

// Count returns the number of claims matching the filter.
func (r *ClaimRepository) Count(ctx context.Context, filter ClaimFilter) (int, error) {
	where, args := filter.build()
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM claims"+where, args...).Scan(&n)
	return n, err
}

func (f ClaimFilter) build() (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if f.Status != "" {
		add("case_status = ?", f.Status)
	}
	if f.ClaimType != "" {
		add("claim_type = ?", f.ClaimType)
	}
	if f.Priority != "" {
		add("priority = ?", f.Priority)
	}
	if f.Source != "" {
		add("source = ?", f.Source)
	}
	if f.UnitID != "" {
		add("unit_id = ?", f.UnitID)
	}
	if f.AssignedTo != "" {
		add("assigned_to = ?", f.AssignedTo)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(claim_id LIKE ? OR case_number LIKE ? OR unit_id LIKE ?)")
		args = append(args, like, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update persists all mutable claim fields and bumps updated_at.
func (r *ClaimRepository) Update(ctx context.Context, c *models.Claim) error {
	c.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims SET
			claim_id = ?, case_number = ?, source = ?, person_ids = ?, unit_id = ?,
			relation_ids = ?, case_status = ?, lifecycle_stage = ?, claim_type = ?,
			priority = ?, assigned_to = ?, assigned_date = ?, awaiting_documents = ?,
			submission_date = ?, decision_date = ?, notes = ?, resolution_notes = ?,
			review_notes = ?, rejection_reason = ?, has_conflict = ?,
			conflict_claim_ids = ?, legacy_stdm_id = ?, updated_at = ?, updated_by = ?
		WHERE claim_uuid = ?`,
		c.ClaimID, c.CaseNumber, c.Source, c.PersonIDs, c.UnitID,
		c.RelationIDs, c.CaseStatus, c.LifecycleStage, c.ClaimType,
		c.Priority, nullString(c.AssignedTo), formatTimePtr(c.AssignedDate), boolToInt(c.AwaitingDocuments),
		formatTimePtr(c.SubmissionDate), formatTimePtr(c.DecisionDate),
		nullString(c.Notes), nullString(c.ResolutionNotes), nullString(c.ReviewNotes),
		nullString(c.RejectionReason), boolToInt(c.HasConflict),
		c.ConflictClaimIDs, nullString(c.LegacySTDMID), formatTime(c.UpdatedAt), nullString(c.UpdatedBy),
		c.ClaimUUID,
	)
	if err != nil {
		return fmt.Errorf("update claim %s: %w", c.ClaimUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewClaimNotFoundError(c.ClaimUUID)
	}
	return nil
}

// Delete removes a claim and its history.
func (r *ClaimRepository) Delete(ctx context.Context, claimUUID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM claims WHERE claim_uuid = ?", claimUUID)
	if err != nil {
		return fmt.Errorf("delete claim %s: %w", claimUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewClaimNotFoundError(claimUUID)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM claim_history WHERE claim_uuid = ?", claimUUID); err != nil {
		return fmt.Errorf("delete claim history %s: %w", claimUUID, err)
	}
	return tx.Commit()
}

// SaveHistory records an audit snapshot of the claim's current state.
func (r *ClaimRepository) SaveHistory(ctx context.Context, c *models.Claim, reason, changedBy string) error {
	snapshot, err := json.Marshal(claimSnapshot(c))
	if err != nil {
		return fmt.Errorf("marshal claim snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO claim_history (history_id, claim_uuid, claim_id, snapshot_data, change_reason, changed_by, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), c.ClaimUUID, c.ClaimID, string(snapshot), reason,
		nullString(changedBy), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert claim history %s: %w", c.ClaimUUID, err)
	}
	return nil
}

// UpdateWithHistory snapshots the claim's previous state, then applies the
// update, inside one transaction.
func (r *ClaimRepository) UpdateWithHistory(ctx context.Context, c *models.Claim, reason, changedBy string) error {
	previous, err := r.GetByUUID(ctx, c.ClaimUUID)
	if err != nil {
		return err
	}
	if err := r.SaveHistory(ctx, &previous, reason, changedBy); err != nil {
		return err
	}
	return r.Update(ctx, c)
}

// GetHistory returns the audit trail for a claim, newest first.
func (r *ClaimRepository) GetHistory(ctx context.Context, claimUUID string) ([]ClaimHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT history_id, claim_uuid, claim_id, snapshot_data, change_reason, changed_by, changed_at
		FROM claim_history WHERE claim_uuid = ? ORDER BY changed_at DESC`, claimUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ClaimHistoryEntry
	for rows.Next() {
		var e ClaimHistoryEntry
		var changedBy, changedAt sql.NullString
		if err := rows.Scan(&e.HistoryID, &e.ClaimUUID, &e.ClaimID, &e.SnapshotData,
			&e.ChangeReason, &changedBy, &changedAt); err != nil {
			return nil, err
		}
		e.ChangedBy = changedBy.String
		e.ChangedAt = parseTimeValue(changedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NextCaseNumber allocates the next office case number, CLM-NNNNNN.
func (r *ClaimRepository) NextCaseNumber(ctx context.Context) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT next_value FROM case_number_sequence WHERE id = 1").Scan(&next); err != nil {
		return "", fmt.Errorf("read case number sequence: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE case_number_sequence SET next_value = ? WHERE id = 1", next+1); err != nil {
		return "", fmt.Errorf("advance case number sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return fmt.Sprintf("CLM-%06d", next), nil
}

// Statistics aggregates claim counts by status, type, and priority.
func (r *ClaimRepository) Statistics(ctx context.Context) (ClaimStatistics, error) {
	stats := ClaimStatistics{
		ByStatus:   make(map[string]int),
		ByType:     make(map[string]int),
		ByPriority: make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM claims").Scan(&stats.Total); err != nil {
		return stats, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM claims WHERE has_conflict = 1").Scan(&stats.Conflicts); err != nil {
		return stats, err
	}

	for column, dest := range map[string]map[string]int{
		"case_status": stats.ByStatus,
		"claim_type":  stats.ByType,
		"priority":    stats.ByPriority,
	} {
		if err := r.countBy(ctx, column, dest); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (r *ClaimRepository) countBy(ctx context.Context, column string, dest map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM claims GROUP BY %s", column, column))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		dest[key] = n
	}
	return rows.Err()
}

func (r *ClaimRepository) queryClaims(ctx context.Context, query string, args ...interface{}) ([]models.Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []models.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (models.Claim, error) {
	var c models.Claim
	var assignedTo, assignedDate, submissionDate, decisionDate sql.NullString
	var notes, resolutionNotes, reviewNotes, rejectionReason sql.NullString
	var legacyID, createdBy, updatedBy, createdAt, updatedAt sql.NullString
	var awaitingDocs, hasConflict int

	err := row.Scan(
		&c.ClaimUUID, &c.ClaimID, &c.CaseNumber, &c.Source, &c.PersonIDs, &c.UnitID,
		&c.RelationIDs, &c.CaseStatus, &c.LifecycleStage, &c.ClaimType, &c.Priority,
		&assignedTo, &assignedDate, &awaitingDocs, &submissionDate, &decisionDate,
		&notes, &resolutionNotes, &reviewNotes, &rejectionReason, &hasConflict,
		&c.ConflictClaimIDs, &legacyID, &createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Claim{}, err
	}

	c.AssignedTo = assignedTo.String
	c.AssignedDate = parseTimePtr(assignedDate)
	c.AwaitingDocuments = awaitingDocs != 0
	c.SubmissionDate = parseTimePtr(submissionDate)
	c.DecisionDate = parseTimePtr(decisionDate)
	c.Notes = notes.String
	c.ResolutionNotes = resolutionNotes.String
	c.ReviewNotes = reviewNotes.String
	c.RejectionReason = rejectionReason.String
	c.HasConflict = hasConflict != 0
	c.LegacySTDMID = legacyID.String
	c.CreatedAt = parseTimeValue(createdAt)
	c.UpdatedAt = parseTimeValue(updatedAt)
	c.CreatedBy = createdBy.String
	c.UpdatedBy = updatedBy.String
	return c, nil
}

func claimSnapshot(c *models.Claim) map[string]interface{} {
	return map[string]interface{}{
		"claim_uuid":       c.ClaimUUID,
		"claim_id":         c.ClaimID,
		"case_number":      c.CaseNumber,
		"source":           c.Source,
		"person_ids":       c.PersonIDs,
		"unit_id":          c.UnitID,
		"relation_ids":     c.RelationIDs,
		"case_status":      c.CaseStatus,
		"lifecycle_stage":  c.LifecycleStage,
		"claim_type":       c.ClaimType,
		"priority":         c.Priority,
		"assigned_to":      c.AssignedTo,
		"notes":            c.Notes,
		"resolution_notes": c.ResolutionNotes,
		"review_notes":     c.ReviewNotes,
		"rejection_reason": c.RejectionReason,
		"has_conflict":     c.HasConflict,
		"updated_at":       formatTime(c.UpdatedAt),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// HouseholdRepository persists households.
type HouseholdRepository struct {
	db *sql.DB
}

// NewHouseholdRepository creates a household repository over db.
func NewHouseholdRepository(db *sql.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

const householdColumns = `household_id, unit_id, main_occupant_id, main_occupant_name,
	occupancy_size, male_count, female_count, minors_count, adults_count,
	elderly_count, with_disability_count, occupancy_type, occupancy_nature,
	occupancy_start_date, monthly_rent, notes, created_at, updated_at,
	created_by, updated_by`

// Create inserts a new household.
func (r *HouseholdRepository) Create(ctx context.Context, h *models.Household) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO households (`+householdColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.HouseholdID, h.UnitID, nullString(h.MainOccupantID), nullString(h.MainOccupantName),
		h.OccupancySize, h.MaleCount, h.FemaleCount, h.MinorsCount, h.AdultsCount,
		h.ElderlyCount, h.WithDisabilityCount, nullString(h.OccupancyType), nullString(h.OccupancyNature),
		formatTimePtr(h.OccupancyStartDate), nullFloat(h.MonthlyRent), nullString(h.Notes),
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt), nullString(h.CreatedBy), nullString(h.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert household %s: %w", h.HouseholdID, err)
	}
	return nil
}

// Get returns the household with the given ID.
func (r *HouseholdRepository) Get(ctx context.Context, householdID string) (models.Household, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+householdColumns+" FROM households WHERE household_id = ?", householdID)
	h, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Household{}, apperrors.NewNotFoundError("Household", householdID)
	}
	return h, err
}

// ListByUnit returns the households occupying a unit.
func (r *HouseholdRepository) ListByUnit(ctx context.Context, unitID string) ([]models.Household, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+householdColumns+" FROM households WHERE unit_id = ? ORDER BY created_at", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var households []models.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		households = append(households, h)
	}
	return households, rows.Err()
}

// Update persists all mutable household fields and bumps updated_at.
func (r *HouseholdRepository) Update(ctx context.Context, h *models.Household) error {
	h.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE households SET
			unit_id = ?, main_occupant_id = ?, main_occupant_name = ?,
			occupancy_size = ?, male_count = ?, female_count = ?, minors_count = ?,
			adults_count = ?, elderly_count = ?, with_disability_count = ?,
			occupancy_type = ?, occupancy_nature = ?, occupancy_start_date = ?,
			monthly_rent = ?, notes = ?, updated_at = ?, updated_by = ?
		WHERE household_id = ?`,
		h.UnitID, nullString(h.MainOccupantID), nullString(h.MainOccupantName),
		h.OccupancySize, h.MaleCount, h.FemaleCount, h.MinorsCount,
		h.AdultsCount, h.ElderlyCount, h.WithDisabilityCount,
		nullString(h.OccupancyType), nullString(h.OccupancyNature), formatTimePtr(h.OccupancyStartDate),
		nullFloat(h.MonthlyRent), nullString(h.Notes), formatTime(h.UpdatedAt), nullString(h.UpdatedBy),
		h.HouseholdID,
	)
	if err != nil {
		return fmt.Errorf("update household %s: %w", h.HouseholdID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Household", h.HouseholdID)
	}
	return nil
}

// Delete removes a household.
func (r *HouseholdRepository) Delete(ctx context.Context, householdID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM households WHERE household_id = ?", householdID)
	if err != nil {
		return fmt.Errorf("delete household %s: %w", householdID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Household", householdID)
	}
	return nil
}

func scanHousehold(row rowScanner) (models.Household, error) {
	var h models.Household
	var occupantID, occupantName, occType, occNature, notes sql.NullString
	var startDate, createdAt, updatedAt, createdBy, updatedBy sql.NullString
	var rent sql.NullFloat64

	err := row.Scan(
		&h.HouseholdID, &h.UnitID, &occupantID, &occupantName,
		&h.OccupancySize, &h.MaleCount, &h.FemaleCount, &h.MinorsCount, &h.AdultsCount,
		&h.ElderlyCount, &h.WithDisabilityCount, &occType, &occNature,
		&startDate, &rent, &notes, &createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Household{}, err
	}

	h.MainOccupantID = occupantID.String
	h.MainOccupantName = occupantName.String
	h.OccupancyType = occType.String
	h.OccupancyNature = occNature.String
	h.OccupancyStartDate = parseTimePtr(startDate)
	h.MonthlyRent = rent.Float64
	h.Notes = notes.String
	h.CreatedAt = parseTimeValue(createdAt)
	h.UpdatedAt = parseTimeValue(updatedAt)
	h.CreatedBy = createdBy.String
	h.UpdatedBy = updatedBy.String
	return h, nil
}

// RelationRepository persists person-unit tenure relations.
type RelationRepository struct {
	db *sql.DB
}

// NewRelationRepository creates a relation repository over db.
func NewRelationRepository(db *sql.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

const relationColumns = `relation_id, person_id, unit_id, relation_type,
	relation_type_other_description, ownership_share, tenure_contract_type,
	relation_start_date, relation_end_date, verification_status,
	verification_date, verified_by, relation_notes, evidence_ids,
	created_at, updated_at, created_by, updated_by`

// Create inserts a new relation.
func (r *RelationRepository) Create(ctx context.Context, rel *models.Relation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO person_unit_relations (`+relationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.RelationID, rel.PersonID, rel.UnitID, rel.RelationType,
		nullString(rel.RelationTypeOtherDescription), rel.OwnershipShare, nullString(rel.TenureContractType),
		formatTimePtr(rel.RelationStartDate), formatTimePtr(rel.RelationEndDate), rel.VerificationStatus,
		formatTimePtr(rel.VerificationDate), nullString(rel.VerifiedBy),
		nullString(rel.RelationNotes), rel.EvidenceIDs,
		formatTime(rel.CreatedAt), formatTime(rel.UpdatedAt), nullString(rel.CreatedBy), nullString(rel.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert relation %s: %w", rel.RelationID, err)
	}
	return nil
}

// Get returns the relation with the given ID.
func (r *RelationRepository) Get(ctx context.Context, relationID string) (models.Relation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+relationColumns+" FROM person_unit_relations WHERE relation_id = ?", relationID)
	rel, err := scanRelation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Relation{}, apperrors.NewNotFoundError("Relation", relationID)
	}
	return rel, err
}

// ListByUnit returns relations against a unit.
func (r *RelationRepository) ListByUnit(ctx context.Context, unitID string) ([]models.Relation, error) {
	return r.queryRelations(ctx,
		"SELECT "+relationColumns+" FROM person_unit_relations WHERE unit_id = ? ORDER BY created_at", unitID)
}

// ListByPerson returns relations held by a person.
func (r *RelationRepository) ListByPerson(ctx context.Context, personID string) ([]models.Relation, error) {
	return r.queryRelations(ctx,
		"SELECT "+relationColumns+" FROM person_unit_relations WHERE person_id = ? ORDER BY created_at", personID)
}

// Update persists all mutable relation fields and bumps updated_at.
func (r *RelationRepository) Update(ctx context.Context, rel *models.Relation) error {
	rel.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE person_unit_relations SET
			person_id = ?, unit_id = ?, relation_type = ?,
			relation_type_other_description = ?, ownership_share = ?,
			tenure_contract_type = ?, relation_start_date = ?, relation_end_date = ?,
			verification_status = ?, verification_date = ?, verified_by = ?,
			relation_notes = ?, evidence_ids = ?, updated_at = ?, updated_by = ?
		WHERE relation_id = ?`,
		rel.PersonID, rel.UnitID, rel.RelationType,
		nullString(rel.RelationTypeOtherDescription), rel.OwnershipShare,
		nullString(rel.TenureContractType), formatTimePtr(rel.RelationStartDate), formatTimePtr(rel.RelationEndDate),
		rel.VerificationStatus, formatTimePtr(rel.VerificationDate), nullString(rel.VerifiedBy),
		nullString(rel.RelationNotes), rel.EvidenceIDs, formatTime(rel.UpdatedAt), nullString(rel.UpdatedBy),
		rel.RelationID,
	)
	if err != nil {
		return fmt.Errorf("update relation %s: %w", rel.RelationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Relation", rel.RelationID)
	}
	return nil
}

// RewritePersonReferences repoints relations from one person to another,
// used when merging duplicate person records.
func (r *RelationRepository) RewritePersonReferences(ctx context.Context, fromPersonID, toPersonID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE person_unit_relations SET person_id = ? WHERE person_id = ?", toPersonID, fromPersonID)
	if err != nil {
		return 0, fmt.Errorf("rewrite relations %s -> %s: %w", fromPersonID, toPersonID, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Delete removes a relation.
func (r *RelationRepository) Delete(ctx context.Context, relationID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM person_unit_relations WHERE relation_id = ?", relationID)
	if err != nil {
		return fmt.Errorf("delete relation %s: %w", relationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Relation", relationID)
	}
	return nil
}

func (r *RelationRepository) queryRelations(ctx context.Context, query string, args ...interface{}) ([]models.Relation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []models.Relation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func scanRelation(row rowScanner) (models.Relation, error) {
	var rel models.Relation
	var otherDesc, contractType, verifiedBy, notes sql.NullString
	var startDate, endDate, verifDate, createdAt, updatedAt, createdBy, updatedBy sql.NullString

	err := row.Scan(
		&rel.RelationID, &rel.PersonID, &rel.UnitID, &rel.RelationType,
		&otherDesc, &rel.OwnershipShare, &contractType,
		&startDate, &endDate, &rel.VerificationStatus,
		&verifDate, &verifiedBy, &notes, &rel.EvidenceIDs,
		&createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Relation{}, err
	}

	rel.RelationTypeOtherDescription = otherDesc.String
	rel.TenureContractType = contractType.String
	rel.RelationStartDate = parseTimePtr(startDate)
	rel.RelationEndDate = parseTimePtr(endDate)
	rel.VerificationDate = parseTimePtr(verifDate)
	rel.VerifiedBy = verifiedBy.String
	rel.RelationNotes = notes.String
	rel.CreatedAt = parseTimeValue(createdAt)
	rel.UpdatedAt = parseTimeValue(updatedAt)
	rel.CreatedBy = createdBy.String
	rel.UpdatedBy = updatedBy.String
	return rel, nil
}

// EvidenceRepository persists evidence records backing relations.
type EvidenceRepository struct {
	db *sql.DB
}

// NewEvidenceRepository creates an evidence repository over db.
func NewEvidenceRepository(db *sql.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

const evidenceColumns = `evidence_id, relation_id, document_id, reference_number,
	reference_date, evidence_description, evidence_type, verification_status,
	verification_notes, verified_by, verification_date, created_at, updated_at,
	created_by, updated_by`

// Create inserts a new evidence record.
func (r *EvidenceRepository) Create(ctx context.Context, e *models.Evidence) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO evidence (`+evidenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EvidenceID, e.RelationID, nullString(e.DocumentID), nullString(e.ReferenceNumber),
		formatTimePtr(e.ReferenceDate), e.EvidenceDescription, e.EvidenceType, e.VerificationStatus,
		nullString(e.VerificationNotes), nullString(e.VerifiedBy), formatTimePtr(e.VerificationDate),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt), nullString(e.CreatedBy), nullString(e.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert evidence %s: %w", e.EvidenceID, err)
	}
	return nil
}

// ListByRelation returns the evidence backing a relation.
func (r *EvidenceRepository) ListByRelation(ctx context.Context, relationID string) ([]models.Evidence, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+evidenceColumns+" FROM evidence WHERE relation_id = ? ORDER BY created_at", relationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountByRelation returns how many evidence records back a relation.
func (r *EvidenceRepository) CountByRelation(ctx context.Context, relationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM evidence WHERE relation_id = ?", relationID).Scan(&n)
	return n, err
}

func scanEvidence(row rowScanner) (models.Evidence, error) {
	var e models.Evidence
	var docID, refNumber, verifNotes, verifiedBy sql.NullString
	var refDate, verifDate, createdAt, updatedAt, createdBy, updatedBy sql.NullString

	err := row.Scan(
		&e.EvidenceID, &e.RelationID, &docID, &refNumber,
		&refDate, &e.EvidenceDescription, &e.EvidenceType, &e.VerificationStatus,
		&verifNotes, &verifiedBy, &verifDate, &createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Evidence{}, err
	}

	e.DocumentID = docID.String
	e.ReferenceNumber = refNumber.String
	e.ReferenceDate = parseTimePtr(refDate)
	e.VerificationNotes = verifNotes.String
	e.VerifiedBy = verifiedBy.String
	e.VerificationDate = parseTimePtr(verifDate)
	e.CreatedAt = parseTimeValue(createdAt)
	e.UpdatedAt = parseTimeValue(updatedAt)
	e.CreatedBy = createdBy.String
	e.UpdatedBy = updatedBy.String
	return e, nil
}

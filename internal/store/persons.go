package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// PersonFilter narrows person queries. Zero values match everything.
type PersonFilter struct {
	NationalID string
	Search     string // matches names (Latin and Arabic) and national_id
	Limit      int
	Offset     int
}

// PersonRepository persists persons.
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a person repository over db.
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personColumns = `person_id, first_name, first_name_ar, father_name, father_name_ar,
	mother_name, mother_name_ar, last_name, last_name_ar, gender, year_of_birth,
	nationality, national_id, passport_number, phone_number, mobile_number, email,
	address, is_contact_person, is_deceased, legacy_stdm_id, legacy_stdm_party_type,
	legacy_stdm_social_tenure_id, created_at, updated_at, created_by, updated_by`

// Create inserts a new person.
func (r *PersonRepository) Create(ctx context.Context, p *models.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO persons (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PersonID, p.FirstName, p.FirstNameAr, p.FatherName, p.FatherNameAr,
		p.MotherName, p.MotherNameAr, p.LastName, p.LastNameAr, p.Gender, nullInt(p.YearOfBirth),
		p.Nationality, p.NationalID, nullString(p.PassportNumber), nullString(p.PhoneNumber),
		nullString(p.MobileNumber), nullString(p.Email), nullString(p.Address),
		boolToInt(p.IsContactPerson), boolToInt(p.IsDeceased),
		nullString(p.LegacySTDMID), nullString(p.LegacySTDMPartyType), nullString(p.LegacySTDMSocialTenureID),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullString(p.CreatedBy), nullString(p.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert person %s: %w", p.PersonID, err)
	}
	return nil
}

// Get returns the person with the given ID.
func (r *PersonRepository) Get(ctx context.Context, personID string) (models.Person, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE person_id = ?", personID)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, apperrors.NewNotFoundError("Person", personID)
	}
	return p, err
}

// GetByIDs returns the persons matching the given IDs, preserving lookup
// order where possible. Missing IDs are skipped.
func (r *PersonRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryPersons(ctx,
		"SELECT "+personColumns+" FROM persons WHERE person_id IN ("+placeholders+")", args...)
}

// GetByNationalID returns all persons sharing a national ID.
func (r *PersonRepository) GetByNationalID(ctx context.Context, nationalID string) ([]models.Person, error) {
	return r.queryPersons(ctx,
		"SELECT "+personColumns+" FROM persons WHERE national_id = ? ORDER BY created_at", nationalID)
}

// List returns persons matching the filter, ordered by last name.
func (r *PersonRepository) List(ctx context.Context, filter PersonFilter) ([]models.Person, error) {
	var conds []string
	var args []interface{}
	if filter.NationalID != "" {
		conds = append(conds, "national_id = ?")
		args = append(args, filter.NationalID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		conds = append(conds, `(first_name LIKE ? OR last_name LIKE ?
			OR first_name_ar LIKE ? OR last_name_ar LIKE ? OR national_id LIKE ?)`)
		args = append(args, like, like, like, like, like)
	}

	query := "SELECT " + personColumns + " FROM persons"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY last_name, first_name"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	return r.queryPersons(ctx, query, args...)
}

// Update persists all mutable person fields and bumps updated_at.
func (r *PersonRepository) Update(ctx context.Context, p *models.Person) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE persons SET
			first_name = ?, first_name_ar = ?, father_name = ?, father_name_ar = ?,
			mother_name = ?, mother_name_ar = ?, last_name = ?, last_name_ar = ?,
			gender = ?, year_of_birth = ?, nationality = ?, national_id = ?,
			passport_number = ?, phone_number = ?, mobile_number = ?, email = ?,
			address = ?, is_contact_person = ?, is_deceased = ?, updated_at = ?, updated_by = ?
		WHERE person_id = ?`,
		p.FirstName, p.FirstNameAr, p.FatherName, p.FatherNameAr,
		p.MotherName, p.MotherNameAr, p.LastName, p.LastNameAr,
		p.Gender, nullInt(p.YearOfBirth), p.Nationality, p.NationalID,
		nullString(p.PassportNumber), nullString(p.PhoneNumber), nullString(p.MobileNumber), nullString(p.Email),
		nullString(p.Address), boolToInt(p.IsContactPerson), boolToInt(p.IsDeceased),
		formatTime(p.UpdatedAt), nullString(p.UpdatedBy),
		p.PersonID,
	)
	if err != nil {
		return fmt.Errorf("update person %s: %w", p.PersonID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Person", p.PersonID)
	}
	return nil
}

// Delete removes a person.
func (r *PersonRepository) Delete(ctx context.Context, personID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM persons WHERE person_id = ?", personID)
	if err != nil {
		return fmt.Errorf("delete person %s: %w", personID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Person", personID)
	}
	return nil
}

func (r *PersonRepository) queryPersons(ctx context.Context, query string, args ...interface{}) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func scanPerson(row rowScanner) (models.Person, error) {
	var p models.Person
	var yearOfBirth sql.NullInt64
	var passport, phone, mobile, email, address sql.NullString
	var legacyID, legacyPartyType, legacyTenureID sql.NullString
	var createdAt, updatedAt, createdBy, updatedBy sql.NullString
	var isContact, isDeceased int

	err := row.Scan(
		&p.PersonID, &p.FirstName, &p.FirstNameAr, &p.FatherName, &p.FatherNameAr,
		&p.MotherName, &p.MotherNameAr, &p.LastName, &p.LastNameAr, &p.Gender, &yearOfBirth,
		&p.Nationality, &p.NationalID, &passport, &phone, &mobile, &email,
		&address, &isContact, &isDeceased, &legacyID, &legacyPartyType, &legacyTenureID,
		&createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Person{}, err
	}

	p.YearOfBirth = int(yearOfBirth.Int64)
	p.PassportNumber = passport.String
	p.PhoneNumber = phone.String
	p.MobileNumber = mobile.String
	p.Email = email.String
	p.Address = address.String
	p.IsContactPerson = isContact != 0
	p.IsDeceased = isDeceased != 0
	p.LegacySTDMID = legacyID.String
	p.LegacySTDMPartyType = legacyPartyType.String
	p.LegacySTDMSocialTenureID = legacyTenureID.String
	p.CreatedAt = parseTimeValue(createdAt)
	p.UpdatedAt = parseTimeValue(updatedAt)
	p.CreatedBy = createdBy.String
	p.UpdatedBy = updatedBy.String
	return p, nil
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

package store

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

// Migration is one versioned schema change. Checksum is derived from UpSQL
// so a modified migration is detectable after the fact.
type Migration struct {
	Version  string
	Name     string
	UpSQL    string
	DownSQL  string
	Checksum string
}

// MigrationStatus summarizes applied vs pending migrations.
type MigrationStatus struct {
	CurrentVersion string
	Applied        []string
	Pending        []string
}

// MigrationManager tracks and applies schema changes incrementally.
type MigrationManager struct {
	db         *sql.DB
	logger     zerolog.Logger
	migrations []Migration
}

// NewMigrationManager creates a manager with the full registered migration
// set for the local database.
func NewMigrationManager(db *sql.DB, logger zerolog.Logger) *MigrationManager {
	m := &MigrationManager{db: db, logger: logger}
	m.register()
	for i := range m.migrations {
		if m.migrations[i].Checksum == "" {
			sum := md5.Sum([]byte(m.migrations[i].UpSQL))
			m.migrations[i].Checksum = hex.EncodeToString(sum[:])
		}
	}
	return m
}

func (m *MigrationManager) register() {
	m.migrations = append(m.migrations, Migration{
		Version: "001",
		Name:    "create_core_tables",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS buildings (
				building_uuid TEXT PRIMARY KEY,
				building_id TEXT NOT NULL,
				governorate_code TEXT NOT NULL DEFAULT '01',
				governorate_name TEXT NOT NULL DEFAULT '',
				governorate_name_ar TEXT NOT NULL DEFAULT '',
				district_code TEXT NOT NULL DEFAULT '01',
				district_name TEXT NOT NULL DEFAULT '',
				district_name_ar TEXT NOT NULL DEFAULT '',
				subdistrict_code TEXT NOT NULL DEFAULT '01',
				subdistrict_name TEXT NOT NULL DEFAULT '',
				subdistrict_name_ar TEXT NOT NULL DEFAULT '',
				community_code TEXT NOT NULL DEFAULT '001',
				community_name TEXT NOT NULL DEFAULT '',
				community_name_ar TEXT NOT NULL DEFAULT '',
				neighborhood_code TEXT NOT NULL DEFAULT '001',
				neighborhood_name TEXT NOT NULL DEFAULT '',
				neighborhood_name_ar TEXT NOT NULL DEFAULT '',
				building_number TEXT NOT NULL DEFAULT '00001',
				building_type TEXT NOT NULL DEFAULT 'residential',
				building_status TEXT NOT NULL DEFAULT 'intact',
				number_of_units INTEGER NOT NULL DEFAULT 0,
				number_of_apartments INTEGER NOT NULL DEFAULT 0,
				number_of_shops INTEGER NOT NULL DEFAULT 0,
				number_of_floors INTEGER NOT NULL DEFAULT 1,
				latitude REAL,
				longitude REAL,
				geo_location TEXT,
				legacy_stdm_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_buildings_building_id ON buildings(building_id);
			CREATE INDEX IF NOT EXISTS idx_buildings_neighborhood ON buildings(neighborhood_code);

			CREATE TABLE IF NOT EXISTS property_units (
				unit_uuid TEXT PRIMARY KEY,
				unit_id TEXT NOT NULL,
				building_id TEXT NOT NULL,
				unit_type TEXT NOT NULL DEFAULT 'apartment',
				unit_number TEXT NOT NULL DEFAULT '001',
				floor_number INTEGER NOT NULL DEFAULT 0,
				apartment_number TEXT NOT NULL DEFAULT '',
				apartment_status TEXT NOT NULL DEFAULT 'occupied',
				property_description TEXT NOT NULL DEFAULT '',
				area_sqm REAL,
				legacy_stdm_id TEXT,
				legacy_stdm_party_id TEXT,
				legacy_stdm_spatial_unit_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_units_building ON property_units(building_id);
			CREATE INDEX IF NOT EXISTS idx_units_composite ON property_units(building_id, unit_number);

			CREATE TABLE IF NOT EXISTS persons (
				person_id TEXT PRIMARY KEY,
				first_name TEXT NOT NULL DEFAULT '',
				first_name_ar TEXT NOT NULL DEFAULT '',
				father_name TEXT NOT NULL DEFAULT '',
				father_name_ar TEXT NOT NULL DEFAULT '',
				mother_name TEXT NOT NULL DEFAULT '',
				mother_name_ar TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				last_name_ar TEXT NOT NULL DEFAULT '',
				gender TEXT NOT NULL DEFAULT 'male',
				year_of_birth INTEGER,
				nationality TEXT NOT NULL DEFAULT 'Syrian',
				national_id TEXT NOT NULL DEFAULT '',
				passport_number TEXT,
				phone_number TEXT,
				mobile_number TEXT,
				email TEXT,
				address TEXT,
				is_contact_person INTEGER NOT NULL DEFAULT 0,
				is_deceased INTEGER NOT NULL DEFAULT 0,
				legacy_stdm_id TEXT,
				legacy_stdm_party_type TEXT,
				legacy_stdm_social_tenure_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_persons_national_id ON persons(national_id);
		`,
		DownSQL: `
			DROP TABLE IF EXISTS persons;
			DROP TABLE IF EXISTS property_units;
			DROP TABLE IF EXISTS buildings;
		`,
	})

	m.migrations = append(m.migrations, Migration{
		Version: "002",
		Name:    "create_claims",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS claims (
				claim_uuid TEXT PRIMARY KEY,
				claim_id TEXT NOT NULL,
				case_number TEXT NOT NULL,
				source TEXT NOT NULL DEFAULT 'OFFICE_SUBMISSION',
				person_ids TEXT NOT NULL DEFAULT '',
				unit_id TEXT NOT NULL DEFAULT '',
				relation_ids TEXT NOT NULL DEFAULT '',
				case_status TEXT NOT NULL DEFAULT 'draft',
				lifecycle_stage TEXT NOT NULL DEFAULT 'draft',
				claim_type TEXT NOT NULL DEFAULT 'ownership',
				priority TEXT NOT NULL DEFAULT 'normal',
				assigned_to TEXT,
				assigned_date TEXT,
				awaiting_documents INTEGER NOT NULL DEFAULT 0,
				submission_date TEXT,
				decision_date TEXT,
				notes TEXT,
				resolution_notes TEXT,
				review_notes TEXT,
				rejection_reason TEXT,
				has_conflict INTEGER NOT NULL DEFAULT 0,
				conflict_claim_ids TEXT NOT NULL DEFAULT '',
				legacy_stdm_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(case_status);
			CREATE INDEX IF NOT EXISTS idx_claims_unit ON claims(unit_id);
			CREATE INDEX IF NOT EXISTS idx_claims_case_number ON claims(case_number);

			CREATE TABLE IF NOT EXISTS claim_history (
				history_id TEXT PRIMARY KEY,
				claim_uuid TEXT NOT NULL,
				claim_id TEXT NOT NULL,
				snapshot_data TEXT NOT NULL,
				change_reason TEXT NOT NULL,
				changed_by TEXT,
				changed_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_claim_history_claim ON claim_history(claim_uuid);
		`,
		DownSQL: `
			DROP TABLE IF EXISTS claim_history;
			DROP TABLE IF EXISTS claims;
		`,
	})

	m.migrations = append(m.migrations, Migration{
		Version: "003",
		Name:    "create_relations_households_evidence",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS person_unit_relations (
				relation_id TEXT PRIMARY KEY,
				person_id TEXT NOT NULL,
				unit_id TEXT NOT NULL,
				relation_type TEXT NOT NULL DEFAULT 'owner',
				relation_type_other_description TEXT,
				ownership_share INTEGER NOT NULL DEFAULT 0,
				tenure_contract_type TEXT,
				relation_start_date TEXT,
				relation_end_date TEXT,
				verification_status TEXT NOT NULL DEFAULT 'pending',
				verification_date TEXT,
				verified_by TEXT,
				relation_notes TEXT,
				evidence_ids TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_relations_person ON person_unit_relations(person_id);
			CREATE INDEX IF NOT EXISTS idx_relations_unit ON person_unit_relations(unit_id);

			CREATE TABLE IF NOT EXISTS households (
				household_id TEXT PRIMARY KEY,
				unit_id TEXT NOT NULL,
				main_occupant_id TEXT,
				main_occupant_name TEXT,
				occupancy_size INTEGER NOT NULL DEFAULT 1,
				male_count INTEGER NOT NULL DEFAULT 0,
				female_count INTEGER NOT NULL DEFAULT 0,
				minors_count INTEGER NOT NULL DEFAULT 0,
				adults_count INTEGER NOT NULL DEFAULT 0,
				elderly_count INTEGER NOT NULL DEFAULT 0,
				with_disability_count INTEGER NOT NULL DEFAULT 0,
				occupancy_type TEXT,
				occupancy_nature TEXT,
				occupancy_start_date TEXT,
				monthly_rent REAL,
				notes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_households_unit ON households(unit_id);

			CREATE TABLE IF NOT EXISTS evidence (
				evidence_id TEXT PRIMARY KEY,
				relation_id TEXT NOT NULL,
				document_id TEXT,
				reference_number TEXT,
				reference_date TEXT,
				evidence_description TEXT NOT NULL DEFAULT '',
				evidence_type TEXT NOT NULL DEFAULT 'document',
				verification_status TEXT NOT NULL DEFAULT 'pending',
				verification_notes TEXT,
				verified_by TEXT,
				verification_date TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT,
				updated_by TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_evidence_relation ON evidence(relation_id);
		`,
		DownSQL: `
			DROP TABLE IF EXISTS evidence;
			DROP TABLE IF EXISTS households;
			DROP TABLE IF EXISTS person_unit_relations;
		`,
	})

	m.migrations = append(m.migrations, Migration{
		Version: "004",
		Name:    "create_users",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS users (
				user_id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				email TEXT,
				full_name TEXT NOT NULL DEFAULT '',
				full_name_ar TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'analyst',
				is_active INTEGER NOT NULL DEFAULT 1,
				is_locked INTEGER NOT NULL DEFAULT 0,
				failed_attempts INTEGER NOT NULL DEFAULT 0,
				last_login TEXT,
				last_activity TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				created_by TEXT
			);
		`,
		DownSQL: `DROP TABLE IF EXISTS users;`,
	})

	m.migrations = append(m.migrations, Migration{
		Version: "005",
		Name:    "create_duplicate_resolutions",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS duplicate_resolutions (
				resolution_id TEXT PRIMARY KEY,
				entity_type TEXT NOT NULL,
				group_key TEXT NOT NULL,
				record_ids TEXT NOT NULL,
				resolution_type TEXT NOT NULL,
				master_record_id TEXT,
				justification TEXT NOT NULL,
				resolved_by TEXT,
				resolved_at TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'resolved'
			);
			CREATE INDEX IF NOT EXISTS idx_resolutions_entity ON duplicate_resolutions(entity_type);
		`,
		DownSQL: `DROP TABLE IF EXISTS duplicate_resolutions;`,
	})

	m.migrations = append(m.migrations, Migration{
		Version: "006",
		Name:    "create_case_number_sequence",
		UpSQL: `
			CREATE TABLE IF NOT EXISTS case_number_sequence (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				next_value INTEGER NOT NULL
			);
			INSERT OR IGNORE INTO case_number_sequence (id, next_value) VALUES (1, 1);
		`,
		DownSQL: `DROP TABLE IF EXISTS case_number_sequence;`,
	})
}

func (m *MigrationManager) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			checksum TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

// Applied returns the versions already applied, in order.
func (m *MigrationManager) Applied(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Pending returns migrations not yet applied.
func (m *MigrationManager) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(applied))
	for _, v := range applied {
		seen[v] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !seen[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Migrate applies all pending migrations up to targetVersion ("" = all) and
// returns the applied versions.
func (m *MigrationManager) Migrate(ctx context.Context, targetVersion string) ([]string, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		m.logger.Info().Msg("No pending migrations")
		return nil, nil
	}

	var applied []string
	for _, mig := range pending {
		if targetVersion != "" && mig.Version > targetVersion {
			break
		}
		if err := m.apply(ctx, mig); err != nil {
			return applied, fmt.Errorf("apply migration %s (%s): %w", mig.Version, mig.Name, err)
		}
		applied = append(applied, mig.Version)
		m.logger.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("Applied migration")
	}
	return applied, nil
}

func (m *MigrationManager) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.UpSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)",
		mig.Version, mig.Name, mig.Checksum,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Rollback reverts applied migrations newer than targetVersion, newest
// first, and returns the rolled-back versions. Migrations without DownSQL
// are skipped with a warning.
func (m *MigrationManager) Rollback(ctx context.Context, targetVersion string) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	var rolledBack []string
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if !appliedSet[mig.Version] || mig.Version <= targetVersion {
			continue
		}
		if mig.DownSQL == "" {
			m.logger.Warn().Str("version", mig.Version).Msg("Migration has no rollback SQL")
			continue
		}
		if err := m.revert(ctx, mig); err != nil {
			return rolledBack, fmt.Errorf("rollback migration %s (%s): %w", mig.Version, mig.Name, err)
		}
		rolledBack = append(rolledBack, mig.Version)
		m.logger.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("Rolled back migration")
	}
	return rolledBack, nil
}

func (m *MigrationManager) revert(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.DownSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", mig.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// Status reports the current migration state.
func (m *MigrationManager) Status(ctx context.Context) (MigrationStatus, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return MigrationStatus{}, err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return MigrationStatus{}, err
	}

	status := MigrationStatus{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1]
	}
	for _, mig := range pending {
		status.Pending = append(status.Pending, mig.Version)
	}
	return status, nil
}

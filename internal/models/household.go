package models

import (
	"time"

	"github.com/google/uuid"
)

// Household represents occupancy data for a property unit.
type Household struct {
	HouseholdID string
	UnitID      string

	MainOccupantID   string
	MainOccupantName string // fallback if no person linked

	OccupancySize       int
	MaleCount           int
	FemaleCount         int
	MinorsCount         int // under 18
	AdultsCount         int // 18-59
	ElderlyCount        int // 60+
	WithDisabilityCount int

	OccupancyType      string // owner, tenant, guest
	OccupancyNature    string // permanent, temporary, seasonal
	OccupancyStartDate *time.Time
	MonthlyRent        float64

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewHousehold creates a household with a generated ID and defaults.
func NewHousehold() Household {
	now := time.Now()
	return Household{
		HouseholdID:   uuid.NewString(),
		OccupancySize: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Relation links a person to a unit with a tenure type. Ownership shares are
// expressed out of 2400, following the Syrian cadastral convention.
type Relation struct {
	RelationID string
	PersonID   string
	UnitID     string

	RelationType                 string // owner, tenant, heir, guest, occupant, other
	RelationTypeOtherDescription string

	OwnershipShare     int // 0-2400
	TenureContractType string

	RelationStartDate *time.Time
	RelationEndDate   *time.Time

	VerificationStatus string // pending, verified, rejected
	VerificationDate   *time.Time
	VerifiedBy         string

	RelationNotes string
	EvidenceIDs   string // comma-separated

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewRelation creates a relation with a generated ID and defaults.
func NewRelation() Relation {
	now := time.Now()
	return Relation{
		RelationID:         uuid.NewString(),
		RelationType:       "owner",
		VerificationStatus: "pending",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Evidence supports a person-unit relation: a document reference, witness
// statement, or community attestation.
type Evidence struct {
	EvidenceID string
	RelationID string
	DocumentID string

	ReferenceNumber string
	ReferenceDate   *time.Time

	EvidenceDescription string
	EvidenceType        string // document, witness, community, other

	VerificationStatus string // pending, verified, rejected
	VerificationNotes  string
	VerifiedBy         string
	VerificationDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewEvidence creates evidence with a generated ID and defaults.
func NewEvidence() Evidence {
	now := time.Now()
	return Evidence{
		EvidenceID:         uuid.NewString(),
		EvidenceType:       "document",
		VerificationStatus: "pending",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin           = "admin"
	RoleDataManager     = "data_manager"
	RoleOfficeClerk     = "office_clerk"
	RoleFieldSupervisor = "field_supervisor"
	RoleAnalyst         = "analyst"
)

// User is a local account for authentication and authorization.
type User struct {
	UserID       string
	Username     string
	PasswordHash string // bcrypt

	Email      string
	FullName   string
	FullNameAr string
	Role       string

	IsActive       bool
	IsLocked       bool
	FailedAttempts int

	LastLogin    *time.Time
	LastActivity *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// NewUser creates an active, unlocked user with a generated ID.
func NewUser() User {
	now := time.Now()
	return User{
		UserID:    uuid.NewString(),
		Role:      RoleAnalyst,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Survey is a field or office data-collection record covering a building,
// unit, households, relations, and evidence.
type Survey struct {
	SurveyID string

	BuildingID string
	UnitID     string

	FieldCollectorID string
	SurveyDate       *time.Time
	SurveyType       string
	Status           string // draft, finalized
	ReferenceCode    string
	Source           string // field, office

	Notes string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinalizedAt *time.Time
}

// SurveyContext bundles the fully-enriched survey detail used by review
// flows: the building and unit records, bundled households, the persons
// referenced by the survey relations, and claim summary data.
type SurveyContext struct {
	Building   Building
	Unit       Unit
	Households []Household
	Persons    []Person
	ClaimData  SurveyClaimData
	Claims     []SurveyClaimSummary
}

// SurveyClaimData is the flattened claim view a review surface reads.
type SurveyClaimData struct {
	ClaimType      string
	Priority       string
	Source         string
	CaseStatus     string
	PersonName     string
	UnitDisplayID  string
	BusinessNature string
	SurveyDate     string
	Notes          string
	EvidenceCount  int
}

// SurveyClaimSummary is one linked claim in a survey context.
type SurveyClaimSummary struct {
	ClaimID   string
	ClaimType string
	Status    string
}

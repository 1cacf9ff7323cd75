package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person represents an individual appearing as a claimant, occupant, or
// contact. Name fields are bilingual; NationalID holds the 11-digit Syrian
// national number when known.
type Person struct {
	PersonID string

	FirstName    string
	FirstNameAr  string
	FatherName   string
	FatherNameAr string
	MotherName   string
	MotherNameAr string
	LastName     string
	LastNameAr   string

	Gender      string // male, female
	YearOfBirth int
	Nationality string

	NationalID     string
	PassportNumber string

	PhoneNumber  string
	MobileNumber string
	Email        string
	Address      string

	IsContactPerson bool
	IsDeceased      bool

	LegacySTDMID             string
	LegacySTDMPartyType      string
	LegacySTDMSocialTenureID string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewPerson creates a person with a generated ID and defaults.
func NewPerson() Person {
	now := time.Now()
	return Person{
		PersonID:    uuid.NewString(),
		Gender:      "male",
		Nationality: "Syrian",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FullName joins the non-empty Latin name parts.
func (p *Person) FullName() string {
	return joinNames(p.FirstName, p.FatherName, p.LastName)
}

// FullNameAr joins the non-empty Arabic name parts.
func (p *Person) FullNameAr() string {
	return joinNames(p.FirstNameAr, p.FatherNameAr, p.LastNameAr)
}

func joinNames(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

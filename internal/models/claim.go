package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Claim statuses. The workflow transition table lives in the claim
// controller; these are the only values the store accepts.
const (
	ClaimStatusDraft       = "draft"
	ClaimStatusSubmitted   = "submitted"
	ClaimStatusScreening   = "screening"
	ClaimStatusUnderReview = "under_review"
	ClaimStatusPending     = "pending"
	ClaimStatusAwaitingDoc = "awaiting_docs"
	ClaimStatusConflict    = "conflict"
	ClaimStatusApproved    = "approved"
	ClaimStatusRejected    = "rejected"
	ClaimStatusCancelled   = "cancelled"
)

// Claim sources.
const (
	SourceFieldCollection  = "FIELD_COLLECTION"
	SourceOfficeSubmission = "OFFICE_SUBMISSION"
	SourceSystemImport     = "SYSTEM_IMPORT"
)

// Claim represents a tenure-rights claim over a property unit.
//
// Claim ID format: CL-YYYY-NNNNNN (year of submission + 6-digit sequence).
// CaseNumber is the human-readable office number, CLM-NNNNNN, allocated
// sequentially by the store.
type Claim struct {
	ClaimID    string
	ClaimUUID  string
	CaseNumber string

	Source string

	// Related entities. PersonIDs and RelationIDs are comma-separated to
	// match the backend wire format; use PersonIDList for iteration.
	PersonIDs   string
	UnitID      string
	RelationIDs string

	CaseStatus     string
	LifecycleStage string

	ClaimType string // ownership, occupancy, tenancy
	Priority  string // low, normal, high, urgent

	AssignedTo        string
	AssignedDate      *time.Time
	AwaitingDocuments bool

	SubmissionDate *time.Time
	DecisionDate   *time.Time

	Notes           string
	ResolutionNotes string
	ReviewNotes     string
	RejectionReason string

	HasConflict      bool
	ConflictClaimIDs string

	LegacySTDMID string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewClaim creates a draft claim with generated identifiers and defaults.
func NewClaim() Claim {
	now := time.Now()
	c := Claim{
		ClaimUUID:      uuid.NewString(),
		Source:         SourceOfficeSubmission,
		CaseStatus:     ClaimStatusDraft,
		LifecycleStage: ClaimStatusDraft,
		ClaimType:      "ownership",
		Priority:       "normal",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	c.ClaimID = fmt.Sprintf("CL-%d-%06d", now.Year(), now.UnixNano()%1000000)
	c.CaseNumber = c.ClaimID
	return c
}

// PersonIDList splits the comma-separated claimant IDs.
func (c *Claim) PersonIDList() []string {
	return splitIDList(c.PersonIDs)
}

// RelationIDList splits the comma-separated relation IDs.
func (c *Claim) RelationIDList() []string {
	return splitIDList(c.RelationIDs)
}

// AddPerson appends a claimant ID if not already present.
func (c *Claim) AddPerson(personID string) {
	ids := c.PersonIDList()
	for _, id := range ids {
		if id == personID {
			return
		}
	}
	ids = append(ids, personID)
	c.PersonIDs = strings.Join(ids, ",")
}

var claimStatusDisplay = map[string]string{
	ClaimStatusDraft:       "Draft",
	ClaimStatusSubmitted:   "Submitted",
	ClaimStatusScreening:   "Initial Screening",
	ClaimStatusUnderReview: "Under Review",
	ClaimStatusPending:     "Pending",
	ClaimStatusAwaitingDoc: "Awaiting Documents",
	ClaimStatusConflict:    "Conflict Detected",
	ClaimStatusApproved:    "Approved",
	ClaimStatusRejected:    "Rejected",
	ClaimStatusCancelled:   "Cancelled",
}

var claimStatusDisplayAr = map[string]string{
	ClaimStatusDraft:       "مسودة",
	ClaimStatusSubmitted:   "مقدم",
	ClaimStatusScreening:   "التدقيق الأولي",
	ClaimStatusUnderReview: "قيد المراجعة",
	ClaimStatusPending:     "معلق",
	ClaimStatusAwaitingDoc: "في انتظار الوثائق",
	ClaimStatusConflict:    "تعارض مكتشف",
	ClaimStatusApproved:    "موافق عليه",
	ClaimStatusRejected:    "مرفوض",
	ClaimStatusCancelled:   "ملغى",
}

// StatusDisplay returns the English display name for the claim status.
func (c *Claim) StatusDisplay() string {
	if s, ok := claimStatusDisplay[c.CaseStatus]; ok {
		return s
	}
	return c.CaseStatus
}

// StatusDisplayAr returns the Arabic display name for the claim status.
func (c *Claim) StatusDisplayAr() string {
	if s, ok := claimStatusDisplayAr[c.CaseStatus]; ok {
		return s
	}
	return c.CaseStatus
}

func splitIDList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinIDList is the inverse of the ID list splitting used on Claim fields.
func JoinIDList(ids []string) string {
	return strings.Join(ids, ",")
}

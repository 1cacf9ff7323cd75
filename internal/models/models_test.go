package models

import (
	"fmt"
	"regexp"
	"testing"
	"time"
)

func TestNewClaimDefaults(t *testing.T) {
	t.Parallel()
	c := NewClaim()

	if c.CaseStatus != ClaimStatusDraft {
		t.Errorf("CaseStatus = %q, want draft", c.CaseStatus)
	}
	if c.Source != SourceOfficeSubmission {
		t.Errorf("Source = %q", c.Source)
	}
	if c.ClaimUUID == "" {
		t.Error("ClaimUUID should be generated")
	}

	idPattern := regexp.MustCompile(`^CL-\d{4}-\d{6}$`)
	if !idPattern.MatchString(c.ClaimID) {
		t.Errorf("ClaimID = %q, want CL-YYYY-NNNNNN", c.ClaimID)
	}
	if want := fmt.Sprintf("CL-%d-", time.Now().Year()); c.ClaimID[:8] != want {
		t.Errorf("ClaimID = %q, want year prefix %q", c.ClaimID, want)
	}
}

func TestClaimPersonIDList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ids  string
		want int
	}{
		{"empty", "", 0},
		{"single", "p1", 1},
		{"multiple", "p1,p2,p3", 3},
		{"trims blanks", " p1 , ,p2", 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Claim{PersonIDs: tt.ids}
			if got := c.PersonIDList(); len(got) != tt.want {
				t.Errorf("PersonIDList() = %v, want %d entries", got, tt.want)
			}
		})
	}
}

func TestClaimAddPersonDeduplicates(t *testing.T) {
	t.Parallel()
	c := Claim{}
	c.AddPerson("p1")
	c.AddPerson("p2")
	c.AddPerson("p1")

	if c.PersonIDs != "p1,p2" {
		t.Errorf("PersonIDs = %q, want p1,p2", c.PersonIDs)
	}
}

func TestClaimStatusDisplay(t *testing.T) {
	t.Parallel()
	c := Claim{CaseStatus: ClaimStatusUnderReview}
	if c.StatusDisplay() != "Under Review" {
		t.Errorf("StatusDisplay() = %q", c.StatusDisplay())
	}
	if c.StatusDisplayAr() != "قيد المراجعة" {
		t.Errorf("StatusDisplayAr() = %q", c.StatusDisplayAr())
	}

	unknown := Claim{CaseStatus: "archived"}
	if unknown.StatusDisplay() != "archived" {
		t.Errorf("unknown status should display raw, got %q", unknown.StatusDisplay())
	}
}

func TestPersonFullNameSkipsEmptyParts(t *testing.T) {
	t.Parallel()
	p := Person{FirstName: "Ahmad", LastName: "Khalil"}
	if p.FullName() != "Ahmad Khalil" {
		t.Errorf("FullName() = %q", p.FullName())
	}

	p.FatherName = "Mahmoud"
	if p.FullName() != "Ahmad Mahmoud Khalil" {
		t.Errorf("FullName() = %q", p.FullName())
	}

	ar := Person{FirstNameAr: "أحمد", FatherNameAr: "محمود", LastNameAr: "خليل"}
	if ar.FullNameAr() != "أحمد محمود خليل" {
		t.Errorf("FullNameAr() = %q", ar.FullNameAr())
	}
	if ar.FullName() != "" {
		t.Errorf("FullName() = %q, want empty when no Latin names set", ar.FullName())
	}
}

func TestNewPersonDefaults(t *testing.T) {
	t.Parallel()
	p := NewPerson()
	if p.PersonID == "" {
		t.Error("PersonID should be generated")
	}
	if p.Nationality != "Syrian" {
		t.Errorf("Nationality = %q", p.Nationality)
	}
}

func TestNewBuildingAndUnitDefaults(t *testing.T) {
	t.Parallel()
	b := NewBuilding()
	if b.BuildingType != "residential" || b.BuildingStatus != "intact" {
		t.Errorf("building defaults = %q / %q", b.BuildingType, b.BuildingStatus)
	}
	if b.NumberOfFloors != 1 {
		t.Errorf("NumberOfFloors = %d", b.NumberOfFloors)
	}

	u := NewUnit()
	if u.UnitType != "apartment" || u.UnitNumber != "001" {
		t.Errorf("unit defaults = %q / %q", u.UnitType, u.UnitNumber)
	}
}

func TestJoinIDListRoundTrip(t *testing.T) {
	t.Parallel()
	ids := []string{"p1", "p2", "p3"}
	c := Claim{PersonIDs: JoinIDList(ids)}
	got := c.PersonIDList()
	if len(got) != 3 || got[0] != "p1" || got[2] != "p3" {
		t.Errorf("round trip = %v", got)
	}
}

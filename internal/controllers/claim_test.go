package controllers

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

type claimFixture struct {
	controller *ClaimController
	persons    *store.PersonRepository
	bus        *events.Bus
	ctx        context.Context
}

func newClaimFixture(t *testing.T) claimFixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if _, err := store.NewMigrationManager(db, zerolog.Nop()).Migrate(ctx, ""); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	claims := store.NewClaimRepository(db)
	persons := store.NewPersonRepository(db)
	relations := store.NewRelationRepository(db)
	units := store.NewUnitRepository(db)
	resolutions := store.NewResolutionRepository(db)
	duplicates := services.NewDuplicateService(claims, persons, relations, units, resolutions, zerolog.Nop())

	bus := events.NewBus(zerolog.Nop())
	return claimFixture{
		controller: NewClaimController(bus, zerolog.Nop(), claims, duplicates),
		persons:    persons,
		bus:        bus,
		ctx:        ctx,
	}
}

func (f claimFixture) addPerson(t *testing.T, nationalID string) models.Person {
	t.Helper()
	p := models.NewPerson()
	p.FirstName = "Ahmad"
	p.LastName = "Khalil"
	p.NationalID = nationalID
	if err := f.persons.Create(f.ctx, &p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func (f claimFixture) createClaim(t *testing.T, unitID string) models.Claim {
	t.Helper()
	p := f.addPerson(t, "")
	res := f.controller.Create(f.ctx, ClaimInput{
		UnitID:    unitID,
		PersonIDs: []string{p.PersonID},
	})
	if !res.Success {
		t.Fatalf("create claim: %+v", res)
	}
	return res.Data
}

// ---------------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------------

func TestCreateClaimAssignsCaseNumber(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)

	first := f.createClaim(t, "unit-1")
	second := f.createClaim(t, "unit-2")

	if first.CaseNumber != "CLM-000001" {
		t.Errorf("first case number = %q", first.CaseNumber)
	}
	if second.CaseNumber != "CLM-000002" {
		t.Errorf("second case number = %q", second.CaseNumber)
	}
	if first.CaseStatus != models.ClaimStatusDraft {
		t.Errorf("new claim status = %q, want draft", first.CaseStatus)
	}
}

func TestCreateClaimRequiresUnitAndPersons(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)

	res := f.controller.Create(f.ctx, ClaimInput{})
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2 entries", res.Errors)
	}
	if res.Errors[0] != "Missing required field: unit_id" {
		t.Errorf("Errors[0] = %q", res.Errors[0])
	}
	if res.Errors[1] != "Missing required field: person_ids" {
		t.Errorf("Errors[1] = %q", res.Errors[1])
	}
}

func TestCreateClaimDuplicateWarningDoesNotBlock(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)

	f.createClaim(t, "unit-1")

	p := f.addPerson(t, "")
	res := f.controller.Create(f.ctx, ClaimInput{
		UnitID:    "unit-1",
		PersonIDs: []string{p.PersonID},
	})
	if !res.Success {
		t.Fatalf("duplicate warning must not block the write: %+v", res)
	}
	if !strings.Contains(res.Message, "duplicate warning") {
		t.Errorf("Message = %q, want a duplicate warning", res.Message)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, must be empty on success", res.Errors)
	}

	list := f.controller.List(f.ctx, store.ClaimFilter{UnitID: "unit-1"})
	if len(list.Data) != 2 {
		t.Errorf("claims on unit-1 = %d, want 2", len(list.Data))
	}
}

// ---------------------------------------------------------------------------
// Workflow
// ---------------------------------------------------------------------------

func TestClaimWorkflowHappyPath(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")

	var transitions [][2]string
	f.bus.Subscribe(events.ClaimStatusChanged, func(args ...interface{}) {
		transitions = append(transitions, [2]string{args[1].(string), args[2].(string)})
	})

	if res := f.controller.Submit(f.ctx, claim.ClaimUUID, "clerk1"); !res.Success {
		t.Fatalf("submit: %+v", res)
	}
	if res := f.controller.StartReview(f.ctx, claim.ClaimUUID, "reviewer1"); !res.Success {
		t.Fatalf("start review: %+v", res)
	}
	approved := f.controller.Approve(f.ctx, claim.ClaimUUID, "reviewer1", "evidence verified")
	if !approved.Success {
		t.Fatalf("approve: %+v", approved)
	}

	if approved.Data.CaseStatus != models.ClaimStatusApproved {
		t.Errorf("status = %q, want approved", approved.Data.CaseStatus)
	}
	if approved.Data.DecisionDate == nil {
		t.Error("approval should stamp the decision date")
	}
	if approved.MessageAr != "تمت الموافقة على المطالبة بنجاح" {
		t.Errorf("MessageAr = %q", approved.MessageAr)
	}

	want := [][2]string{
		{models.ClaimStatusDraft, models.ClaimStatusSubmitted},
		{models.ClaimStatusSubmitted, models.ClaimStatusUnderReview},
		{models.ClaimStatusUnderReview, models.ClaimStatusApproved},
	}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestClaimInvalidTransitionRejected(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")

	// Draft claims cannot be approved directly.
	res := f.controller.Approve(f.ctx, claim.ClaimUUID, "reviewer1", "")
	if res.Success {
		t.Fatal("draft -> approved must be rejected")
	}
	if !strings.Contains(res.Message, "cannot change status from draft to approved") {
		t.Errorf("Message = %q", res.Message)
	}

	got := f.controller.Get(f.ctx, claim.ClaimUUID)
	if got.Data.CaseStatus != models.ClaimStatusDraft {
		t.Errorf("status = %q, claim must be unchanged", got.Data.CaseStatus)
	}
}

func TestApprovedClaimIsTerminal(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")

	f.controller.Submit(f.ctx, claim.ClaimUUID, "clerk1")
	f.controller.StartReview(f.ctx, claim.ClaimUUID, "reviewer1")
	f.controller.Approve(f.ctx, claim.ClaimUUID, "reviewer1", "")

	allowed := f.controller.AllowedTransitions(f.ctx, claim.ClaimUUID)
	if !allowed.Success {
		t.Fatalf("allowed transitions: %+v", allowed)
	}
	if len(allowed.Data) != 0 {
		t.Errorf("approved claim transitions = %v, want none", allowed.Data)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")
	f.controller.Submit(f.ctx, claim.ClaimUUID, "clerk1")
	f.controller.StartReview(f.ctx, claim.ClaimUUID, "reviewer1")

	res := f.controller.Reject(f.ctx, claim.ClaimUUID, "reviewer1", "")
	if res.Success {
		t.Fatal("reject without a reason must fail")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Missing required field: rejection_reason" {
		t.Errorf("Errors = %v", res.Errors)
	}

	rejected := f.controller.Reject(f.ctx, claim.ClaimUUID, "reviewer1", "insufficient evidence")
	if !rejected.Success {
		t.Fatalf("reject with reason: %+v", rejected)
	}
	if rejected.Data.RejectionReason != "insufficient evidence" {
		t.Errorf("RejectionReason = %q", rejected.Data.RejectionReason)
	}
}

func TestRejectedClaimCanReturnToReview(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")
	f.controller.Submit(f.ctx, claim.ClaimUUID, "clerk1")
	f.controller.StartReview(f.ctx, claim.ClaimUUID, "reviewer1")
	f.controller.Reject(f.ctx, claim.ClaimUUID, "reviewer1", "missing documents")

	res := f.controller.StartReview(f.ctx, claim.ClaimUUID, "reviewer2")
	if !res.Success {
		t.Fatalf("rejected -> under_review should be allowed: %+v", res)
	}
}

// ---------------------------------------------------------------------------
// Deletion
// ---------------------------------------------------------------------------

func TestDeleteOnlyDraftOrCancelled(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)

	draft := f.createClaim(t, "unit-1")
	if res := f.controller.Delete(f.ctx, draft.ClaimUUID); !res.Success {
		t.Fatalf("draft claim should be deletable: %+v", res)
	}

	submitted := f.createClaim(t, "unit-2")
	f.controller.Submit(f.ctx, submitted.ClaimUUID, "clerk1")
	res := f.controller.Delete(f.ctx, submitted.ClaimUUID)
	if res.Success {
		t.Fatal("submitted claim must not be deletable")
	}
	if !strings.Contains(res.Errors[0], "Only draft or cancelled claims") {
		t.Errorf("Errors = %v", res.Errors)
	}
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestWorkflowWritesHistory(t *testing.T) {
	t.Parallel()
	f := newClaimFixture(t)
	claim := f.createClaim(t, "unit-1")
	f.controller.Submit(f.ctx, claim.ClaimUUID, "clerk1")

	history := f.controller.History(f.ctx, claim.ClaimUUID)
	if !history.Success {
		t.Fatalf("history: %+v", history)
	}
	// One entry for creation, one for submission.
	if len(history.Data) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history.Data))
	}
	if history.Data[0].ChangeReason != "Claim submitted" {
		t.Errorf("newest entry = %q", history.Data[0].ChangeReason)
	}
}

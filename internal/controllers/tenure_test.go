package controllers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/store"
)

func newTenureFixture(t *testing.T) (*TenureController, context.Context) {
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

	controller := NewTenureController(
		events.NewBus(zerolog.Nop()), zerolog.Nop(),
		store.NewRelationRepository(db),
		store.NewEvidenceRepository(db),
		store.NewHouseholdRepository(db),
	)
	return controller, ctx
}

func TestCreateRelationValidatesShare(t *testing.T) {
	t.Parallel()
	c, ctx := newTenureFixture(t)

	res := c.CreateRelation(ctx, models.Relation{
		PersonID:       "p1",
		UnitID:         "u1",
		OwnershipShare: 2401,
	})
	if res.Success {
		t.Fatal("share above 2400 must be rejected")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Ownership share must be between 0 and 2400" {
		t.Errorf("Errors = %v", res.Errors)
	}

	ok := c.CreateRelation(ctx, models.Relation{
		PersonID:       "p1",
		UnitID:         "u1",
		RelationType:   "owner",
		OwnershipShare: 1200,
	})
	if !ok.Success {
		t.Fatalf("create relation: %+v", ok)
	}
	if ok.Data.RelationID == "" {
		t.Error("relation ID should be generated")
	}
}

func TestRelationEvidenceCounting(t *testing.T) {
	t.Parallel()
	c, ctx := newTenureFixture(t)

	rel := c.CreateRelation(ctx, models.Relation{PersonID: "p1", UnitID: "u1", RelationType: "tenant"})
	if !rel.Success {
		t.Fatalf("create relation: %+v", rel)
	}

	for i := 0; i < 2; i++ {
		ev := c.AttachEvidence(ctx, models.Evidence{
			RelationID:   rel.Data.RelationID,
			EvidenceType: "document",
		})
		if !ev.Success {
			t.Fatalf("attach evidence: %+v", ev)
		}
	}

	// Evidence against an unknown relation is refused.
	missing := c.AttachEvidence(ctx, models.Evidence{RelationID: "no-such-relation"})
	if missing.Success {
		t.Fatal("evidence on an unknown relation must fail")
	}

	list := c.RelationsOfUnit(ctx, "u1")
	if !list.Success {
		t.Fatalf("list relations: %+v", list)
	}
	if len(list.Data) != 1 || list.Data[0].EvidenceCount != 2 {
		t.Errorf("relations = %+v, want one with 2 evidence items", list.Data)
	}
}

func TestVerifyRelation(t *testing.T) {
	t.Parallel()
	c, ctx := newTenureFixture(t)

	rel := c.CreateRelation(ctx, models.Relation{PersonID: "p1", UnitID: "u1"})
	if !rel.Success {
		t.Fatalf("create relation: %+v", rel)
	}

	bad := c.VerifyRelation(ctx, rel.Data.RelationID, "maybe", "reviewer1")
	if bad.Success {
		t.Fatal("unknown verification status must be rejected")
	}

	verified := c.VerifyRelation(ctx, rel.Data.RelationID, "verified", "reviewer1")
	if !verified.Success {
		t.Fatalf("verify: %+v", verified)
	}
	if verified.Data.VerificationStatus != "verified" || verified.Data.VerificationDate == nil {
		t.Errorf("relation = %+v", verified.Data)
	}
	if verified.Data.VerifiedBy != "reviewer1" {
		t.Errorf("VerifiedBy = %q", verified.Data.VerifiedBy)
	}
}

func TestHouseholdRoundTrip(t *testing.T) {
	t.Parallel()
	c, ctx := newTenureFixture(t)

	res := c.CreateHousehold(ctx, models.Household{
		UnitID:           "u1",
		MainOccupantName: "أم محمد",
		OccupancyType:    "tenant",
		OccupancySize:    5,
	})
	if !res.Success {
		t.Fatalf("create household: %+v", res)
	}

	noUnit := c.CreateHousehold(ctx, models.Household{})
	if noUnit.Success {
		t.Fatal("household without a unit must be rejected")
	}

	list := c.HouseholdsOfUnit(ctx, "u1")
	if !list.Success || len(list.Data) != 1 {
		t.Fatalf("households = %+v", list)
	}
	if list.Data[0].MainOccupantName != "أم محمد" {
		t.Errorf("MainOccupantName = %q", list.Data[0].MainOccupantName)
	}
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := store.NewMigrationManager(db, zerolog.Nop()).Migrate(context.Background(), ""); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func TestAuthenticateLifecycle(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	users := store.NewUserRepository(db)
	auth := NewAuthService(users, zerolog.Nop())

	created, err := auth.CreateUser(ctx, "clerk1", "s3cret99", "Office Clerk", "موظف المكتب", models.RoleOfficeClerk)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Role != models.RoleOfficeClerk {
		t.Errorf("Role = %q", created.Role)
	}

	user, err := auth.Authenticate(ctx, "clerk1", "s3cret99")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.LastLogin == nil {
		t.Error("login should stamp LastLogin")
	}
	if user.FailedAttempts != 0 {
		t.Errorf("FailedAttempts = %d", user.FailedAttempts)
	}
}

func TestAuthenticateLocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	users := store.NewUserRepository(db)
	auth := NewAuthService(users, zerolog.Nop())

	created, err := auth.CreateUser(ctx, "clerk1", "s3cret99", "", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i := 0; i < MaxFailedAttempts; i++ {
		if _, err := auth.Authenticate(ctx, "clerk1", "wrong"); err == nil {
			t.Fatal("expected authentication failure")
		}
	}

	stored, err := users.Get(ctx, created.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !stored.IsLocked {
		t.Errorf("account should be locked after %d failures", MaxFailedAttempts)
	}

	// The right password no longer works on a locked account.
	if _, err := auth.Authenticate(ctx, "clerk1", "s3cret99"); err == nil {
		t.Fatal("locked account must reject login")
	}

	if err := auth.Unlock(ctx, created.UserID); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "clerk1", "s3cret99"); err != nil {
		t.Errorf("login after unlock: %v", err)
	}
}

func TestAuthenticateUnknownUserIndistinguishable(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	auth := NewAuthService(store.NewUserRepository(db), zerolog.Nop())

	_, err := auth.Authenticate(context.Background(), "nobody", "whatever")
	var unauthorized *apperrors.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %T: %v", err, err)
	}
	if unauthorized.Reason != "invalid username or password" {
		t.Errorf("Reason = %q, must not reveal whether the user exists", unauthorized.Reason)
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	auth := NewAuthService(store.NewUserRepository(db), zerolog.Nop())

	_, err := auth.CreateUser(context.Background(), "clerk1", "abc", "", "", "")
	var validation *apperrors.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %T: %v", err, err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	auth := NewAuthService(store.NewUserRepository(db), zerolog.Nop())

	user, err := auth.CreateUser(ctx, "clerk1", "s3cret99", "", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := auth.ChangePassword(ctx, user.UserID, "wrong", "newpass99"); err == nil {
		t.Fatal("wrong current password must be rejected")
	}
	if err := auth.ChangePassword(ctx, user.UserID, "s3cret99", "newpass99"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "clerk1", "newpass99"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Duplicate detection and resolution
// ---------------------------------------------------------------------------

type duplicateFixture struct {
	service   *DuplicateService
	persons   *store.PersonRepository
	relations *store.RelationRepository
	claims    *store.ClaimRepository
	ctx       context.Context
}

func newDuplicateFixture(t *testing.T) duplicateFixture {
	t.Helper()
	db := testDB(t)
	claims := store.NewClaimRepository(db)
	persons := store.NewPersonRepository(db)
	relations := store.NewRelationRepository(db)
	units := store.NewUnitRepository(db)
	resolutions := store.NewResolutionRepository(db)
	return duplicateFixture{
		service:   NewDuplicateService(claims, persons, relations, units, resolutions, zerolog.Nop()),
		persons:   persons,
		relations: relations,
		claims:    claims,
		ctx:       context.Background(),
	}
}

func (f duplicateFixture) addPerson(t *testing.T, nameAr, nationalID string) models.Person {
	t.Helper()
	p := models.NewPerson()
	p.FirstNameAr = nameAr
	p.NationalID = nationalID
	if err := f.persons.Create(f.ctx, &p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func TestScanPersonsFindsSharedNationalID(t *testing.T) {
	t.Parallel()
	f := newDuplicateFixture(t)

	f.addPerson(t, "احمد", "12345678901")
	f.addPerson(t, "احمد", "12345678901")
	f.addPerson(t, "سمير", "98765432109")

	groups, err := f.service.ScanPersons(f.ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1: %+v", len(groups), groups)
	}
	if groups[0].GroupKey != "national_id:12345678901" {
		t.Errorf("GroupKey = %q", groups[0].GroupKey)
	}
	if len(groups[0].RecordIDs) != 2 {
		t.Errorf("RecordIDs = %v", groups[0].RecordIDs)
	}
}

func TestResolveMergeRewritesAndDeletes(t *testing.T) {
	t.Parallel()
	f := newDuplicateFixture(t)

	master := f.addPerson(t, "احمد", "12345678901")
	dup := f.addPerson(t, "احمد", "12345678901")

	rel := models.NewRelation()
	rel.PersonID = dup.PersonID
	rel.UnitID = "unit-1"
	if err := f.relations.Create(f.ctx, &rel); err != nil {
		t.Fatalf("create relation: %v", err)
	}

	groups, err := f.service.ScanPersons(f.ctx)
	if err != nil || len(groups) != 1 {
		t.Fatalf("scan: %v, groups = %v", err, groups)
	}

	if err := f.service.ResolveMerge(f.ctx, groups[0], master.PersonID, "same person, double entry", "supervisor1"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	// The duplicate is gone, its relation now points to the master.
	if _, err := f.persons.Get(f.ctx, dup.PersonID); err == nil {
		t.Error("duplicate record should be deleted")
	}
	moved, err := f.relations.ListByPerson(f.ctx, master.PersonID)
	if err != nil {
		t.Fatalf("list relations: %v", err)
	}
	if len(moved) != 1 {
		t.Errorf("master relations = %d, want 1", len(moved))
	}

	// The group no longer appears in scans.
	groups, err = f.service.ScanPersons(f.ctx)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("groups after merge = %v, want none", groups)
	}
}

func TestResolveMergeRejectsOutsideMaster(t *testing.T) {
	t.Parallel()
	f := newDuplicateFixture(t)

	group := DuplicateGroup{
		EntityType: "person",
		GroupKey:   "national_id:1",
		RecordIDs:  []string{"p1", "p2"},
	}
	err := f.service.ResolveMerge(f.ctx, group, "p3", "x", "u")
	var validation *apperrors.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %T: %v", err, err)
	}
}

func TestKeepSeparateRequiresJustification(t *testing.T) {
	t.Parallel()
	f := newDuplicateFixture(t)

	group := DuplicateGroup{EntityType: "claim", GroupKey: "unit:u1", RecordIDs: []string{"c1", "c2"}}
	if err := f.service.ResolveKeepSeparate(f.ctx, group, "", "u"); err == nil {
		t.Fatal("empty justification must be rejected")
	}
	if err := f.service.ResolveKeepSeparate(f.ctx, group, "distinct claimants", "u"); err != nil {
		t.Fatalf("keep separate: %v", err)
	}

	history, err := f.service.History(f.ctx, "claim")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ResolutionType != store.ResolutionKeepSeparate {
		t.Errorf("history = %+v", history)
	}
}

func TestScanUnitsFindsDoubleRegistration(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	units := store.NewUnitRepository(db)
	service := NewDuplicateService(
		store.NewClaimRepository(db),
		store.NewPersonRepository(db),
		store.NewRelationRepository(db),
		units,
		store.NewResolutionRepository(db),
		zerolog.Nop(),
	)

	for i := 0; i < 2; i++ {
		u := models.NewUnit()
		u.BuildingID = "01021003001200001"
		u.UnitNumber = "003"
		u.UnitID = u.BuildingID + "-" + u.UnitNumber
		if err := units.Create(ctx, &u); err != nil {
			t.Fatalf("create unit: %v", err)
		}
	}

	groups, err := service.ScanUnits(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want 1", groups)
	}
	if groups[0].GroupKey != "unit_number:01021003001200001/003" {
		t.Errorf("GroupKey = %q", groups[0].GroupKey)
	}
}

func TestScanClaimsSkipsResolvedGroups(t *testing.T) {
	t.Parallel()
	f := newDuplicateFixture(t)

	for i := 0; i < 2; i++ {
		c := models.NewClaim()
		c.UnitID = "unit-1"
		if err := f.claims.Create(f.ctx, &c); err != nil {
			t.Fatalf("create claim: %v", err)
		}
	}

	groups, err := f.service.ScanClaims(f.ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want 1", groups)
	}

	if err := f.service.ResolveKeepSeparate(f.ctx, groups[0], "reviewed", "supervisor1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	groups, err = f.service.ScanClaims(f.ctx)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("resolved group reappeared: %v", groups)
	}
}

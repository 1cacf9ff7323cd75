package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/config"
)

func testClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Backend.BaseURL = server.URL
	cfg.Backend.Username = "clerk1"
	cfg.Backend.Password = "secret"
	cfg.Backend.Timeout = "5s"

	c := NewClient(cfg, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// tokenHandler answers the auth endpoint and delegates everything else.
func tokenHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/token" {
			_ = json.NewEncoder(w).Encode(TokenResponse{
				AccessToken: "test-token",
				TokenType:   "bearer",
				ExpiresIn:   3600,
			})
			return
		}
		next(w, r)
	}
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func TestLoginCachesToken(t *testing.T) {
	t.Parallel()
	var logins int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/token":
			logins++
			_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", ExpiresIn: 3600})
		case "/api/v1/buildings/b1":
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q", got)
			}
			_ = json.NewEncoder(w).Encode(BuildingDTO{BuildingID: "b1"})
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.GetBuilding(ctx, "b1"); err != nil {
			t.Fatalf("get building: %v", err)
		}
	}
	if logins != 1 {
		t.Errorf("logins = %d, want 1 (token should be cached)", logins)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected login error")
	}
	var unauthorized *apperrors.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected ErrUnauthorized, got %T: %v", err, err)
	}
}

// ---------------------------------------------------------------------------
// Buildings and units
// ---------------------------------------------------------------------------

func TestGetBuildingNotFound(t *testing.T) {
	t.Parallel()
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.GetBuilding(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error")
	}
	var notFound *apperrors.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %T: %v", err, err)
	}
	if notFound.Resource != "Building" {
		t.Errorf("Resource = %q, want Building", notFound.Resource)
	}
}

func TestSearchBuildingsParsesPage(t *testing.T) {
	t.Parallel()
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/buildings/search" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("q"); got != "Old City" {
			t.Errorf("q = %q", got)
		}
		_ = json.NewEncoder(w).Encode(pageDTO[BuildingDTO]{
			Items: []BuildingDTO{
				{BuildingID: "01010100100100001", NeighborhoodNameAr: "المدينة القديمة"},
				{BuildingID: "01010100100100002"},
			},
			Total: 12,
		})
	}))

	buildings, total, err := c.SearchBuildings(context.Background(), "Old City", 1, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(buildings) != 2 {
		t.Fatalf("buildings = %d, want 2", len(buildings))
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}
	if buildings[0].NeighborhoodNameAr != "المدينة القديمة" {
		t.Errorf("NeighborhoodNameAr = %q", buildings[0].NeighborhoodNameAr)
	}
}

func TestListUnitsByBuilding(t *testing.T) {
	t.Parallel()
	area := 85.5
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("buildingId"); got != "b1" {
			t.Errorf("buildingId = %q", got)
		}
		_ = json.NewEncoder(w).Encode(pageDTO[UnitDTO]{
			Items: []UnitDTO{{UnitUUID: "u1", BuildingID: "b1", AreaSqm: &area}},
			Total: 1,
		})
	}))

	units, err := c.ListUnitsByBuilding(context.Background(), "b1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("units = %d, want 1", len(units))
	}
	if units[0].AreaSqm != 85.5 {
		t.Errorf("AreaSqm = %v, want 85.5", units[0].AreaSqm)
	}
}

// ---------------------------------------------------------------------------
// Surveys
// ---------------------------------------------------------------------------

func TestGetSurveyContext(t *testing.T) {
	t.Parallel()
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/surveys/s1/context" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(SurveyContextDTO{
			Survey:   SurveyDTO{SurveyID: "s1", Source: "field"},
			Building: BuildingDTO{BuildingID: "b1"},
			Unit:     UnitDTO{UnitUUID: "u1"},
			Persons: []PersonDTO{
				{PersonID: "p1", FirstNameAr: "أحمد", LastNameAr: "خليل"},
			},
			Claims: []SurveyClaimDTO{{ClaimID: "c1", Status: "submitted"}},
			ClaimData: &SurveyClaimDataDTO{
				ClaimType:     "ownership",
				EvidenceCount: 2,
			},
		})
	}))

	sc, err := c.GetSurveyContext(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get context: %v", err)
	}
	if sc.Building.BuildingID != "b1" {
		t.Errorf("BuildingID = %q", sc.Building.BuildingID)
	}
	if len(sc.Persons) != 1 || sc.Persons[0].FullNameAr() != "أحمد خليل" {
		t.Errorf("unexpected persons: %+v", sc.Persons)
	}
	if len(sc.Claims) != 1 || sc.Claims[0].Status != "submitted" {
		t.Errorf("unexpected claims: %+v", sc.Claims)
	}
	if sc.ClaimData.EvidenceCount != 2 {
		t.Errorf("EvidenceCount = %d, want 2", sc.ClaimData.EvidenceCount)
	}
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func TestGzipResponseIsDecompressed(t *testing.T) {
	t.Parallel()
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_ = json.NewEncoder(gz).Encode(BuildingDTO{BuildingID: "b1"})
		_ = gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	}))

	b, err := c.GetBuilding(context.Background(), "b1")
	if err != nil {
		t.Fatalf("get building: %v", err)
	}
	if b.BuildingID != "b1" {
		t.Errorf("BuildingID = %q", b.BuildingID)
	}
}

func TestRetryOnServerError(t *testing.T) {
	t.Parallel()
	var attempts int
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(BuildingDTO{BuildingID: "b1"})
	}))

	b, err := c.GetBuilding(context.Background(), "b1")
	if err != nil {
		t.Fatalf("get building after retries: %v", err)
	}
	if b.BuildingID != "b1" {
		t.Errorf("BuildingID = %q", b.BuildingID)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestParseContentEncoding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"gzip", "gzip"},
		{"GZIP", "gzip"},
		{" br ", "br"},
		{"gzip, br", "br"},
		{"identity, zstd", "zstd"},
	}
	for _, tt := range tests {
		if got := parseContentEncoding(tt.header); got != tt.want {
			t.Errorf("parseContentEncoding(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/api"
	"github.com/trrcms/trrcms/internal/cache"
	"github.com/trrcms/trrcms/internal/models"
)

// fakeBackend overrides the lookup methods; anything else panics through the
// embedded nil interface.
type fakeBackend struct {
	api.Client

	buildingCalls int
	unitListCalls int
}

func (f *fakeBackend) GetBuilding(ctx context.Context, buildingID string) (models.Building, error) {
	f.buildingCalls++
	return models.Building{BuildingID: buildingID, NeighborhoodName: "الميدان"}, nil
}

func (f *fakeBackend) ListUnitsByBuilding(ctx context.Context, buildingID string) ([]models.Unit, error) {
	f.unitListCalls++
	return []models.Unit{
		{UnitID: buildingID + "-001", BuildingID: buildingID},
		{UnitID: buildingID + "-002", BuildingID: buildingID},
	}, nil
}

func newLookupFixture(t *testing.T) (*BuildingLookup, *fakeBackend) {
	t.Helper()
	c, err := cache.New("memory", cache.ProviderConfig{Size: 16})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	backend := &fakeBackend{}
	return NewBuildingLookup(backend, c, zerolog.Nop()), backend
}

func TestGetBuildingCachesResult(t *testing.T) {
	t.Parallel()
	lookup, backend := newLookupFixture(t)
	ctx := context.Background()

	first, err := lookup.GetBuilding(ctx, "01021003001200001")
	if err != nil {
		t.Fatalf("get building: %v", err)
	}
	second, err := lookup.GetBuilding(ctx, "01021003001200001")
	if err != nil {
		t.Fatalf("get building again: %v", err)
	}

	if backend.buildingCalls != 1 {
		t.Errorf("backend calls = %d, want 1 (second hit should come from cache)", backend.buildingCalls)
	}
	if first.NeighborhoodName != second.NeighborhoodName {
		t.Errorf("cached building differs: %+v vs %+v", first, second)
	}
}

func TestUnitsOfBuildingCachesList(t *testing.T) {
	t.Parallel()
	lookup, backend := newLookupFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		units, err := lookup.UnitsOfBuilding(ctx, "01021003001200001")
		if err != nil {
			t.Fatalf("list units: %v", err)
		}
		if len(units) != 2 {
			t.Fatalf("units = %d, want 2", len(units))
		}
	}
	if backend.unitListCalls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.unitListCalls)
	}
}

func TestGetBuildingIgnoresCorruptCacheEntry(t *testing.T) {
	t.Parallel()
	c, err := cache.New("memory", cache.ProviderConfig{Size: 16})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	backend := &fakeBackend{}
	lookup := NewBuildingLookup(backend, c, zerolog.Nop())

	c.Set("building:B1", []byte("{not json"))

	b, err := lookup.GetBuilding(context.Background(), "B1")
	if err != nil {
		t.Fatalf("get building: %v", err)
	}
	if b.BuildingID != "B1" || backend.buildingCalls != 1 {
		t.Errorf("corrupt entry should trigger a fresh fetch, calls = %d", backend.buildingCalls)
	}
}

package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/store"
)

// MaxOwnershipShare is the denominator of the Syrian cadastral share
// convention: a full title is 2400/2400.
const MaxOwnershipShare = 2400

// RelationWithEvidence is a person-unit relation plus its evidence count.
type RelationWithEvidence struct {
	Relation      models.Relation
	EvidenceCount int
}

// TenureController manages person-unit tenure relations, their supporting
// evidence, and household occupancy records.
type TenureController struct {
	Base
	relations  *store.RelationRepository
	evidence   *store.EvidenceRepository
	households *store.HouseholdRepository
}

// NewTenureController creates the tenure controller.
func NewTenureController(
	bus *events.Bus,
	logger zerolog.Logger,
	relations *store.RelationRepository,
	evidence *store.EvidenceRepository,
	households *store.HouseholdRepository,
) *TenureController {
	return &TenureController{
		Base:       NewBase("tenure", bus, logger),
		relations:  relations,
		evidence:   evidence,
		households: households,
	}
}

// CreateRelation validates and persists a person-unit relation.
func (c *TenureController) CreateRelation(ctx context.Context, rel models.Relation) result.OperationResult[models.Relation] {
	return ExecuteMsg(&c.Base, "create_relation",
		"Relation created successfully", "تم إنشاء العلاقة بنجاح",
		func() (models.Relation, error) {
			if err := validateRelation(&rel); err != nil {
				return models.Relation{}, err
			}
			if rel.RelationID == "" {
				base := models.NewRelation()
				rel.RelationID = base.RelationID
				rel.VerificationStatus = base.VerificationStatus
				rel.CreatedAt = base.CreatedAt
				rel.UpdatedAt = base.UpdatedAt
			}
			if err := c.relations.Create(ctx, &rel); err != nil {
				return models.Relation{}, err
			}
			return rel, nil
		})
}

func validateRelation(rel *models.Relation) error {
	var fields []string
	if rel.PersonID == "" {
		fields = append(fields, "Missing required field: person_id")
	}
	if rel.UnitID == "" {
		fields = append(fields, "Missing required field: unit_id")
	}
	if rel.OwnershipShare < 0 || rel.OwnershipShare > MaxOwnershipShare {
		fields = append(fields, fmt.Sprintf("Ownership share must be between 0 and %d", MaxOwnershipShare))
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// RelationsOfUnit returns the relations of a unit with their evidence counts.
func (c *TenureController) RelationsOfUnit(ctx context.Context, unitID string) result.OperationResult[[]RelationWithEvidence] {
	return Execute(&c.Base, "relations_of_unit", func() ([]RelationWithEvidence, error) {
		rels, err := c.relations.ListByUnit(ctx, unitID)
		if err != nil {
			return nil, err
		}
		out := make([]RelationWithEvidence, 0, len(rels))
		for _, rel := range rels {
			count, err := c.evidence.CountByRelation(ctx, rel.RelationID)
			if err != nil {
				return nil, err
			}
			out = append(out, RelationWithEvidence{Relation: rel, EvidenceCount: count})
		}
		return out, nil
	})
}

// AttachEvidence records a piece of evidence supporting a relation.
func (c *TenureController) AttachEvidence(ctx context.Context, ev models.Evidence) result.OperationResult[models.Evidence] {
	return ExecuteMsg(&c.Base, "attach_evidence",
		"Evidence attached successfully", "تم إرفاق الدليل بنجاح",
		func() (models.Evidence, error) {
			if ev.RelationID == "" {
				return models.Evidence{}, apperrors.NewValidationError("Missing required field: relation_id")
			}
			if _, err := c.relations.Get(ctx, ev.RelationID); err != nil {
				return models.Evidence{}, err
			}
			if ev.EvidenceID == "" {
				base := models.NewEvidence()
				ev.EvidenceID = base.EvidenceID
				ev.CreatedAt = base.CreatedAt
			}
			if err := c.evidence.Create(ctx, &ev); err != nil {
				return models.Evidence{}, err
			}
			return ev, nil
		})
}

// VerifyRelation marks a relation verified or rejected after review.
func (c *TenureController) VerifyRelation(ctx context.Context, relationID, status, verifiedBy string) result.OperationResult[models.Relation] {
	return ExecuteMsg(&c.Base, "verify_relation",
		"Relation verification updated", "تم تحديث التحقق من العلاقة",
		func() (models.Relation, error) {
			if status != "verified" && status != "rejected" {
				return models.Relation{}, apperrors.NewValidationError(
					fmt.Sprintf("Invalid verification status: %s", status))
			}
			rel, err := c.relations.Get(ctx, relationID)
			if err != nil {
				return models.Relation{}, err
			}
			now := time.Now()
			rel.VerificationStatus = status
			rel.VerificationDate = &now
			rel.VerifiedBy = verifiedBy
			if err := c.relations.Update(ctx, &rel); err != nil {
				return models.Relation{}, err
			}
			return rel, nil
		})
}

// CreateHousehold persists an occupancy record for a unit.
func (c *TenureController) CreateHousehold(ctx context.Context, h models.Household) result.OperationResult[models.Household] {
	return ExecuteMsg(&c.Base, "create_household",
		"Household created successfully", "تم إنشاء الأسرة بنجاح",
		func() (models.Household, error) {
			if h.UnitID == "" {
				return models.Household{}, apperrors.NewValidationError("Missing required field: unit_id")
			}
			if h.HouseholdID == "" {
				base := models.NewHousehold()
				h.HouseholdID = base.HouseholdID
				if h.OccupancySize == 0 {
					h.OccupancySize = base.OccupancySize
				}
				h.CreatedAt = base.CreatedAt
				h.UpdatedAt = base.UpdatedAt
			}
			if err := c.households.Create(ctx, &h); err != nil {
				return models.Household{}, err
			}
			return h, nil
		})
}

// HouseholdsOfUnit returns the occupancy records of a unit.
func (c *TenureController) HouseholdsOfUnit(ctx context.Context, unitID string) result.OperationResult[[]models.Household] {
	return Execute(&c.Base, "households_of_unit", func() ([]models.Household, error) {
		return c.households.ListByUnit(ctx, unitID)
	})
}

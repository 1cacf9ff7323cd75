package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/store"
)

// DuplicateGroup is one set of records suspected to describe the same claim
// or person.
type DuplicateGroup struct {
	EntityType string // claim, person
	GroupKey   string
	Reason     string
	RecordIDs  []string
}

// DuplicateService detects duplicate claims and persons and applies
// resolution decisions.
type DuplicateService struct {
	claims      *store.ClaimRepository
	persons     *store.PersonRepository
	relations   *store.RelationRepository
	units       *store.UnitRepository
	resolutions *store.ResolutionRepository
	logger      zerolog.Logger
}

// NewDuplicateService creates the duplicate detection service.
func NewDuplicateService(
	claims *store.ClaimRepository,
	persons *store.PersonRepository,
	relations *store.RelationRepository,
	units *store.UnitRepository,
	resolutions *store.ResolutionRepository,
	logger zerolog.Logger,
) *DuplicateService {
	return &DuplicateService{
		claims:      claims,
		persons:     persons,
		relations:   relations,
		units:       units,
		resolutions: resolutions,
		logger:      logger,
	}
}

// ScanClaims finds duplicate claim groups: claims sharing a unit, or
// claimants sharing a national ID across claims. Groups already resolved and
// still standing are skipped.
func (s *DuplicateService) ScanClaims(ctx context.Context) ([]DuplicateGroup, error) {
	all, err := s.claims.List(ctx, store.ClaimFilter{})
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	byUnit := make(map[string][]string)
	for _, c := range all {
		if c.UnitID == "" || c.CaseStatus == models.ClaimStatusCancelled {
			continue
		}
		byUnit[c.UnitID] = append(byUnit[c.UnitID], c.ClaimUUID)
	}

	var groups []DuplicateGroup
	for unitID, ids := range byUnit {
		if len(ids) < 2 {
			continue
		}
		key := "unit:" + unitID
		resolved, err := s.resolutions.IsResolved(ctx, "claim", key)
		if err != nil {
			return nil, err
		}
		if resolved {
			continue
		}
		groups = append(groups, DuplicateGroup{
			EntityType: "claim",
			GroupKey:   key,
			Reason:     fmt.Sprintf("%d claims against unit %s", len(ids), unitID),
			RecordIDs:  ids,
		})
	}

	nationalIDGroups, err := s.claimsBySharedNationalID(ctx, all)
	if err != nil {
		return nil, err
	}
	groups = append(groups, nationalIDGroups...)

	return groups, nil
}

func (s *DuplicateService) claimsBySharedNationalID(ctx context.Context, all []models.Claim) ([]DuplicateGroup, error) {
	claimsByPerson := make(map[string][]string)
	for _, c := range all {
		for _, pid := range c.PersonIDList() {
			claimsByPerson[pid] = append(claimsByPerson[pid], c.ClaimUUID)
		}
	}

	byNationalID := make(map[string]map[string]bool)
	for pid := range claimsByPerson {
		p, err := s.persons.Get(ctx, pid)
		if err != nil {
			continue // dangling reference, not this scan's problem
		}
		if p.NationalID == "" {
			continue
		}
		if byNationalID[p.NationalID] == nil {
			byNationalID[p.NationalID] = make(map[string]bool)
		}
		for _, claimID := range claimsByPerson[pid] {
			byNationalID[p.NationalID][claimID] = true
		}
	}

	var groups []DuplicateGroup
	for nationalID, claimSet := range byNationalID {
		if len(claimSet) < 2 {
			continue
		}
		key := "national_id:" + nationalID
		resolved, err := s.resolutions.IsResolved(ctx, "claim", key)
		if err != nil {
			return nil, err
		}
		if resolved {
			continue
		}
		ids := make([]string, 0, len(claimSet))
		for id := range claimSet {
			ids = append(ids, id)
		}
		groups = append(groups, DuplicateGroup{
			EntityType: "claim",
			GroupKey:   key,
			Reason:     fmt.Sprintf("%d claims filed under national ID %s", len(ids), nationalID),
			RecordIDs:  ids,
		})
	}
	return groups, nil
}

// ScanPersons finds person records sharing a national ID or with highly
// similar names.
func (s *DuplicateService) ScanPersons(ctx context.Context) ([]DuplicateGroup, error) {
	all, err := s.persons.List(ctx, store.PersonFilter{})
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}

	byNationalID := make(map[string][]string)
	for _, p := range all {
		if p.NationalID == "" {
			continue
		}
		byNationalID[p.NationalID] = append(byNationalID[p.NationalID], p.PersonID)
	}

	var groups []DuplicateGroup
	for nationalID, ids := range byNationalID {
		if len(ids) < 2 {
			continue
		}
		key := "national_id:" + nationalID
		resolved, err := s.resolutions.IsResolved(ctx, "person", key)
		if err != nil {
			return nil, err
		}
		if resolved {
			continue
		}
		groups = append(groups, DuplicateGroup{
			EntityType: "person",
			GroupKey:   key,
			Reason:     fmt.Sprintf("%d persons share national ID %s", len(ids), nationalID),
			RecordIDs:  ids,
		})
	}

	// Name similarity only among persons without a national ID; records with
	// one are already covered by the exact grouping above.
	var unidentified []models.Person
	for _, p := range all {
		if p.NationalID == "" {
			unidentified = append(unidentified, p)
		}
	}
	for i := 0; i < len(unidentified); i++ {
		for j := i + 1; j < len(unidentified); j++ {
			a, b := unidentified[i], unidentified[j]
			if !NamesLikelyMatch(a.FullNameAr(), b.FullNameAr()) {
				continue
			}
			key := "name:" + a.PersonID + ":" + b.PersonID
			resolved, err := s.resolutions.IsResolved(ctx, "person", key)
			if err != nil {
				return nil, err
			}
			if resolved {
				continue
			}
			groups = append(groups, DuplicateGroup{
				EntityType: "person",
				GroupKey:   key,
				Reason:     fmt.Sprintf("similar names: %q / %q", a.FullNameAr(), b.FullNameAr()),
				RecordIDs:  []string{a.PersonID, b.PersonID},
			})
		}
	}

	return groups, nil
}

// ScanUnits finds property units registered more than once: the same
// building code and unit number under different UUIDs.
func (s *DuplicateService) ScanUnits(ctx context.Context) ([]DuplicateGroup, error) {
	all, err := s.units.List(ctx, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	byNumber := make(map[string][]string)
	for _, u := range all {
		k := u.BuildingID + "/" + u.UnitNumber
		byNumber[k] = append(byNumber[k], u.UnitUUID)
	}

	var groups []DuplicateGroup
	for k, ids := range byNumber {
		if len(ids) < 2 {
			continue
		}
		key := "unit_number:" + k
		resolved, err := s.resolutions.IsResolved(ctx, "unit", key)
		if err != nil {
			return nil, err
		}
		if resolved {
			continue
		}
		groups = append(groups, DuplicateGroup{
			EntityType: "unit",
			GroupKey:   key,
			Reason:     fmt.Sprintf("%d units registered as %s", len(ids), k),
			RecordIDs:  ids,
		})
	}
	return groups, nil
}

// CheckNewClaim reports duplicate warnings for a claim about to be created:
// existing claims on the same unit, and existing claims by the same national
// IDs. It never blocks the write; callers surface the warning.
func (s *DuplicateService) CheckNewClaim(ctx context.Context, c *models.Claim) ([]string, error) {
	var warnings []string

	if c.UnitID != "" {
		existing, err := s.claims.GetByUnit(ctx, c.UnitID)
		if err != nil {
			return nil, err
		}
		var active int
		for _, other := range existing {
			if other.ClaimUUID != c.ClaimUUID && other.CaseStatus != models.ClaimStatusCancelled {
				active++
			}
		}
		if active > 0 {
			warnings = append(warnings,
				fmt.Sprintf("%d existing claim(s) already filed against unit %s", active, c.UnitID))
		}
	}

	for _, pid := range c.PersonIDList() {
		p, err := s.persons.Get(ctx, pid)
		if err != nil || p.NationalID == "" {
			continue
		}
		twins, err := s.persons.GetByNationalID(ctx, p.NationalID)
		if err != nil {
			return nil, err
		}
		if len(twins) > 1 {
			warnings = append(warnings,
				fmt.Sprintf("national ID %s appears on %d person records", p.NationalID, len(twins)))
		}
	}

	return warnings, nil
}

// ResolveMerge merges duplicate persons: relations referencing the
// duplicates are rewritten to the master record, the duplicates are deleted,
// and the decision is logged.
func (s *DuplicateService) ResolveMerge(ctx context.Context, group DuplicateGroup, masterID, justification, resolvedBy string) error {
	if group.EntityType != "person" {
		return apperrors.NewValidationError("merge resolution is only supported for person duplicates")
	}
	var isMember bool
	for _, id := range group.RecordIDs {
		if id == masterID {
			isMember = true
			break
		}
	}
	if !isMember {
		return apperrors.NewValidationError("master record must be part of the duplicate group")
	}

	for _, id := range group.RecordIDs {
		if id == masterID {
			continue
		}
		rewritten, err := s.relations.RewritePersonReferences(ctx, id, masterID)
		if err != nil {
			return err
		}
		if err := s.persons.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info().
			Str("merged", id).
			Str("master", masterID).
			Int("relations_rewritten", rewritten).
			Msg("Merged duplicate person")
	}

	return s.resolutions.Record(ctx, &store.DuplicateResolution{
		EntityType:     group.EntityType,
		GroupKey:       group.GroupKey,
		RecordIDs:      strings.Join(group.RecordIDs, ","),
		ResolutionType: store.ResolutionMerge,
		MasterRecordID: masterID,
		Justification:  justification,
		ResolvedBy:     resolvedBy,
	})
}

// ResolveKeepSeparate records that a duplicate group was reviewed and the
// records are genuinely distinct.
func (s *DuplicateService) ResolveKeepSeparate(ctx context.Context, group DuplicateGroup, justification, resolvedBy string) error {
	if justification == "" {
		return apperrors.NewValidationError("a justification is required to keep records separate")
	}
	return s.resolutions.Record(ctx, &store.DuplicateResolution{
		EntityType:     group.EntityType,
		GroupKey:       group.GroupKey,
		RecordIDs:      strings.Join(group.RecordIDs, ","),
		ResolutionType: store.ResolutionKeepSeparate,
		Justification:  justification,
		ResolvedBy:     resolvedBy,
	})
}

// Escalate marks a duplicate group for supervisor review.
func (s *DuplicateService) Escalate(ctx context.Context, group DuplicateGroup, justification, resolvedBy string) error {
	return s.resolutions.Record(ctx, &store.DuplicateResolution{
		EntityType:     group.EntityType,
		GroupKey:       group.GroupKey,
		RecordIDs:      strings.Join(group.RecordIDs, ","),
		ResolutionType: store.ResolutionEscalate,
		Justification:  justification,
		ResolvedBy:     resolvedBy,
		Status:         "escalated",
	})
}

// History returns past resolution decisions for an entity type.
func (s *DuplicateService) History(ctx context.Context, entityType string) ([]store.DuplicateResolution, error) {
	return s.resolutions.History(ctx, entityType)
}

// PendingCounts returns how many unresolved duplicate groups exist per
// entity type.
func (s *DuplicateService) PendingCounts(ctx context.Context) (map[string]int, error) {
	claimGroups, err := s.ScanClaims(ctx)
	if err != nil {
		return nil, err
	}
	personGroups, err := s.ScanPersons(ctx)
	if err != nil {
		return nil, err
	}
	unitGroups, err := s.ScanUnits(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"claim":  len(claimGroups),
		"person": len(personGroups),
		"unit":   len(unitGroups),
	}, nil
}

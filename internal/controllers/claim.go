package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

// claimTransitions is the workflow table: which statuses a claim may move to
// from each current status. Terminal statuses map to an empty list.
var claimTransitions = map[string][]string{
	models.ClaimStatusDraft:       {models.ClaimStatusSubmitted, models.ClaimStatusCancelled},
	models.ClaimStatusSubmitted:   {models.ClaimStatusUnderReview, models.ClaimStatusDraft, models.ClaimStatusCancelled},
	models.ClaimStatusUnderReview: {models.ClaimStatusApproved, models.ClaimStatusRejected, models.ClaimStatusPending},
	models.ClaimStatusPending:     {models.ClaimStatusUnderReview, models.ClaimStatusApproved, models.ClaimStatusRejected},
	models.ClaimStatusApproved:    {},
	models.ClaimStatusRejected:    {models.ClaimStatusUnderReview},
	models.ClaimStatusCancelled:   {},
}

// CanTransition reports whether the workflow allows moving a claim from one
// status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range claimTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ClaimInput carries the caller-supplied fields for creating or updating a
// claim.
type ClaimInput struct {
	UnitID    string
	PersonIDs []string
	ClaimType string
	Priority  string
	Source    string
	Notes     string
	CreatedBy string
}

// ClaimController owns the claim lifecycle: creation with duplicate
// screening, workflow status changes with audit history, and queries.
type ClaimController struct {
	Base
	claims     *store.ClaimRepository
	duplicates *services.DuplicateService
}

// NewClaimController creates the claim controller.
func NewClaimController(
	bus *events.Bus,
	logger zerolog.Logger,
	claims *store.ClaimRepository,
	duplicates *services.DuplicateService,
) *ClaimController {
	return &ClaimController{
		Base:       NewBase("claim", bus, logger),
		claims:     claims,
		duplicates: duplicates,
	}
}

// Create validates and persists a new draft claim. Duplicate hits are a
// warning carried in the result message; the write still proceeds.
func (c *ClaimController) Create(ctx context.Context, input ClaimInput) result.OperationResult[models.Claim] {
	var warnings []string
	res := Execute(&c.Base, "create", func() (models.Claim, error) {
		if err := validateClaimInput(input); err != nil {
			return models.Claim{}, err
		}

		claim := models.NewClaim()
		claim.UnitID = input.UnitID
		claim.PersonIDs = models.JoinIDList(input.PersonIDs)
		if input.ClaimType != "" {
			claim.ClaimType = input.ClaimType
		}
		if input.Priority != "" {
			claim.Priority = input.Priority
		}
		if input.Source != "" {
			claim.Source = input.Source
		}
		claim.Notes = input.Notes
		claim.CreatedBy = input.CreatedBy

		caseNumber, err := c.claims.NextCaseNumber(ctx)
		if err != nil {
			return models.Claim{}, err
		}
		claim.CaseNumber = caseNumber

		warnings, err = c.duplicates.CheckNewClaim(ctx, &claim)
		if err != nil {
			// Screening trouble never blocks the filing.
			c.logger.Warn().Err(err).Msg("Duplicate screening failed")
			warnings = nil
		}

		if err := c.claims.Create(ctx, &claim); err != nil {
			return models.Claim{}, err
		}
		if err := c.claims.SaveHistory(ctx, &claim, "Claim created", input.CreatedBy); err != nil {
			return models.Claim{}, err
		}

		c.bus.Publish(events.ClaimCreated, claim.ClaimUUID)
		return claim, nil
	})

	if res.Success {
		if len(warnings) > 0 {
			res.Message = "Claim created with duplicate warning: " + strings.Join(warnings, "; ")
			res.MessageAr = "تم إنشاء المطالبة مع تحذير من التكرار"
		} else {
			res.Message = "Claim created successfully"
			res.MessageAr = "تم إنشاء المطالبة بنجاح"
		}
	}
	return res
}

func validateClaimInput(input ClaimInput) error {
	var fields []string
	if input.UnitID == "" {
		fields = append(fields, "Missing required field: unit_id")
	}
	if len(input.PersonIDs) == 0 {
		fields = append(fields, "Missing required field: person_ids")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// Get returns one claim by UUID and announces the selection.
func (c *ClaimController) Get(ctx context.Context, claimUUID string) result.OperationResult[models.Claim] {
	res := Execute(&c.Base, "get", func() (models.Claim, error) {
		return c.claims.GetByUUID(ctx, claimUUID)
	})
	if res.Success {
		c.bus.Publish(events.ClaimSelected, claimUUID)
	}
	return res
}

// List returns claims matching the filter and announces the load.
func (c *ClaimController) List(ctx context.Context, filter store.ClaimFilter) result.OperationResult[[]models.Claim] {
	res := Execute(&c.Base, "list", func() ([]models.Claim, error) {
		return c.claims.List(ctx, filter)
	})
	if res.Success {
		c.bus.Publish(events.ClaimsLoaded, len(res.Data))
	}
	return res
}

// Update persists edits to claim fields that are not workflow-controlled.
func (c *ClaimController) Update(ctx context.Context, claim models.Claim, updatedBy string) result.OperationResult[models.Claim] {
	res := ExecuteMsg(&c.Base, "update",
		"Claim updated successfully", "تم تحديث المطالبة بنجاح",
		func() (models.Claim, error) {
			if claim.UnitID == "" {
				return models.Claim{}, apperrors.NewValidationError("Missing required field: unit_id")
			}
			claim.UpdatedBy = updatedBy
			if err := c.claims.UpdateWithHistory(ctx, &claim, "Claim updated", updatedBy); err != nil {
				return models.Claim{}, err
			}
			return claim, nil
		})
	if res.Success {
		c.bus.Publish(events.ClaimUpdated, claim.ClaimUUID)
	}
	return res
}

// Delete removes a claim. Only draft and cancelled claims may be deleted;
// everything else stays for the audit trail.
func (c *ClaimController) Delete(ctx context.Context, claimUUID string) result.OperationResult[string] {
	res := ExecuteMsg(&c.Base, "delete",
		"Claim deleted successfully", "تم حذف المطالبة بنجاح",
		func() (string, error) {
			claim, err := c.claims.GetByUUID(ctx, claimUUID)
			if err != nil {
				return "", err
			}
			if claim.CaseStatus != models.ClaimStatusDraft && claim.CaseStatus != models.ClaimStatusCancelled {
				return "", apperrors.NewValidationError(
					fmt.Sprintf("Only draft or cancelled claims can be deleted (status: %s)", claim.CaseStatus))
			}
			if err := c.claims.Delete(ctx, claimUUID); err != nil {
				return "", err
			}
			return claimUUID, nil
		})
	if res.Success {
		c.bus.Publish(events.ClaimDeleted, claimUUID)
	}
	return res
}

// Submit moves a draft claim into the review queue and stamps the
// submission date.
func (c *ClaimController) Submit(ctx context.Context, claimUUID, submittedBy string) result.OperationResult[models.Claim] {
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusSubmitted, "Claim submitted", submittedBy,
		"Claim submitted successfully", "تم تقديم المطالبة بنجاح",
		func(claim *models.Claim) {
			now := time.Now()
			claim.SubmissionDate = &now
		})
}

// StartReview moves a submitted or pending claim under review.
func (c *ClaimController) StartReview(ctx context.Context, claimUUID, reviewer string) result.OperationResult[models.Claim] {
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusUnderReview, "Review started", reviewer,
		"Claim moved under review", "المطالبة قيد المراجعة الآن",
		func(claim *models.Claim) {
			claim.AssignedTo = reviewer
			now := time.Now()
			claim.AssignedDate = &now
		})
}

// Approve resolves a claim in the claimant's favor.
func (c *ClaimController) Approve(ctx context.Context, claimUUID, approvedBy, notes string) result.OperationResult[models.Claim] {
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusApproved, "Claim approved", approvedBy,
		"Claim approved successfully", "تمت الموافقة على المطالبة بنجاح",
		func(claim *models.Claim) {
			now := time.Now()
			claim.DecisionDate = &now
			claim.ResolutionNotes = notes
		})
}

// Reject resolves a claim against the claimant. A reason is required.
func (c *ClaimController) Reject(ctx context.Context, claimUUID, rejectedBy, reason string) result.OperationResult[models.Claim] {
	if reason == "" {
		// Validate before entering the workflow so no history is written.
		res := Execute(&c.Base, "reject", func() (models.Claim, error) {
			return models.Claim{}, apperrors.NewValidationError("Missing required field: rejection_reason")
		})
		return res
	}
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusRejected, "Claim rejected", rejectedBy,
		"Claim rejected", "تم رفض المطالبة",
		func(claim *models.Claim) {
			now := time.Now()
			claim.DecisionDate = &now
			claim.RejectionReason = reason
		})
}

// MarkPending parks an under-review claim awaiting further information.
func (c *ClaimController) MarkPending(ctx context.Context, claimUUID, changedBy string) result.OperationResult[models.Claim] {
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusPending, "Claim marked pending", changedBy,
		"Claim marked as pending", "تم تعليق المطالبة",
		nil)
}

// Cancel withdraws a draft or submitted claim.
func (c *ClaimController) Cancel(ctx context.Context, claimUUID, cancelledBy string) result.OperationResult[models.Claim] {
	return c.changeStatus(ctx, claimUUID, models.ClaimStatusCancelled, "Claim cancelled", cancelledBy,
		"Claim cancelled", "تم إلغاء المطالبة",
		nil)
}

// changeStatus applies one workflow transition with validation, audit
// history, and a status-change event. mutate may adjust dates and notes
// before the write.
func (c *ClaimController) changeStatus(
	ctx context.Context,
	claimUUID, newStatus, reason, changedBy string,
	message, messageAr string,
	mutate func(*models.Claim),
) result.OperationResult[models.Claim] {
	var previousStatus string
	res := ExecuteMsg(&c.Base, "change_status", message, messageAr,
		func() (models.Claim, error) {
			claim, err := c.claims.GetByUUID(ctx, claimUUID)
			if err != nil {
				return models.Claim{}, err
			}
			if !CanTransition(claim.CaseStatus, newStatus) {
				return models.Claim{}, &apperrors.ErrStatusTransition{From: claim.CaseStatus, To: newStatus}
			}

			previousStatus = claim.CaseStatus
			claim.CaseStatus = newStatus
			claim.LifecycleStage = newStatus
			claim.UpdatedBy = changedBy
			if mutate != nil {
				mutate(&claim)
			}

			if err := c.claims.UpdateWithHistory(ctx, &claim, reason, changedBy); err != nil {
				return models.Claim{}, err
			}
			return claim, nil
		})

	if res.Success {
		c.bus.Publish(events.ClaimStatusChanged, claimUUID, previousStatus, newStatus)
	}
	return res
}

// History returns the audit trail for a claim, newest first.
func (c *ClaimController) History(ctx context.Context, claimUUID string) result.OperationResult[[]store.ClaimHistoryEntry] {
	return Execute(&c.Base, "history", func() ([]store.ClaimHistoryEntry, error) {
		return c.claims.GetHistory(ctx, claimUUID)
	})
}

// Statistics returns claim counts by status, type, and priority.
func (c *ClaimController) Statistics(ctx context.Context) result.OperationResult[store.ClaimStatistics] {
	return Execute(&c.Base, "statistics", func() (store.ClaimStatistics, error) {
		return c.claims.Statistics(ctx)
	})
}

// AllowedTransitions returns the statuses a claim may move to from its
// current status.
func (c *ClaimController) AllowedTransitions(ctx context.Context, claimUUID string) result.OperationResult[[]string] {
	return Execute(&c.Base, "allowed_transitions", func() ([]string, error) {
		claim, err := c.claims.GetByUUID(ctx, claimUUID)
		if err != nil {
			return nil, err
		}
		allowed := claimTransitions[claim.CaseStatus]
		out := make([]string, len(allowed))
		copy(out, allowed)
		return out, nil
	})
}

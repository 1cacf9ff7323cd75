package controllers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

// PersonController manages person records and duplicate-person merges.
type PersonController struct {
	Base
	persons    *store.PersonRepository
	duplicates *services.DuplicateService
}

// NewPersonController creates the person controller.
func NewPersonController(
	bus *events.Bus,
	logger zerolog.Logger,
	persons *store.PersonRepository,
	duplicates *services.DuplicateService,
) *PersonController {
	return &PersonController{
		Base:       NewBase("person", bus, logger),
		persons:    persons,
		duplicates: duplicates,
	}
}

// Create validates and persists a new person. At least one name, in either
// script, is required.
func (c *PersonController) Create(ctx context.Context, person models.Person) result.OperationResult[models.Person] {
	res := ExecuteMsg(&c.Base, "create",
		"Person created successfully", "تم إنشاء سجل الشخص بنجاح",
		func() (models.Person, error) {
			if err := validatePerson(&person); err != nil {
				return models.Person{}, err
			}
			if person.PersonID == "" {
				base := models.NewPerson()
				person.PersonID = base.PersonID
				person.CreatedAt = base.CreatedAt
				person.UpdatedAt = base.UpdatedAt
			}
			if person.Nationality == "" {
				person.Nationality = "Syrian"
			}
			if err := c.persons.Create(ctx, &person); err != nil {
				return models.Person{}, err
			}
			return person, nil
		})
	if res.Success {
		c.bus.Publish(events.PersonCreated, res.Data.PersonID)
	}
	return res
}

func validatePerson(p *models.Person) error {
	var fields []string
	if p.FirstName == "" && p.FirstNameAr == "" {
		fields = append(fields, "Missing required field: first_name")
	}
	if p.LastName == "" && p.LastNameAr == "" {
		fields = append(fields, "Missing required field: last_name")
	}
	if p.NationalID != "" && len(p.NationalID) != 11 {
		fields = append(fields, "National ID must be 11 digits")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// Get returns one person by ID.
func (c *PersonController) Get(ctx context.Context, personID string) result.OperationResult[models.Person] {
	return Execute(&c.Base, "get", func() (models.Person, error) {
		return c.persons.Get(ctx, personID)
	})
}

// List returns persons matching the filter.
func (c *PersonController) List(ctx context.Context, filter store.PersonFilter) result.OperationResult[[]models.Person] {
	return Execute(&c.Base, "list", func() ([]models.Person, error) {
		return c.persons.List(ctx, filter)
	})
}

// Update persists edits to a person record.
func (c *PersonController) Update(ctx context.Context, person models.Person) result.OperationResult[models.Person] {
	res := ExecuteMsg(&c.Base, "update",
		"Person updated successfully", "تم تحديث سجل الشخص بنجاح",
		func() (models.Person, error) {
			if err := validatePerson(&person); err != nil {
				return models.Person{}, err
			}
			if err := c.persons.Update(ctx, &person); err != nil {
				return models.Person{}, err
			}
			return person, nil
		})
	if res.Success {
		c.bus.Publish(events.PersonUpdated, person.PersonID)
	}
	return res
}

// FindDuplicates scans for duplicate person groups.
func (c *PersonController) FindDuplicates(ctx context.Context) result.OperationResult[[]services.DuplicateGroup] {
	return Execute(&c.Base, "find_duplicates", func() ([]services.DuplicateGroup, error) {
		return c.duplicates.ScanPersons(ctx)
	})
}

// Merge folds duplicate person records into a master record: relations are
// rewritten, duplicates deleted, and the decision logged.
func (c *PersonController) Merge(ctx context.Context, group services.DuplicateGroup, masterID, justification, resolvedBy string) result.OperationResult[string] {
	res := ExecuteMsg(&c.Base, "merge",
		"Persons merged successfully", "تم دمج السجلات بنجاح",
		func() (string, error) {
			if err := c.duplicates.ResolveMerge(ctx, group, masterID, justification, resolvedBy); err != nil {
				return "", err
			}
			return masterID, nil
		})
	if res.Success {
		c.bus.Publish(events.PersonMerged, masterID)
	}
	return res
}

package controllers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/api"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
)

// SurveyPage is one page of surveys plus the backend's total count.
type SurveyPage struct {
	Surveys []models.Survey
	Total   int
}

// SurveyController serves field and office surveys from the central backend,
// including the enriched context used by claim review.
type SurveyController struct {
	Base
	client api.Client
}

// NewSurveyController creates the survey controller.
func NewSurveyController(bus *events.Bus, logger zerolog.Logger, client api.Client) *SurveyController {
	return &SurveyController{
		Base:   NewBase("survey", bus, logger),
		client: client,
	}
}

// List fetches surveys, optionally filtered by source ("field" or "office").
func (c *SurveyController) List(ctx context.Context, source string, page, pageSize int) result.OperationResult[SurveyPage] {
	return Execute(&c.Base, "list", func() (SurveyPage, error) {
		surveys, total, err := c.client.ListSurveys(ctx, source, page, pageSize)
		if err != nil {
			return SurveyPage{}, err
		}
		return SurveyPage{Surveys: surveys, Total: total}, nil
	})
}

// Context fetches the enriched detail for one survey: building, unit,
// households, persons, and linked claim summaries.
func (c *SurveyController) Context(ctx context.Context, surveyID string) result.OperationResult[models.SurveyContext] {
	res := Execute(&c.Base, "context", func() (models.SurveyContext, error) {
		return c.client.GetSurveyContext(ctx, surveyID)
	})
	if res.Success {
		c.bus.Publish(events.SurveyLoaded, surveyID)
	}
	return res
}

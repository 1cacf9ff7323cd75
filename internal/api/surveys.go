package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// ListSurveys fetches surveys, optionally filtered by source ("field" or
// "office"). Returns the page plus the backend's total count.
func (c *client) ListSurveys(ctx context.Context, source string, page, pageSize int) ([]models.Survey, int, error) {
	q := url.Values{}
	if source != "" {
		q.Set("source", source)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}

	var result pageDTO[SurveyDTO]
	if err := c.get(ctx, "/api/v1/surveys", q, &result); err != nil {
		return nil, 0, fmt.Errorf("list surveys: %w", err)
	}

	surveys := make([]models.Survey, 0, len(result.Items))
	for _, dto := range result.Items {
		surveys = append(surveys, surveyFromDTO(dto))
	}
	return surveys, result.Total, nil
}

// GetSurveyContext fetches the enriched detail for one survey: building,
// unit, households, persons, and linked claim summaries.
func (c *client) GetSurveyContext(ctx context.Context, surveyID string) (models.SurveyContext, error) {
	var dto SurveyContextDTO
	err := c.get(ctx, "/api/v1/surveys/"+url.PathEscape(surveyID)+"/context", nil, &dto)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return models.SurveyContext{}, apperrors.NewNotFoundError("Survey", surveyID)
		}
		return models.SurveyContext{}, err
	}
	return surveyContextFromDTO(dto), nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldscope/survey-service/internal/events"
	"github.com/fieldscope/survey-service/internal/flow"
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewExportService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) ExportService {
	return &exportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ExportResponses builds an xlsx workbook with one row per response and one
// column per question, questions laid out in traversal order.
func (s *exportService) ExportResponses(ctx context.Context, surveyID uint, userID string) (*ExportResult, error) {
	s.logger.Info("Exporting survey responses", "survey_id", surveyID, "user_id", userID)

	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	def, err := flow.ParseDefinition(survey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	questions := def.Questions()

	var responses []*models.Response
	for offset := 0; ; {
		page, _, err := s.repo.Response().GetBySurvey(ctx, surveyID, repositories.ResponseFilters{
			SortBy: "started_at", SortOrder: "asc", Limit: 100, Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load responses: %w", err)
		}
		responses = append(responses, page...)
		if len(page) < 100 {
			break
		}
		offset += len(page)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Responses"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Response ID", "Surveyor ID", "Zone ID", "Status", "Started At", "Completed At"}
	for _, q := range questions {
		headers = append(headers, q.Text)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, response := range responses {
		answers, err := s.repo.Response().GetAnswers(ctx, response.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load answers for response %d: %w", response.ID, err)
		}
		byQuestion := make(map[string]*models.Answer, len(answers))
		for _, a := range answers {
			byQuestion[a.QuestionID] = a
		}

		row := []interface{}{
			response.ID,
			response.SurveyorID,
		}
		if response.ZoneID != nil {
			row = append(row, *response.ZoneID)
		} else {
			row = append(row, "")
		}
		row = append(row, string(response.Status), response.StartedAt.Format("2006-01-02 15:04:05"))
		if response.CompletedAt != nil {
			row = append(row, response.CompletedAt.Format("2006-01-02 15:04:05"))
		} else {
			row = append(row, "")
		}

		for _, q := range questions {
			row = append(row, renderAnswerValue(byQuestion[q.ID]))
		}

		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	result := &ExportResult{
		FileName:      fmt.Sprintf("survey-%d-responses-%s.xlsx", surveyID, time.Now().Format("20060102-150405")),
		ContentType:   xlsxContentType,
		Data:          buf.Bytes(),
		ResponseCount: len(responses),
	}

	if s.publisher != nil {
		event := events.NewExportGeneratedEvent(surveyID, survey.Title, "xlsx", len(responses), userID)
		if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish export event", "survey_id", surveyID, "error", err)
		}
	}

	s.logger.Info("Export generated", "survey_id", surveyID, "responses", len(responses))
	return result, nil
}

// renderAnswerValue flattens a jsonb answer for a spreadsheet cell. Multi
// select answers join with "; ".
func renderAnswerValue(answer *models.Answer) string {
	if answer == nil || len(answer.Value) == 0 {
		return ""
	}
	var value interface{}
	if err := json.Unmarshal(answer.Value, &value); err != nil {
		return string(answer.Value)
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

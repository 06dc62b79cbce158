package handlers

import (
	"net/http"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/fieldscope/survey-service/internal/services"
	"github.com/fieldscope/survey-service/internal/utils"
	"github.com/fieldscope/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *validator.Validator
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	validator *validator.Validator,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// CreateSurvey creates a new survey
// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body services.CreateSurveyRequest true "Survey data"
// @Success 201 {object} services.SurveyResponse
// @Failure 400 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetSurvey retrieves a survey by ID
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// GetSurveyDefinition retrieves the survey with all sections and questions
// @Summary Get survey definition
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyDetailResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/definition [get]
func (h *SurveyHandler) GetSurveyDefinition(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	definition, err := h.surveyService.GetDefinition(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, definition)
}

// ListSurveys lists surveys with filters
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Param status query string false "Survey status"
// @Param project_id query uint false "Project ID"
// @Param search query string false "Title search"
// @Success 200 {object} services.SurveyListResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	filters := repositories.SurveyFilters{
		Search:    c.Query("search"),
		Limit:     h.parseIntQuery(c, "limit", 20),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if status := c.Query("status"); status != "" {
		s := models.SurveyStatus(status)
		filters.Status = &s
	}
	if projectID := h.parseIntQuery(c, "project_id", 0); projectID > 0 {
		id := uint(projectID)
		filters.ProjectID = &id
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	surveys, err := h.surveyService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, surveys)
}

// UpdateSurvey updates a draft survey
// @Summary Update survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param survey body services.UpdateSurveyRequest true "Survey update data"
// @Success 200 {object} services.SurveyResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [put]
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteSurvey deletes a survey without responses
// @Summary Delete survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey deleted successfully"})
}

// GetSurveyStats returns response statistics for a survey
// @Summary Get survey stats
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} repositories.SurveyStats
// @Router /surveys/{id}/stats [get]
func (h *SurveyHandler) GetSurveyStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.surveyService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== LIFECYCLE =====

// PublishSurvey publishes a draft survey
// @Summary Publish survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id}/publish [post]
func (h *SurveyHandler) PublishSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Publishing survey", "survey_id", id)

	if err := h.surveyService.Publish(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey published successfully"})
}

// CloseSurvey closes a published survey to new responses
// @Summary Close survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/close [post]
func (h *SurveyHandler) CloseSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.CloseSurvey(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey closed successfully"})
}

// ArchiveSurvey archives a survey
// @Summary Archive survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/archive [post]
func (h *SurveyHandler) ArchiveSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Archive(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey archived successfully"})
}

// ===== SECTIONS =====

// CreateSection adds a section to a draft survey
// @Router /surveys/{id}/sections [post]
func (h *SurveyHandler) CreateSection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	section, err := h.surveyService.CreateSection(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

// UpdateSection updates a section's title, description or skip logic
// @Router /surveys/{id}/sections/{section_id} [put]
func (h *SurveyHandler) UpdateSection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	sectionID := ParseStringIDParam(c, "section_id")
	if sectionID == "" {
		return
	}

	var req services.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	section, err := h.surveyService.UpdateSection(c.Request.Context(), id, sectionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

// DeleteSection removes a section and its questions
// @Router /surveys/{id}/sections/{section_id} [delete]
func (h *SurveyHandler) DeleteSection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	sectionID := ParseStringIDParam(c, "section_id")
	if sectionID == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.DeleteSection(c.Request.Context(), id, sectionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Section deleted successfully"})
}

// ReorderSections applies a new section ordering
// @Router /surveys/{id}/sections/reorder [put]
func (h *SurveyHandler) ReorderSections(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		OrderedIDs []string `json:"ordered_ids" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.ReorderSections(c.Request.Context(), id, req.OrderedIDs, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Sections reordered successfully"})
}

// ===== QUESTIONS =====

// AddQuestion appends a question to a section
// @Router /surveys/{id}/sections/{section_id}/questions [post]
func (h *SurveyHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	sectionID := ParseStringIDParam(c, "section_id")
	if sectionID == "" {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	question, err := h.surveyService.AddQuestion(c.Request.Context(), id, sectionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question's text, type, options or logic
// @Router /surveys/{id}/questions/{question_id} [put]
func (h *SurveyHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	question, err := h.surveyService.UpdateQuestion(c.Request.Context(), id, questionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question
// @Router /surveys/{id}/questions/{question_id} [delete]
func (h *SurveyHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.DeleteQuestion(c.Request.Context(), id, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted successfully"})
}

// ReorderQuestions applies a new question ordering within a section
// @Router /surveys/{id}/sections/{section_id}/questions/reorder [put]
func (h *SurveyHandler) ReorderQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	sectionID := ParseStringIDParam(c, "section_id")
	if sectionID == "" {
		return
	}

	var req struct {
		OrderedIDs []string `json:"ordered_ids" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.ReorderQuestions(c.Request.Context(), id, sectionID, req.OrderedIDs, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions reordered successfully"})
}

// DuplicateQuestion copies a question within its section
// @Router /surveys/{id}/questions/{question_id}/duplicate [post]
func (h *SurveyHandler) DuplicateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	question, err := h.surveyService.DuplicateQuestion(c.Request.Context(), id, questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ValidateLogic reports dangling skip and display references
// @Summary Validate survey logic
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/logic/validate [get]
func (h *SurveyHandler) ValidateLogic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	issues, err := h.surveyService.ValidateLogic(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

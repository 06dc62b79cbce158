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

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	validator       *validator.Validator
}

func NewResponseHandler(
	responseService services.ResponseService,
	validator *validator.Validator,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		validator:       validator,
	}
}

// StartResponse opens a respondent session against a published survey
// @Summary Start response
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.StartResponseRequest true "Response data"
// @Success 201 {object} services.ResponseState
// @Failure 400 {object} ErrorResponse
// @Router /responses/start [post]
func (h *ResponseHandler) StartResponse(c *gin.Context) {
	var req services.StartResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting response", "survey_id", req.SurveyID)

	state, err := h.responseService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

// GetResponse retrieves a response with its answers
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} services.ResponseDetail
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListResponses lists responses with filters
// @Summary List responses
// @Tags responses
// @Produce json
// @Param survey_id query uint false "Survey ID"
// @Param surveyor_id query uint false "Surveyor ID"
// @Param status query string false "Response status"
// @Success 200 {object} services.ResponseListResponse
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	filters := repositories.ResponseFilters{
		Limit:     h.parseIntQuery(c, "limit", 20),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "started_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if surveyID := h.parseIntQuery(c, "survey_id", 0); surveyID > 0 {
		id := uint(surveyID)
		filters.SurveyID = &id
	}
	if surveyorID := h.parseIntQuery(c, "surveyor_id", 0); surveyorID > 0 {
		id := uint(surveyorID)
		filters.SurveyorID = &id
	}
	if zoneID := h.parseIntQuery(c, "zone_id", 0); zoneID > 0 {
		id := uint(zoneID)
		filters.ZoneID = &id
	}
	if status := c.Query("status"); status != "" {
		s := models.ResponseStatus(status)
		filters.Status = &s
	}

	responses, err := h.responseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// SubmitAnswer answers the question under the cursor and advances the flow
// @Summary Submit answer
// @Tags responses
// @Accept json
// @Produce json
// @Param id path uint true "Response ID"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} services.ResponseState
// @Failure 422 {object} ErrorResponse
// @Router /responses/{id}/answer [post]
func (h *ResponseHandler) SubmitAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	state, err := h.responseService.SubmitAnswer(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// CompleteResponse force-finishes a session
// @Summary Complete response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} services.ResponseDetail
// @Failure 409 {object} ErrorResponse
// @Router /responses/{id}/complete [post]
func (h *ResponseHandler) CompleteResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	detail, err := h.responseService.Complete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

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

type OrganizationHandler struct {
	BaseHandler
	organizationService services.OrganizationService
	validator           *validator.Validator
}

func NewOrganizationHandler(
	organizationService services.OrganizationService,
	validator *validator.Validator,
	logger utils.Logger,
) *OrganizationHandler {
	return &OrganizationHandler{
		BaseHandler:         NewBaseHandler(logger),
		organizationService: organizationService,
		validator:           validator,
	}
}

// ===== ORGANIZATIONS =====

// CreateOrganization creates a new organization
// @Summary Create organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body services.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} models.Organization
// @Failure 409 {object} ErrorResponse
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req services.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	org, err := h.organizationService.CreateOrganization(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization retrieves an organization by ID
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	org, err := h.organizationService.GetOrganization(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateOrganization updates an organization
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	org, err := h.organizationService.UpdateOrganization(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// DeleteOrganization deletes an organization
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.organizationService.DeleteOrganization(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Organization deleted successfully"})
}

// ListOrganizations lists organizations
// @Router /organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", 20)
	offset := h.parseIntQuery(c, "offset", 0)

	orgs, total, err := h.organizationService.ListOrganizations(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
		"total":         total,
	})
}

// ===== PROJECTS =====

// CreateProject creates a project within an organization
// @Router /projects [post]
func (h *OrganizationHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	project, err := h.organizationService.CreateProject(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetProject retrieves a project by ID
// @Router /projects/{id} [get]
func (h *OrganizationHandler) GetProject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	project, err := h.organizationService.GetProject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// GetOrganizationProjects lists an organization's projects
// @Router /organizations/{id}/projects [get]
func (h *OrganizationHandler) GetOrganizationProjects(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	projects, err := h.organizationService.GetProjectsByOrganization(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// DeleteProject deletes a project
// @Router /projects/{id} [delete]
func (h *OrganizationHandler) DeleteProject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.organizationService.DeleteProject(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Project deleted successfully"})
}

// ===== ZONES =====

// CreateZone creates a collection zone within a project
// @Router /zones [post]
func (h *OrganizationHandler) CreateZone(c *gin.Context) {
	var req services.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	zone, err := h.organizationService.CreateZone(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, zone)
}

// GetZone retrieves a zone by ID
// @Router /zones/{id} [get]
func (h *OrganizationHandler) GetZone(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	zone, err := h.organizationService.GetZone(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, zone)
}

// GetProjectZones lists a project's zones
// @Router /projects/{id}/zones [get]
func (h *OrganizationHandler) GetProjectZones(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	zones, err := h.organizationService.GetZonesByProject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, zones)
}

// GetZoneStats returns surveyor and response counts for a zone
// @Router /zones/{id}/stats [get]
func (h *OrganizationHandler) GetZoneStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.organizationService.GetZoneStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DeleteZone deletes a zone
// @Router /zones/{id} [delete]
func (h *OrganizationHandler) DeleteZone(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.organizationService.DeleteZone(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Zone deleted successfully"})
}

// ===== SURVEYORS =====

// AssignSurveyor assigns a user to a zone as surveyor
// @Summary Assign surveyor
// @Tags surveyors
// @Accept json
// @Produce json
// @Param assignment body services.AssignSurveyorRequest true "Assignment data"
// @Success 201 {object} models.Surveyor
// @Failure 409 {object} ErrorResponse
// @Router /surveyors [post]
func (h *OrganizationHandler) AssignSurveyor(c *gin.Context) {
	var req services.AssignSurveyorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	surveyor, err := h.organizationService.AssignSurveyor(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, surveyor)
}

// GetSurveyor retrieves a surveyor assignment by ID
// @Router /surveyors/{id} [get]
func (h *OrganizationHandler) GetSurveyor(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	surveyor, err := h.organizationService.GetSurveyor(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, surveyor)
}

// ListSurveyors lists surveyor assignments with filters
// @Router /surveyors [get]
func (h *OrganizationHandler) ListSurveyors(c *gin.Context) {
	filters := repositories.SurveyorFilters{
		Limit:  h.parseIntQuery(c, "limit", 20),
		Offset: h.parseIntQuery(c, "offset", 0),
	}
	if zoneID := h.parseIntQuery(c, "zone_id", 0); zoneID > 0 {
		id := uint(zoneID)
		filters.ZoneID = &id
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if status := c.Query("status"); status != "" {
		s := models.SurveyorStatus(status)
		filters.Status = &s
	}

	surveyors, total, err := h.organizationService.ListSurveyors(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"surveyors": surveyors,
		"total":     total,
	})
}

// UpdateSurveyorStatus activates or deactivates a surveyor
// @Router /surveyors/{id}/status [put]
func (h *OrganizationHandler) UpdateSurveyorStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Status models.SurveyorStatus `json:"status" validate:"required,oneof=active inactive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	surveyor, err := h.organizationService.UpdateSurveyorStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, surveyor)
}

// RemoveSurveyor removes a surveyor assignment
// @Router /surveyors/{id} [delete]
func (h *OrganizationHandler) RemoveSurveyor(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.organizationService.RemoveSurveyor(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Surveyor removed successfully"})
}

package handlers

import (
	"net/http"

	"github.com/fieldscope/survey-service/internal/services"
	"github.com/fieldscope/survey-service/internal/utils"
	"github.com/fieldscope/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	BaseHandler
	syncService services.SyncService
	validator   *validator.Validator
}

func NewSyncHandler(
	syncService services.SyncService,
	validator *validator.Validator,
	logger utils.Logger,
) *SyncHandler {
	return &SyncHandler{
		BaseHandler: NewBaseHandler(logger),
		syncService: syncService,
		validator:   validator,
	}
}

// UploadBatch replays a device's offline responses
// @Summary Upload sync batch
// @Tags sync
// @Accept json
// @Produce json
// @Param batch body services.SyncBatchRequest true "Batch data"
// @Success 200 {object} models.SyncSummary
// @Failure 400 {object} ErrorResponse
// @Router /sync/batch [post]
func (h *SyncHandler) UploadBatch(c *gin.Context) {
	var req services.SyncBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Uploading sync batch", "device_id", req.DeviceID, "items", len(req.Items))

	summary, err := h.syncService.ProcessBatch(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetBatchHistory lists recent sync batches for a device
// @Summary Get sync history
// @Tags sync
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 200 {array} models.SyncBatch
// @Router /sync/history/{device_id} [get]
func (h *SyncHandler) GetBatchHistory(c *gin.Context) {
	deviceID := ParseStringIDParam(c, "device_id")
	if deviceID == "" {
		return
	}
	limit := h.parseIntQuery(c, "limit", 20)

	batches, err := h.syncService.GetBatchHistory(c.Request.Context(), deviceID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, batches)
}

package handlers

import (
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/services"
	"github.com/fieldscope/survey-service/internal/utils"
	"github.com/fieldscope/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	surveyHandler       *SurveyHandler
	responseHandler     *ResponseHandler
	syncHandler         *SyncHandler
	exportHandler       *ExportHandler
	organizationHandler *OrganizationHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:       NewSurveyHandler(serviceManager.Survey(), validator, logger),
		responseHandler:     NewResponseHandler(serviceManager.Response(), validator, logger),
		syncHandler:         NewSyncHandler(serviceManager.Sync(), validator, logger),
		exportHandler:       NewExportHandler(serviceManager.Export(), logger),
		organizationHandler: NewOrganizationHandler(serviceManager.Organization(), validator, logger),
	}
}

// SetupRoutes sets up all API routes. The auth middleware is injected so tests
// can run the router without an identity provider.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	if auth != nil {
		v1.Use(auth)
	}
	{
		// Survey authoring routes
		surveys := v1.Group("/surveys")
		{
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.GET("/:id/definition", hm.surveyHandler.GetSurveyDefinition)
			surveys.GET("/:id/stats", hm.surveyHandler.GetSurveyStats)
			surveys.GET("/:id/logic/validate", hm.surveyHandler.ValidateLogic)
			surveys.GET("/:id/export", hm.exportHandler.ExportResponses)

			authoring := surveys.Group("")
			authoring.Use(RequireRole(models.RoleManager))
			{
				authoring.POST("", hm.surveyHandler.CreateSurvey)
				authoring.PUT("/:id", hm.surveyHandler.UpdateSurvey)
				authoring.DELETE("/:id", hm.surveyHandler.DeleteSurvey)
				authoring.POST("/:id/publish", hm.surveyHandler.PublishSurvey)
				authoring.POST("/:id/close", hm.surveyHandler.CloseSurvey)
				authoring.POST("/:id/archive", hm.surveyHandler.ArchiveSurvey)

				// Section management
				authoring.POST("/:id/sections", hm.surveyHandler.CreateSection)
				authoring.PUT("/:id/sections/reorder", hm.surveyHandler.ReorderSections)
				authoring.PUT("/:id/sections/:section_id", hm.surveyHandler.UpdateSection)
				authoring.DELETE("/:id/sections/:section_id", hm.surveyHandler.DeleteSection)

				// Question management
				authoring.POST("/:id/sections/:section_id/questions", hm.surveyHandler.AddQuestion)
				authoring.PUT("/:id/sections/:section_id/questions/reorder", hm.surveyHandler.ReorderQuestions)
				authoring.PUT("/:id/questions/:question_id", hm.surveyHandler.UpdateQuestion)
				authoring.DELETE("/:id/questions/:question_id", hm.surveyHandler.DeleteQuestion)
				authoring.POST("/:id/questions/:question_id/duplicate", hm.surveyHandler.DuplicateQuestion)
			}
		}

		// Response collection routes
		responses := v1.Group("/responses")
		{
			responses.POST("/start", hm.responseHandler.StartResponse)
			responses.GET("", hm.responseHandler.ListResponses)
			responses.GET("/:id", hm.responseHandler.GetResponse)
			responses.POST("/:id/answer", hm.responseHandler.SubmitAnswer)
			responses.POST("/:id/complete", hm.responseHandler.CompleteResponse)
		}

		// Offline sync routes
		sync := v1.Group("/sync")
		{
			sync.POST("/batch", hm.syncHandler.UploadBatch)
			sync.GET("/history/:device_id", hm.syncHandler.GetBatchHistory)
		}

		// Organization hierarchy routes, manager and admin only
		admin := v1.Group("")
		admin.Use(RequireRole(models.RoleManager))
		{
			organizations := admin.Group("/organizations")
			{
				organizations.POST("", hm.organizationHandler.CreateOrganization)
				organizations.GET("", hm.organizationHandler.ListOrganizations)
				organizations.GET("/:id", hm.organizationHandler.GetOrganization)
				organizations.PUT("/:id", hm.organizationHandler.UpdateOrganization)
				organizations.DELETE("/:id", hm.organizationHandler.DeleteOrganization)
				organizations.GET("/:id/projects", hm.organizationHandler.GetOrganizationProjects)
			}

			projects := admin.Group("/projects")
			{
				projects.POST("", hm.organizationHandler.CreateProject)
				projects.GET("/:id", hm.organizationHandler.GetProject)
				projects.DELETE("/:id", hm.organizationHandler.DeleteProject)
				projects.GET("/:id/zones", hm.organizationHandler.GetProjectZones)
			}

			zones := admin.Group("/zones")
			{
				zones.POST("", hm.organizationHandler.CreateZone)
				zones.GET("/:id", hm.organizationHandler.GetZone)
				zones.GET("/:id/stats", hm.organizationHandler.GetZoneStats)
				zones.DELETE("/:id", hm.organizationHandler.DeleteZone)
			}

			surveyors := admin.Group("/surveyors")
			{
				surveyors.POST("", hm.organizationHandler.AssignSurveyor)
				surveyors.GET("", hm.organizationHandler.ListSurveyors)
				surveyors.GET("/:id", hm.organizationHandler.GetSurveyor)
				surveyors.PUT("/:id/status", hm.organizationHandler.UpdateSurveyorStatus)
				surveyors.DELETE("/:id", hm.organizationHandler.RemoveSurveyor)
			}
		}
	}
}

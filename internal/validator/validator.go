package validator

import (
	"reflect"
	"strings"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator *validator.Validate
	logicValidator  *LogicValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		logicValidator:  NewLogicValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct tag validation and converts errors to our type
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Logic returns the survey logic validator
func (v *Validator) Logic() *LogicValidator {
	return v.logicValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("survey_status", validateSurveyStatus)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("operator", validateOperator)
	validate.RegisterValidation("skip_action", validateSkipAction)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.TypeText,
		models.TypeNumber,
		models.TypeMultipleChoice,
		models.TypeCheckbox,
		models.TypeDropdown,
		models.TypeDate,
		models.TypePhoto,
		models.TypeSignature,
		models.TypeLocation,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateSurveyStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.SurveyStatus{
		models.SurveyDraft,
		models.SurveyPublished,
		models.SurveyClosed,
		models.SurveyArchived,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleAdmin,
		models.RoleManager,
		models.RoleSurveyor,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func validateOperator(fl validator.FieldLevel) bool {
	validOperators := []models.Operator{
		models.OpEquals,
		models.OpNotEquals,
		models.OpContains,
		models.OpGreaterThan,
		models.OpLessThan,
	}

	value := fl.Field().String()
	for _, validOperator := range validOperators {
		if string(validOperator) == value {
			return true
		}
	}
	return false
}

func validateSkipAction(fl validator.FieldLevel) bool {
	validActions := []models.SkipAction{
		models.ActionNextSection,
		models.ActionSpecificSection,
		models.ActionSpecificQuestion,
		models.ActionEndSurvey,
	}

	value := fl.Field().String()
	for _, validAction := range validActions {
		if string(validAction) == value {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Organization struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null;size:200;uniqueIndex" validate:"required,min=1,max=200"`
	Slug    string  `json:"slug" gorm:"not null;size:100;uniqueIndex" validate:"required,max=100"`
	LogoURL *string `json:"logo_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Projects []Project `json:"projects" gorm:"foreignKey:OrganizationID"`
}

type Project struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	OrganizationID uint    `json:"organization_id" gorm:"not null;index"`
	Name           string  `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description    *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Organization Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
	Zones        []Zone       `json:"zones" gorm:"foreignKey:ProjectID"`
}

// Zone is a geographic collection area within a project. Geometry holds the
// drawn boundary as GeoJSON; the service treats it as opaque.
type Zone struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProjectID uint           `json:"project_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Geometry  datatypes.JSON `json:"geometry" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Surveyors []Surveyor `json:"surveyors" gorm:"foreignKey:ZoneID"`
}

type SurveyorStatus string

const (
	SurveyorActive   SurveyorStatus = "active"
	SurveyorInactive SurveyorStatus = "inactive"
)

// Surveyor is a field-collection assignment: a user working a zone.
type Surveyor struct {
	ID     uint           `json:"id" gorm:"primaryKey"`
	UserID string         `json:"user_id" gorm:"not null;size:255;index"`
	ZoneID uint           `json:"zone_id" gorm:"not null;index"`
	Status SurveyorStatus `json:"status" gorm:"default:active" validate:"omitempty,oneof=active inactive"`

	AssignedAt time.Time      `json:"assigned_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:UserID"`
	Zone Zone `json:"zone" gorm:"foreignKey:ZoneID"`
}

func (Organization) TableName() string {
	return "organizations"
}

func (Project) TableName() string {
	return "projects"
}

func (Zone) TableName() string {
	return "zones"
}

func (Surveyor) TableName() string {
	return "surveyors"
}

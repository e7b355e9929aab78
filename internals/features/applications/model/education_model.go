package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  application_educations = education history attached on submit.
  - Immutable after insert, except the AI-assist columns which staff may correct.
  - Removed only by cascade from applications.
*/

type EducationModel struct {
	EducationID            uuid.UUID `gorm:"column:education_id;type:uuid;primaryKey" json:"education_id"`
	EducationApplicationID uuid.UUID `gorm:"column:education_application_id;type:uuid;not null;index" json:"education_application_id"`

	EducationInstitution  string  `gorm:"column:education_institution;type:varchar(200);not null" json:"education_institution"`
	EducationCountry      string  `gorm:"column:education_country;type:varchar(80);not null" json:"education_country"`
	EducationDegree       string  `gorm:"column:education_degree;type:varchar(150);not null" json:"education_degree"`
	EducationFieldOfStudy *string `gorm:"column:education_field_of_study;type:varchar(150)" json:"education_field_of_study,omitempty"`
	EducationStartYear    *int    `gorm:"column:education_start_year" json:"education_start_year,omitempty"`
	EducationEndYear      *int    `gorm:"column:education_end_year" json:"education_end_year,omitempty"`

	// AI-assist (opaque vendor output, staff-editable)
	EducationAIEquivalency *string        `gorm:"column:education_ai_equivalency;type:text" json:"education_ai_equivalency,omitempty"`
	EducationAIConfidence  *float64       `gorm:"column:education_ai_confidence" json:"education_ai_confidence,omitempty"`
	EducationAIRaw         datatypes.JSON `gorm:"column:education_ai_raw;type:jsonb" json:"education_ai_raw,omitempty"`

	EducationCreatedAt time.Time `gorm:"column:education_created_at;autoCreateTime" json:"education_created_at"`
	EducationUpdatedAt time.Time `gorm:"column:education_updated_at;autoUpdateTime" json:"education_updated_at"`
}

func (EducationModel) TableName() string { return "application_educations" }

func (e *EducationModel) BeforeCreate(tx *gorm.DB) error {
	if e.EducationID == uuid.Nil {
		e.EducationID = uuid.New()
	}
	return nil
}

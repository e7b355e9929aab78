package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ===================== Model ===================== */

type ApplicationModel struct {
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid;primaryKey" json:"application_id"`

	// Lifecycle
	ApplicationStatus        ApplicationStatus `gorm:"column:application_status;type:varchar(20);not null;default:'draft';index" json:"application_status"`
	ApplicationPaymentStatus PaymentStatus     `gorm:"column:application_payment_status;type:varchar(20);not null;default:'pending';index" json:"application_payment_status"`
	ApplicationSubmittedAt   *time.Time        `gorm:"column:application_submitted_at" json:"application_submitted_at,omitempty"`
	ApplicationVersion       int64             `gorm:"column:application_version;not null;default:1" json:"application_version"`

	// Payment
	ApplicationDueAmount        *decimal.Decimal `gorm:"column:application_due_amount;type:numeric(6,2)" json:"application_due_amount,omitempty"`
	ApplicationPaidAt           *time.Time       `gorm:"column:application_paid_at" json:"application_paid_at,omitempty"`
	ApplicationPaymentMethod    *PaymentMethod   `gorm:"column:application_payment_method;type:varchar(20)" json:"application_payment_method,omitempty"`
	ApplicationPaymentReference *string          `gorm:"column:application_payment_reference;type:varchar(255)" json:"application_payment_reference,omitempty"`

	// Staff-assigned
	ApplicationOffice *Office `gorm:"column:application_office;type:varchar(20)" json:"application_office,omitempty"`

	// Applicant (editable by the customer while draft)
	ApplicationFirstName       string          `gorm:"column:application_first_name;type:varchar(100)" json:"application_first_name"`
	ApplicationLastName        string          `gorm:"column:application_last_name;type:varchar(100)" json:"application_last_name"`
	ApplicationEmail           string          `gorm:"column:application_email;type:varchar(255);index" json:"application_email"`
	ApplicationPhone           *string         `gorm:"column:application_phone;type:varchar(40)" json:"application_phone,omitempty"`
	ApplicationServiceType     *ServiceType    `gorm:"column:application_service_type;type:varchar(40)" json:"application_service_type,omitempty"`
	ApplicationEvaluationType  *EvaluationType `gorm:"column:application_evaluation_type;type:varchar(40)" json:"application_evaluation_type,omitempty"`
	ApplicationPurpose         *Purpose        `gorm:"column:application_purpose;type:varchar(40)" json:"application_purpose,omitempty"`
	ApplicationDeliveryMethod  *DeliveryMethod `gorm:"column:application_delivery_method;type:varchar(20)" json:"application_delivery_method,omitempty"`
	ApplicationCountryOfStudy  *string         `gorm:"column:application_country_of_study;type:varchar(80)" json:"application_country_of_study,omitempty"`
	ApplicationSourceLanguages pq.StringArray  `gorm:"column:application_source_languages;type:text[]" json:"application_source_languages,omitempty"`
	ApplicationNotes           *string         `gorm:"column:application_notes;type:text" json:"application_notes,omitempty"`

	Educations []EducationModel           `gorm:"foreignKey:EducationApplicationID;references:ApplicationID;constraint:OnDelete:CASCADE" json:"educations,omitempty"`
	Documents  []ApplicationDocumentModel `gorm:"foreignKey:DocumentApplicationID;references:ApplicationID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	ApplicationCreatedAt time.Time      `gorm:"column:application_created_at;autoCreateTime" json:"application_created_at"`
	ApplicationUpdatedAt time.Time      `gorm:"column:application_updated_at;autoUpdateTime" json:"application_updated_at"`
	ApplicationDeletedAt gorm.DeletedAt `gorm:"column:application_deleted_at;index" json:"-"`
}

func (ApplicationModel) TableName() string { return "applications" }

func (a *ApplicationModel) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == uuid.Nil {
		a.ApplicationID = uuid.New()
	}
	if a.ApplicationStatus == "" {
		a.ApplicationStatus = ApplicationStatusDraft
	}
	if a.ApplicationPaymentStatus == "" {
		a.ApplicationPaymentStatus = PaymentStatusPending
	}
	if a.ApplicationVersion == 0 {
		a.ApplicationVersion = 1
	}
	return nil
}

/* ===================== Helpers ===================== */

func (a *ApplicationModel) FullName() string {
	return strings.TrimSpace(a.ApplicationFirstName + " " + a.ApplicationLastName)
}

func (a *ApplicationModel) IsPaid() bool {
	return a.ApplicationPaymentStatus == PaymentStatusPaid
}

// PaymentNote renders the audit line the dashboard shows next to a payment,
// e.g. "Marked as Paid via Zelle" for manual marks or the provider reference.
func (a *ApplicationModel) PaymentNote() string {
	if a.ApplicationPaymentMethod == nil {
		return ""
	}
	switch *a.ApplicationPaymentMethod {
	case PaymentMethodZelle:
		return "Marked as Paid via Zelle"
	case PaymentMethodPaypal:
		return "Marked as Paid via Paypal"
	}
	if a.ApplicationPaymentReference != nil {
		return *a.ApplicationPaymentReference
	}
	return ""
}

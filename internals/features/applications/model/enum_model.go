package model

type ApplicationStatus string
type PaymentStatus string
type PaymentMethod string
type Office string
type ServiceType string
type EvaluationType string
type Purpose string
type DeliveryMethod string

const (
	ApplicationStatusDraft      ApplicationStatus = "draft"
	ApplicationStatusSubmitted  ApplicationStatus = "submitted"
	ApplicationStatusProcessing ApplicationStatus = "processing"
	ApplicationStatusCompleted  ApplicationStatus = "completed"
	ApplicationStatusCancelled  ApplicationStatus = "cancelled"
)

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Gateway methods carry a provider reference; manual methods never do.
const (
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodMidtrans PaymentMethod = "midtrans"
	PaymentMethodZelle    PaymentMethod = "zelle"
	PaymentMethodPaypal   PaymentMethod = "paypal"
)

const (
	OfficeMiami   Office = "miami"
	OfficeOrlando Office = "orlando"
	OfficeTampa   Office = "tampa"
	OfficeOnline  Office = "online"
)

const (
	ServiceEvaluation            ServiceType = "evaluation"
	ServiceTranslation           ServiceType = "translation"
	ServiceEvaluationTranslation ServiceType = "evaluation_translation"
)

const (
	EvaluationDocumentByDocument EvaluationType = "document_by_document"
	EvaluationCourseByCourse     EvaluationType = "course_by_course"
)

const (
	PurposeImmigration Purpose = "immigration"
	PurposeEmployment  Purpose = "employment"
	PurposeEducation   Purpose = "education"
	PurposeOther       Purpose = "other"
)

const (
	DeliveryEmail  DeliveryMethod = "email"
	DeliveryMail   DeliveryMethod = "mail"
	DeliveryPickup DeliveryMethod = "pickup"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusDraft, ApplicationStatusSubmitted, ApplicationStatusProcessing,
		ApplicationStatusCompleted, ApplicationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal: completed and cancelled accept no further status change.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusCompleted || s == ApplicationStatusCancelled
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusExpired, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsOpen: payment can still be collected (pending, or expired and retried).
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentStatusPending || s == PaymentStatusExpired
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodMidtrans, PaymentMethodZelle, PaymentMethodPaypal:
		return true
	}
	return false
}

func (m PaymentMethod) IsManual() bool {
	return m == PaymentMethodZelle || m == PaymentMethodPaypal
}

func (o Office) Valid() bool {
	switch o {
	case OfficeMiami, OfficeOrlando, OfficeTampa, OfficeOnline:
		return true
	}
	return false
}

package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fcehub_backend/internals/features/applications/model"
	helper "fcehub_backend/internals/helpers"
)

/* =========================================================
   PATCH FIELD: tri-state (absent | null | value)
========================================================= */

type PatchField[T any] struct {
	Present bool
	Value   *T
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := sonic.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p PatchField[T]) Get() (*T, bool) { return p.Value, p.Present }

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanLanguages(in []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]bool{}
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true
		out = append(out, l)
	}
	return out
}

/* =========================================================
   CREATE (customer draft)
========================================================= */

type CreateApplicationRequest struct {
	FirstName      string   `json:"application_first_name" validate:"required,max=100"`
	LastName       string   `json:"application_last_name" validate:"omitempty,max=100"`
	Email          string   `json:"application_email" validate:"required,email,max=255"`
	Phone          *string  `json:"application_phone" validate:"omitempty,max=40"`
	ServiceType    *string  `json:"application_service_type" validate:"omitempty,oneof=evaluation translation evaluation_translation"`
	EvaluationType *string  `json:"application_evaluation_type" validate:"omitempty,oneof=document_by_document course_by_course"`
	Purpose        *string  `json:"application_purpose" validate:"omitempty,oneof=immigration employment education other"`
	DeliveryMethod *string  `json:"application_delivery_method" validate:"omitempty,oneof=email mail pickup"`
	CountryOfStudy *string  `json:"application_country_of_study" validate:"omitempty,max=80"`
	Languages      []string `json:"application_source_languages" validate:"omitempty,max=10,dive,max=40"`
	Notes          *string  `json:"application_notes" validate:"omitempty,max=4000"`
}

func (r *CreateApplicationRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = trimPtr(r.Phone)
	r.ServiceType = trimPtr(r.ServiceType)
	r.EvaluationType = trimPtr(r.EvaluationType)
	r.Purpose = trimPtr(r.Purpose)
	r.DeliveryMethod = trimPtr(r.DeliveryMethod)
	r.CountryOfStudy = trimPtr(r.CountryOfStudy)
	r.Notes = trimPtr(r.Notes)
}

func asEnum[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

func (r CreateApplicationRequest) ToModel() model.ApplicationModel {
	return model.ApplicationModel{
		ApplicationFirstName:       r.FirstName,
		ApplicationLastName:        r.LastName,
		ApplicationEmail:           r.Email,
		ApplicationPhone:           r.Phone,
		ApplicationServiceType:     asEnum[model.ServiceType](r.ServiceType),
		ApplicationEvaluationType:  asEnum[model.EvaluationType](r.EvaluationType),
		ApplicationPurpose:         asEnum[model.Purpose](r.Purpose),
		ApplicationDeliveryMethod:  asEnum[model.DeliveryMethod](r.DeliveryMethod),
		ApplicationCountryOfStudy:  r.CountryOfStudy,
		ApplicationSourceLanguages: cleanLanguages(r.Languages),
		ApplicationNotes:           r.Notes,
	}
}

/* =========================================================
   AUTOSAVE (PATCH while draft)
========================================================= */

type AutosaveApplicationRequest struct {
	FirstName      PatchField[string]   `json:"application_first_name"`
	LastName       PatchField[string]   `json:"application_last_name"`
	Email          PatchField[string]   `json:"application_email"`
	Phone          PatchField[string]   `json:"application_phone"`
	ServiceType    PatchField[string]   `json:"application_service_type"`
	EvaluationType PatchField[string]   `json:"application_evaluation_type"`
	Purpose        PatchField[string]   `json:"application_purpose"`
	DeliveryMethod PatchField[string]   `json:"application_delivery_method"`
	CountryOfStudy PatchField[string]   `json:"application_country_of_study"`
	Languages      PatchField[[]string] `json:"application_source_languages"`
	Notes          PatchField[string]   `json:"application_notes"`

	// Optional optimistic-concurrency check against the stored version.
	Version *int64 `json:"application_version"`
}

// ToUpdates validates the present fields with the same rules as create and
// returns the column map for the draft update. Field errors use the JSON names.
func (r AutosaveApplicationRequest) ToUpdates(v *validator.Validate) (map[string]any, map[string][]string) {
	up := map[string]any{}
	errs := map[string][]string{}

	required := func(name string, p PatchField[string], tag string, lower bool) {
		if !p.Present {
			return
		}
		var s string
		if p.Value != nil {
			s = strings.TrimSpace(*p.Value)
		}
		if lower {
			s = strings.ToLower(s)
		}
		if helper.VarErrors(v, errs, name, s, "required,"+tag) {
			up[name] = s
		}
	}
	optional := func(name string, p PatchField[string], tag string) {
		if !p.Present {
			return
		}
		if p.Value == nil || strings.TrimSpace(*p.Value) == "" {
			up[name] = nil
			return
		}
		s := strings.TrimSpace(*p.Value)
		if helper.VarErrors(v, errs, name, s, tag) {
			up[name] = s
		}
	}

	required("application_first_name", r.FirstName, "max=100", false)
	optional("application_last_name", r.LastName, "max=100")
	if val, ok := up["application_last_name"]; ok && val == nil {
		up["application_last_name"] = "" // not nullable
	}
	required("application_email", r.Email, "email,max=255", true)
	optional("application_phone", r.Phone, "max=40")
	optional("application_service_type", r.ServiceType, "oneof=evaluation translation evaluation_translation")
	optional("application_evaluation_type", r.EvaluationType, "oneof=document_by_document course_by_course")
	optional("application_purpose", r.Purpose, "oneof=immigration employment education other")
	optional("application_delivery_method", r.DeliveryMethod, "oneof=email mail pickup")
	optional("application_country_of_study", r.CountryOfStudy, "max=80")
	optional("application_notes", r.Notes, "max=4000")

	if r.Languages.Present {
		if r.Languages.Value == nil {
			up["application_source_languages"] = pq.StringArray{}
		} else if helper.VarErrors(v, errs, "application_source_languages", *r.Languages.Value, "max=10,dive,max=40") {
			up["application_source_languages"] = cleanLanguages(*r.Languages.Value)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return up, nil
}

/* =========================================================
   SUBMIT
========================================================= */

type EducationRequest struct {
	Institution  string  `json:"education_institution" validate:"required,max=200"`
	Country      string  `json:"education_country" validate:"required,max=80"`
	Degree       string  `json:"education_degree" validate:"required,max=150"`
	FieldOfStudy *string `json:"education_field_of_study" validate:"omitempty,max=150"`
	StartYear    *int    `json:"education_start_year" validate:"omitempty,gte=1900,lte=2100"`
	EndYear      *int    `json:"education_end_year" validate:"omitempty,gte=1900,lte=2100"`
}

type SubmitApplicationRequest struct {
	Educations []EducationRequest `json:"educations" validate:"max=20,dive"`
}

// CheckYears reports educations whose end year precedes the start year.
func (r SubmitApplicationRequest) CheckYears() map[string][]string {
	errs := map[string][]string{}
	for i, e := range r.Educations {
		if e.StartYear != nil && e.EndYear != nil && *e.EndYear < *e.StartYear {
			key := "educations[" + strconv.Itoa(i) + "].education_end_year"
			errs[key] = append(errs[key], "must not be before the start year")
		}
	}
	return errs
}

func (r SubmitApplicationRequest) ToModels() []model.EducationModel {
	out := make([]model.EducationModel, 0, len(r.Educations))
	for _, e := range r.Educations {
		out = append(out, model.EducationModel{
			EducationInstitution:  strings.TrimSpace(e.Institution),
			EducationCountry:      strings.TrimSpace(e.Country),
			EducationDegree:       strings.TrimSpace(e.Degree),
			EducationFieldOfStudy: trimPtr(e.FieldOfStudy),
			EducationStartYear:    e.StartYear,
			EducationEndYear:      e.EndYear,
		})
	}
	return out
}

/* =========================================================
   RESPONSE
========================================================= */

type EducationResponse struct {
	EducationID            uuid.UUID `json:"education_id"`
	EducationInstitution   string    `json:"education_institution"`
	EducationCountry       string    `json:"education_country"`
	EducationDegree        string    `json:"education_degree"`
	EducationFieldOfStudy  *string   `json:"education_field_of_study,omitempty"`
	EducationStartYear     *int      `json:"education_start_year,omitempty"`
	EducationEndYear       *int      `json:"education_end_year,omitempty"`
	EducationAIEquivalency *string   `json:"education_ai_equivalency,omitempty"`
	EducationAIConfidence  *float64  `json:"education_ai_confidence,omitempty"`
	EducationAIRaw         any       `json:"education_ai_raw,omitempty"`
}

type DocumentResponse struct {
	DocumentID           uuid.UUID `json:"document_id"`
	DocumentKind         string    `json:"document_kind"`
	DocumentOriginalName string    `json:"document_original_name"`
	DocumentURL          string    `json:"document_url"`
	DocumentContentType  string    `json:"document_content_type"`
	DocumentSizeBytes    int64     `json:"document_size_bytes"`
	DocumentCreatedAt    time.Time `json:"document_created_at"`
}

type ApplicationResponse struct {
	ApplicationID               uuid.UUID        `json:"application_id"`
	ApplicationStatus           string           `json:"application_status"`
	ApplicationPaymentStatus    string           `json:"application_payment_status"`
	ApplicationSubmittedAt      *time.Time       `json:"application_submitted_at,omitempty"`
	ApplicationVersion          int64            `json:"application_version"`
	ApplicationDueAmount        *decimal.Decimal `json:"application_due_amount,omitempty"`
	ApplicationPaidAt           *time.Time       `json:"application_paid_at,omitempty"`
	ApplicationPaymentMethod    *string          `json:"application_payment_method,omitempty"`
	ApplicationPaymentReference *string          `json:"application_payment_reference,omitempty"`
	ApplicationPaymentNote      string           `json:"application_payment_note,omitempty"`
	ApplicationOffice           *string          `json:"application_office,omitempty"`

	ApplicationFirstName       string   `json:"application_first_name"`
	ApplicationLastName        string   `json:"application_last_name"`
	ApplicationEmail           string   `json:"application_email"`
	ApplicationPhone           *string  `json:"application_phone,omitempty"`
	ApplicationServiceType     *string  `json:"application_service_type,omitempty"`
	ApplicationEvaluationType  *string  `json:"application_evaluation_type,omitempty"`
	ApplicationPurpose         *string  `json:"application_purpose,omitempty"`
	ApplicationDeliveryMethod  *string  `json:"application_delivery_method,omitempty"`
	ApplicationCountryOfStudy  *string  `json:"application_country_of_study,omitempty"`
	ApplicationSourceLanguages []string `json:"application_source_languages,omitempty"`
	ApplicationNotes           *string  `json:"application_notes,omitempty"`

	Educations []EducationResponse `json:"educations,omitempty"`
	Documents  []DocumentResponse  `json:"documents,omitempty"`

	ApplicationCreatedAt time.Time `json:"application_created_at"`
	ApplicationUpdatedAt time.Time `json:"application_updated_at"`
}

func enumStr[T ~string](p *T) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func FromEducation(e model.EducationModel) EducationResponse {
	resp := EducationResponse{
		EducationID:            e.EducationID,
		EducationInstitution:   e.EducationInstitution,
		EducationCountry:       e.EducationCountry,
		EducationDegree:        e.EducationDegree,
		EducationFieldOfStudy:  e.EducationFieldOfStudy,
		EducationStartYear:     e.EducationStartYear,
		EducationEndYear:       e.EducationEndYear,
		EducationAIEquivalency: e.EducationAIEquivalency,
		EducationAIConfidence:  e.EducationAIConfidence,
	}
	if len(e.EducationAIRaw) > 0 {
		var raw any
		if err := sonic.Unmarshal(e.EducationAIRaw, &raw); err == nil {
			resp.EducationAIRaw = raw
		}
	}
	return resp
}

func FromDocument(d model.ApplicationDocumentModel) DocumentResponse {
	return DocumentResponse{
		DocumentID:           d.DocumentID,
		DocumentKind:         string(d.DocumentKind),
		DocumentOriginalName: d.DocumentOriginalName,
		DocumentURL:          d.DocumentURL,
		DocumentContentType:  d.DocumentContentType,
		DocumentSizeBytes:    d.DocumentSizeBytes,
		DocumentCreatedAt:    d.DocumentCreatedAt,
	}
}

func FromModel(a model.ApplicationModel) ApplicationResponse {
	resp := ApplicationResponse{
		ApplicationID:               a.ApplicationID,
		ApplicationStatus:           string(a.ApplicationStatus),
		ApplicationPaymentStatus:    string(a.ApplicationPaymentStatus),
		ApplicationSubmittedAt:      a.ApplicationSubmittedAt,
		ApplicationVersion:          a.ApplicationVersion,
		ApplicationDueAmount:        a.ApplicationDueAmount,
		ApplicationPaidAt:           a.ApplicationPaidAt,
		ApplicationPaymentMethod:    enumStr(a.ApplicationPaymentMethod),
		ApplicationPaymentReference: a.ApplicationPaymentReference,
		ApplicationPaymentNote:      a.PaymentNote(),
		ApplicationOffice:           enumStr(a.ApplicationOffice),

		ApplicationFirstName:       a.ApplicationFirstName,
		ApplicationLastName:        a.ApplicationLastName,
		ApplicationEmail:           a.ApplicationEmail,
		ApplicationPhone:           a.ApplicationPhone,
		ApplicationServiceType:     enumStr(a.ApplicationServiceType),
		ApplicationEvaluationType:  enumStr(a.ApplicationEvaluationType),
		ApplicationPurpose:         enumStr(a.ApplicationPurpose),
		ApplicationDeliveryMethod:  enumStr(a.ApplicationDeliveryMethod),
		ApplicationCountryOfStudy:  a.ApplicationCountryOfStudy,
		ApplicationSourceLanguages: a.ApplicationSourceLanguages,
		ApplicationNotes:           a.ApplicationNotes,

		ApplicationCreatedAt: a.ApplicationCreatedAt,
		ApplicationUpdatedAt: a.ApplicationUpdatedAt,
	}
	for _, e := range a.Educations {
		resp.Educations = append(resp.Educations, FromEducation(e))
	}
	for _, d := range a.Documents {
		resp.Documents = append(resp.Documents, FromDocument(d))
	}
	return resp
}

func FromModels(in []model.ApplicationModel) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(in))
	for _, a := range in {
		out = append(out, FromModel(a))
	}
	return out
}

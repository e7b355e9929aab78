package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/repository"
	helper "fcehub_backend/internals/helpers"
	"fcehub_backend/internals/helpers/dbtime"
)

/* =========================================================
   LIFECYCLE MUTATIONS
========================================================= */

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted processing completed cancelled"`
}

type ChangePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid failed expired refunded"`
	// Required when PaymentStatus is "paid".
	Method string `json:"method" validate:"required_if=PaymentStatus paid,omitempty,oneof=zelle paypal"`
}

// ChangePaidAtRequest: {"paid_at": "<RFC3339>"} sets, {"paid_at": null} clears.
type ChangePaidAtRequest struct {
	PaidAt PatchField[time.Time] `json:"paid_at"`
}

// ChangeDueAmountRequest accepts a JSON number or string; null clears.
type ChangeDueAmountRequest struct {
	DueAmount PatchField[decimal.Decimal] `json:"due_amount"`
}

type ChangeOfficeRequest struct {
	Office PatchField[string] `json:"office"`
}

// Parsed reports whether "office" was sent; a nil office with present=true clears it.
func (r ChangeOfficeRequest) Parsed() (*model.Office, bool) {
	if !r.Office.Present {
		return nil, false
	}
	if r.Office.Value == nil || strings.TrimSpace(*r.Office.Value) == "" {
		return nil, true
	}
	o := model.Office(strings.ToLower(strings.TrimSpace(*r.Office.Value)))
	return &o, true
}

/* =========================================================
   EDUCATION AI-ASSIST
========================================================= */

type UpdateEducationAIRequest struct {
	Equivalency PatchField[string]          `json:"education_ai_equivalency"`
	Confidence  PatchField[float64]         `json:"education_ai_confidence"`
	Raw         PatchField[json.RawMessage] `json:"education_ai_raw"`
}

func (r UpdateEducationAIRequest) ToUpdates() (map[string]any, map[string][]string) {
	up := map[string]any{}
	errs := map[string][]string{}

	if r.Equivalency.Present {
		if v := trimPtr(r.Equivalency.Value); v == nil {
			up["education_ai_equivalency"] = nil
		} else {
			up["education_ai_equivalency"] = *v
		}
	}
	if r.Confidence.Present {
		if r.Confidence.Value == nil {
			up["education_ai_confidence"] = nil
		} else if c := *r.Confidence.Value; c < 0 || c > 1 {
			errs["education_ai_confidence"] = append(errs["education_ai_confidence"], "must be between 0 and 1")
		} else {
			up["education_ai_confidence"] = c
		}
	}
	if r.Raw.Present {
		if r.Raw.Value == nil {
			up["education_ai_raw"] = nil
		} else if !json.Valid(*r.Raw.Value) {
			errs["education_ai_raw"] = append(errs["education_ai_raw"], "must be valid JSON")
		} else {
			up["education_ai_raw"] = datatypes.JSON(*r.Raw.Value)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return up, nil
}

/* =========================================================
   LIST QUERY
========================================================= */

// ParseListQuery reads ?status=submitted,processing&payment_status=..&office=..
// &q=..&submitted_from=YYYY-MM-DD&submitted_to=YYYY-MM-DD&sort_by=..&order=..
// plus the usual page/per_page.
func ParseListQuery(c *fiber.Ctx, opt helper.Options) (lifecycle.ListFilter, helper.Params, map[string][]string) {
	p := helper.ParseFiber(c, repository.DefaultSort, "desc", opt)
	errs := map[string][]string{}

	f := lifecycle.ListFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		SortBy:   p.SortBy,
		SortDesc: p.SortOrder == "desc",
		Offset:   p.Offset(),
		Limit:    p.Limit(),
	}
	if _, ok := repository.SortColumns[f.SortBy]; !ok {
		errs["sort_by"] = append(errs["sort_by"], "unknown sort key")
	}

	for _, s := range splitCSV(c.Query("status")) {
		st := model.ApplicationStatus(s)
		if !st.Valid() {
			errs["status"] = append(errs["status"], "unknown status "+s)
			continue
		}
		f.Statuses = append(f.Statuses, st)
	}
	for _, s := range splitCSV(c.Query("payment_status")) {
		ps := model.PaymentStatus(s)
		if !ps.Valid() {
			errs["payment_status"] = append(errs["payment_status"], "unknown payment status "+s)
			continue
		}
		f.PaymentStatuses = append(f.PaymentStatuses, ps)
	}
	for _, s := range splitCSV(c.Query("office")) {
		o := model.Office(s)
		if !o.Valid() {
			errs["office"] = append(errs["office"], "unknown office "+s)
			continue
		}
		f.Offices = append(f.Offices, o)
	}

	loc := dbtime.BusinessLocation()
	if v := strings.TrimSpace(c.Query("submitted_from")); v != "" {
		if t, _, ok := dbtime.ParseDay(v, loc); ok {
			f.SubmittedAfter = &t
		} else {
			errs["submitted_from"] = append(errs["submitted_from"], "use YYYY-MM-DD or RFC3339")
		}
	}
	if v := strings.TrimSpace(c.Query("submitted_to")); v != "" {
		if t, dateOnly, ok := dbtime.ParseDay(v, loc); ok {
			// inclusive day: everything before the next local midnight
			if dateOnly {
				t = t.In(loc).AddDate(0, 0, 1).UTC()
			}
			f.SubmittedBefore = &t
		} else {
			errs["submitted_to"] = append(errs["submitted_to"], "use YYYY-MM-DD or RFC3339")
		}
	}

	if len(errs) > 0 {
		return f, p, errs
	}
	return f, p, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

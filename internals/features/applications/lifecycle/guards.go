package lifecycle

import (
	"fmt"

	"fcehub_backend/internals/features/applications/model"
)

// Guards are pure: they look at the current record only and never write.
//
// Staff status graph:
//
//	submitted ──► processing ──► completed
//	    │              │
//	    └──────────────┴──► cancelled
//
// draft ──► submitted happens only through Submit (customer flow).
// completed and cancelled are terminal.

type GuardResult struct {
	Allowed bool
	Err     *TransitionError
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(field, from, to, reason string) GuardResult {
	return GuardResult{Err: &TransitionError{Field: field, From: from, To: to, Reason: reason}}
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return r.Err
}

// CanChangeStatus evaluates a staff-initiated status change.
func CanChangeStatus(app *model.ApplicationModel, to model.ApplicationStatus) GuardResult {
	from := app.ApplicationStatus
	pay := app.ApplicationPaymentStatus
	field := "status"

	if !to.Valid() {
		return deny(field, string(from), string(to), "unknown status")
	}
	if from.IsTerminal() {
		return deny(field, string(from), string(to), fmt.Sprintf("application is already %s", from))
	}

	switch {
	case from == model.ApplicationStatusSubmitted && to == model.ApplicationStatusProcessing:
		if pay != model.PaymentStatusPaid {
			return deny(field, string(from), string(to),
				fmt.Sprintf("payment status is %s, must be paid", pay))
		}
		return allow()

	case from == model.ApplicationStatusSubmitted && to == model.ApplicationStatusCancelled:
		return allow()

	case from == model.ApplicationStatusProcessing && to == model.ApplicationStatusCompleted:
		if pay != model.PaymentStatusPaid {
			return deny(field, string(from), string(to),
				fmt.Sprintf("payment status is %s, must be paid", pay))
		}
		return allow()

	case from == model.ApplicationStatusProcessing && to == model.ApplicationStatusCancelled:
		if pay == model.PaymentStatusPaid {
			return deny(field, string(from), string(to),
				"payment status is paid, a paid application in processing cannot be cancelled")
		}
		return allow()
	}

	if from == model.ApplicationStatusDraft {
		return deny(field, string(from), string(to), "a draft can only be submitted by the customer")
	}
	return deny(field, string(from), string(to), "transition is not allowed")
}

// CanSubmit: only drafts are submitted, and only once.
func CanSubmit(app *model.ApplicationModel) GuardResult {
	if app.ApplicationStatus != model.ApplicationStatusDraft {
		return deny("status", string(app.ApplicationStatus), string(model.ApplicationStatusSubmitted),
			"only a draft application can be submitted")
	}
	if app.ApplicationSubmittedAt != nil {
		return deny("status", string(app.ApplicationStatus), string(model.ApplicationStatusSubmitted),
			"application was already submitted once")
	}
	return allow()
}

// CanMarkPaid: payment may become paid only from pending or expired.
func CanMarkPaid(app *model.ApplicationModel) GuardResult {
	pay := app.ApplicationPaymentStatus
	if !pay.IsOpen() {
		return deny("payment_status", string(pay), string(model.PaymentStatusPaid),
			"payment status must be pending or expired")
	}
	return allow()
}

// CanEditPaymentDetails protects paid_at and the payment reference once the
// payment is settled, failed or refunded.
func CanEditPaymentDetails(app *model.ApplicationModel) GuardResult {
	pay := app.ApplicationPaymentStatus
	if !pay.IsOpen() {
		return deny("paid_at", string(pay), string(pay),
			fmt.Sprintf("payment status is %s, paid date can only change while pending or expired", pay))
	}
	return allow()
}

// CanEditSubmittedFields covers due_amount and office.
func CanEditSubmittedFields(app *model.ApplicationModel, field string) GuardResult {
	st := app.ApplicationStatus
	if st != model.ApplicationStatusSubmitted {
		return deny(field, string(st), string(st),
			fmt.Sprintf("application status is %s, %s can only change while submitted", st, field))
	}
	return allow()
}

// CanEditDraft: customer autosave and uploads.
func CanEditDraft(app *model.ApplicationModel) GuardResult {
	st := app.ApplicationStatus
	if st != model.ApplicationStatusDraft {
		return deny("application", string(st), string(st),
			fmt.Sprintf("application status is %s, only drafts can be edited", st))
	}
	return allow()
}

// CanStartCheckout: a hosted checkout is opened for a submitted application
// with an open payment and a positive due amount.
func CanStartCheckout(app *model.ApplicationModel) GuardResult {
	st := app.ApplicationStatus
	pay := app.ApplicationPaymentStatus
	if st != model.ApplicationStatusSubmitted {
		return deny("payment_status", string(pay), string(model.PaymentStatusPaid),
			fmt.Sprintf("application status is %s, checkout requires submitted", st))
	}
	if !pay.IsOpen() {
		return deny("payment_status", string(pay), string(model.PaymentStatusPaid),
			"payment status must be pending or expired")
	}
	if app.ApplicationDueAmount == nil || !app.ApplicationDueAmount.IsPositive() {
		return deny("payment_status", string(pay), string(model.PaymentStatusPaid),
			"due amount has not been set")
	}
	return allow()
}

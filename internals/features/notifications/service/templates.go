package service

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var funcs = template.FuncMap{
	"money": func(a model.ApplicationModel) string {
		if a.ApplicationDueAmount == nil {
			return "not set"
		}
		return "$" + a.ApplicationDueAmount.StringFixed(2)
	},
	"short": func(a model.ApplicationModel) string {
		return strings.ToUpper(a.ApplicationID.String()[:8])
	},
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(strings.TrimSpace(body) + "\n"))
}

var templates = map[string]emailTemplate{
	lifecycle.TemplateDueAmountChanged: {
		subject: "Your application {{short .}}: amount due updated",
		body: mustTemplate("due", `
Hello {{.ApplicationFirstName}},

The amount due for your application {{short .}} is now {{money .}}.
{{- if .ApplicationDueAmount}}
You can complete the payment from the link in your application page.
{{- end}}

Thank you.`),
	},
	lifecycle.TemplateApplicationSubmitted: {
		subject: "We received your application {{short .}}",
		body: mustTemplate("submitted", `
Hello {{.ApplicationFirstName}},

Thank you for submitting your application {{short .}}.
Our team will review it and send you the amount due shortly.

Thank you.`),
	},
	lifecycle.TemplateStatusUpdate + ":" + string(model.ApplicationStatusSubmitted): {
		subject: "Your application {{short .}} is awaiting payment",
		body: mustTemplate("status_submitted", `
Hello {{.ApplicationFirstName}},

Your application {{short .}} has been reviewed. The amount due is {{money .}}.
Work starts as soon as the payment is received.

Thank you.`),
	},
	lifecycle.TemplateStatusUpdate + ":" + string(model.ApplicationStatusProcessing): {
		subject: "Your application {{short .}} is being processed",
		body: mustTemplate("status_processing", `
Hello {{.ApplicationFirstName}},

We received your payment and started working on application {{short .}}.

Thank you.`),
	},
	lifecycle.TemplateStatusUpdate + ":" + string(model.ApplicationStatusCompleted): {
		subject: "Your application {{short .}} is complete",
		body: mustTemplate("status_completed", `
Hello {{.ApplicationFirstName}},

Your application {{short .}} is complete.
{{- if .ApplicationDeliveryMethod}} It will be delivered by {{.ApplicationDeliveryMethod}}.{{end}}

Thank you.`),
	},
	lifecycle.TemplateStatusUpdate + ":" + string(model.ApplicationStatusCancelled): {
		subject: "Your application {{short .}} was cancelled",
		body: mustTemplate("status_cancelled", `
Hello {{.ApplicationFirstName}},

Your application {{short .}} has been cancelled. Reply to this email if you think this is a mistake.

Thank you.`),
	},
}

// Render picks the template for name. status_update is keyed by the
// application's current status; drafts have nothing to announce.
func Render(name string, app model.ApplicationModel) (*Email, error) {
	key := name
	if name == lifecycle.TemplateStatusUpdate {
		key = name + ":" + string(app.ApplicationStatus)
	}
	tpl, ok := templates[key]
	if !ok {
		return nil, fmt.Errorf("no %s email for status %s", name, app.ApplicationStatus)
	}
	if strings.TrimSpace(app.ApplicationEmail) == "" {
		return nil, fmt.Errorf("application %s has no email address", app.ApplicationID)
	}

	subject, err := template.New("subject").Funcs(funcs).Parse(tpl.subject)
	if err != nil {
		return nil, err
	}
	var sb, bb bytes.Buffer
	if err := subject.Execute(&sb, app); err != nil {
		return nil, err
	}
	if err := tpl.body.Execute(&bb, app); err != nil {
		return nil, err
	}
	return &Email{To: app.ApplicationEmail, Subject: sb.String(), Body: bb.String()}, nil
}

package dto_test

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"fcehub_backend/internals/features/applications/dto"
	helper "fcehub_backend/internals/helpers"
)

func autosave(t *testing.T, body string) (map[string]any, map[string][]string) {
	t.Helper()
	var req dto.AutosaveApplicationRequest
	if err := sonic.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return req.ToUpdates(helper.NewValidator())
}

func TestAutosaveCountsCharactersNotBytes(t *testing.T) {
	name := strings.Repeat("李", 40)
	up, errs := autosave(t, `{"application_first_name":"`+name+`"}`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if up["application_first_name"] != name {
		t.Fatalf("first name = %v", up["application_first_name"])
	}

	_, errs = autosave(t, `{"application_first_name":"`+strings.Repeat("李", 101)+`"}`)
	if len(errs["application_first_name"]) == 0 {
		t.Fatal("101 characters accepted")
	}
}

func TestAutosaveRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"email without domain", `{"application_email":"a@"}`, "application_email"},
		{"email without at", `{"application_email":"ana.example.com"}`, "application_email"},
		{"blank first name", `{"application_first_name":"  "}`, "application_first_name"},
		{"unknown purpose", `{"application_purpose":"tourism"}`, "application_purpose"},
		{"too many languages", `{"application_source_languages":["a","b","c","d","e","f","g","h","i","j","k"]}`, "application_source_languages"},
		{"long language", `{"application_source_languages":["` + strings.Repeat("x", 41) + `"]}`, "application_source_languages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, errs := autosave(t, tt.body)
			if up != nil {
				t.Fatalf("updates = %v, want nil", up)
			}
			if len(errs[tt.field]) == 0 {
				t.Fatalf("no error for %s: %v", tt.field, errs)
			}
		})
	}
}

func TestAutosaveNormalizesValues(t *testing.T) {
	up, errs := autosave(t, `{"application_email":" Ana@Example.COM ","application_last_name":null,"application_phone":"","application_delivery_method":"mail"}`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if up["application_email"] != "ana@example.com" {
		t.Fatalf("email = %v", up["application_email"])
	}
	if up["application_last_name"] != "" {
		t.Fatalf("last name = %v, want empty string", up["application_last_name"])
	}
	if v, ok := up["application_phone"]; !ok || v != nil {
		t.Fatalf("phone = %v (present %v), want nil", v, ok)
	}
	if up["application_delivery_method"] != "mail" {
		t.Fatalf("delivery = %v", up["application_delivery_method"])
	}
}

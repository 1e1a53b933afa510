package validator

import "testing"

func TestVarTags(t *testing.T) {
	cases := []struct {
		name  string
		value string
		tag   string
		valid bool
	}{
		{"oneof accepts option", "weekly", "oneof=daily weekly monthly", true},
		{"oneof rejects unknown", "hourly", "oneof=daily weekly monthly", false},
		{"date accepts ISO day", "2024-03-28", "datetime=2006-01-02", true},
		{"date rejects garbage", "28/03/2024", "datetime=2006-01-02", false},
		{"max length", "BATCH-2024-001", "max=64", true},
		{"slug", "samples-crm", "slug", true},
		{"slug rejects upper case", "Samples", "slug", false},
		{"route", "/dashboard/supplier-kyc", "route", true},
		{"route rejects trailing slash", "/dashboard/", "route", false},
		{"no_html", "<b>x</b>", "no_html", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Var(tc.value, tc.tag)
			if tc.valid && err != nil {
				t.Fatalf("expected %q to pass %q: %v", tc.value, tc.tag, err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected %q to fail %q", tc.value, tc.tag)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString(`<script>alert(1)</script>B-001`); got != "B-001" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := NormalizeSpaces("  Batch   #001 "); got != "Batch #001" {
		t.Fatalf("unexpected normalized value %q", got)
	}
}

func TestValidateStruct(t *testing.T) {
	type entry struct {
		Slug  string `validate:"required,slug"`
		Route string `validate:"required,route"`
	}

	if err := Validate(entry{Slug: "operations", Route: "/dashboard/operations"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(entry{Slug: "Operations", Route: "dashboard"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNormalizeText(t *testing.T) {
	decomposed := "Cafe\u0301  Lot 7"
	if got := NormalizeText(decomposed); got != "Caf\u00e9 Lot 7" {
		t.Fatalf("unexpected normalized value %q", got)
	}
}

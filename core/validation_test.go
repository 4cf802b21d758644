package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateClause(t *testing.T) {
	valid := Clause{SectionTitle: "Access", Text: "Passwords rotate every 90 days.", Area: AreaSecurity, Relevance: 0.8}

	tests := []struct {
		name    string
		mutate  func(c *Clause)
		wantErr bool
	}{
		{name: "valid clause", mutate: func(c *Clause) {}},
		{name: "empty section title allowed", mutate: func(c *Clause) { c.SectionTitle = "" }},
		{name: "relevance zero", mutate: func(c *Clause) { c.Relevance = 0 }},
		{name: "relevance one", mutate: func(c *Clause) { c.Relevance = 1 }},
		{name: "blank text", mutate: func(c *Clause) { c.Text = "  " }, wantErr: true},
		{name: "unknown area", mutate: func(c *Clause) { c.Area = "marketing" }, wantErr: true},
		{name: "relevance above one", mutate: func(c *Clause) { c.Relevance = 1.5 }, wantErr: true},
		{name: "negative relevance", mutate: func(c *Clause) { c.Relevance = -0.1 }, wantErr: true},
		{name: "NaN relevance", mutate: func(c *Clause) { c.Relevance = math.NaN() }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateClause(&c)
			if tt.wantErr && !errors.Is(err, ErrInvalidClause) {
				t.Errorf("ValidateClause() error = %v, want ErrInvalidClause", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateClause() unexpected error: %v", err)
			}
		})
	}

	if err := ValidateClause(nil); !errors.Is(err, ErrInvalidClause) {
		t.Errorf("ValidateClause(nil) error = %v", err)
	}
}

func TestParseVerdictStatus(t *testing.T) {
	tests := map[string]VerdictStatus{
		"valid":   VerdictValid,
		"VALID":   VerdictValid,
		" Valid ": VerdictValid,
		"invalid": VerdictInvalid,
		"unknown": VerdictInvalid,
		"":        VerdictInvalid,
	}
	for in, want := range tests {
		if got := ParseVerdictStatus(in); got != want {
			t.Errorf("ParseVerdictStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeBaseName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "policy.pdf", want: "policy"},
		{in: "a/b/Policy.v2.pdf", want: "Policy.v2"},
		{in: `C:\docs\Handbook.md`, want: "Handbook"},
		{in: "Handbook", want: "Handbook"},
		{in: "", wantErr: true},
		{in: "  ", wantErr: true},
		{in: "dir/", wantErr: false, want: "dir"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeBaseName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingDocumentName) {
					t.Errorf("NormalizeBaseName(%q) error = %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeBaseName(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeBaseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArtifactNames(t *testing.T) {
	if got := MarkdownName("policy"); got != "policy.md" {
		t.Errorf("MarkdownName() = %q", got)
	}
	if got := SectionsName("title", "policy"); got != "title_policy.json" {
		t.Errorf("SectionsName() = %q", got)
	}
	if got := ClausesName("policy"); got != "policy.json" {
		t.Errorf("ClausesName() = %q", got)
	}
	if got := RawName("policy"); got != "raw/policy.pdf" {
		t.Errorf("RawName() = %q", got)
	}
}

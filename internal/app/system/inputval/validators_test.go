package inputval

import "testing"

func TestIsValidMajor(t *testing.T) {
	tests := []struct {
		major string
		want  bool
	}{
		{"cs", true},
		{"biology", true},
		{"business", true},
		{"engineering", true},
		{"other", true},

		// case insensitive, trimmed
		{"CS", true},
		{"  Biology  ", true},

		{"", false},
		{"   ", false},
		{"history", false},
		{"undeclared", false},
	}

	for _, tt := range tests {
		t.Run(tt.major, func(t *testing.T) {
			if got := IsValidMajor(tt.major); got != tt.want {
				t.Errorf("IsValidMajor(%q) = %v, want %v", tt.major, got, tt.want)
			}
		})
	}
}

func TestIsValidAcademicYear(t *testing.T) {
	tests := []struct {
		year string
		want bool
	}{
		{"freshman", true},
		{"sophomore", true},
		{"junior", true},
		{"senior", true},
		{"graduate", true},
		{"Senior", true},
		{"", false},
		{"postdoc", false},
		{"unspecified", false},
	}

	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			if got := IsValidAcademicYear(tt.year); got != tt.want {
				t.Errorf("IsValidAcademicYear(%q) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		// Valid URLs
		{"http://example.com", true},
		{"https://example.com", true},
		{"http://example.com/path", true},
		{"https://example.com/path?query=1", true},
		{"http://localhost:8080", true},
		{"https://sub.domain.example.com", true},

		// Valid with whitespace (trimmed)
		{"  https://example.com  ", true},

		// Invalid URLs
		{"", false},
		{"   ", false},
		{"ftp://example.com", false},
		{"mailto:user@example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
		{"file:///path/to/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		// Valid ObjectIDs (24 hex characters)
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"ffffffffffffffffffffffff", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid

		// Valid with whitespace (trimmed)
		{"  507f1f77bcf86cd799439011  ", true},

		// Invalid ObjectIDs
		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},   // too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
		{"12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `json:"name" validate:"required,max=10" label:"Full name"`
		Email string `json:"email" validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
		wantField  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Email: "john@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
			wantField:  "name",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
			wantField:  "name",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
			wantField:  "email",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
			wantField:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
			if tt.wantErrors && result.FirstField() != tt.wantField {
				t.Errorf("Validate() FirstField() = %q, want %q", result.FirstField(), tt.wantField)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestValidate_CustomRules(t *testing.T) {
	type PriorityInput struct {
		Priority string `json:"priority" validate:"required,priority" label:"Priority"`
	}

	type URLInput struct {
		URL string `json:"url" validate:"required,httpurl" label:"URL"`
	}

	type TypeInput struct {
		Type string `json:"type" validate:"required,eventtype" label:"Type"`
	}

	t.Run("valid priority", func(t *testing.T) {
		if result := Validate(PriorityInput{Priority: "high"}); result.HasErrors() {
			t.Errorf("Validate(valid priority) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		result := Validate(PriorityInput{Priority: "urgent"})
		if !result.HasErrors() {
			t.Fatal("Validate(invalid priority) should have errors")
		}
		if want := "Priority must be one of: high, medium, low."; result.First() != want {
			t.Errorf("First() = %q, want %q", result.First(), want)
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if result := Validate(URLInput{URL: "not-a-url"}); !result.HasErrors() {
			t.Error("Validate(invalid URL) should have errors")
		}
	})

	t.Run("event type", func(t *testing.T) {
		if result := Validate(TypeInput{Type: "exam"}); result.HasErrors() {
			t.Errorf("Validate(exam) has errors: %v", result.Errors)
		}
		if result := Validate(TypeInput{Type: "party"}); !result.HasErrors() {
			t.Error("Validate(party) should have errors")
		}
	})
}

package errors

import (
	"testing"
)

func TestValidateRepository(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr bool
	}{
		{"valid", "octocat", "hello-world", false},
		{"valid dotted", "octo-org", "site.github.io", false},
		{"valid underscore", "o", "my_repo", false},

		{"empty owner", "", "repo", true},
		{"empty name", "octocat", "", true},
		{"owner leading dash", "-octo", "repo", true},
		{"owner with slash", "octo/cat", "repo", true},
		{"name dot", "octocat", ".", true},
		{"name dotdot", "octocat", "..", true},
		{"name with space", "octocat", "my repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepository(tt.owner, tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepository(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRepository) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidRepository)
			}
		})
	}
}

func TestParseFullName(t *testing.T) {
	owner, name, err := ParseFullName(" octocat/hello ")
	if err != nil {
		t.Fatalf("ParseFullName: %v", err)
	}
	if owner != "octocat" || name != "hello" {
		t.Errorf("got %q/%q", owner, name)
	}

	for _, bad := range []string{"", "octocat", "/hello", "octocat/"} {
		if _, _, err := ParseFullName(bad); err == nil {
			t.Errorf("ParseFullName(%q) expected error", bad)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "README.md", false},
		{"nested", "src/app/main.py", false},
		{"dots in name", "a..b/c.txt", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"inner traversal", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"control", "a\x00b", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://api.github.com", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

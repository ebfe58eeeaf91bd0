package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ownerRegex matches GitHub user and organization logins.
var ownerRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// repoNameRegex matches GitHub repository names.
var repoNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)

// ValidateRepository checks that owner and name identify a repository.
// Empty parts are the common failure and get their own messages.
func ValidateRepository(owner, name string) error {
	if owner == "" {
		return New(ErrCodeInvalidRepository, "repository owner cannot be empty")
	}
	if name == "" {
		return New(ErrCodeInvalidRepository, "repository name cannot be empty")
	}
	if !ownerRegex.MatchString(owner) {
		return New(ErrCodeInvalidRepository, "invalid repository owner: %q", owner)
	}
	if name == "." || name == ".." || !repoNameRegex.MatchString(name) {
		return New(ErrCodeInvalidRepository, "invalid repository name: %q", name)
	}
	return nil
}

// ParseFullName splits "owner/name" and validates both halves.
func ParseFullName(full string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(full), "/")
	if !ok {
		return "", "", New(ErrCodeInvalidRepository, "expected owner/name, got %q", full)
	}
	if err := ValidateRepository(owner, name); err != nil {
		return "", "", err
	}
	return owner, name, nil
}

// ValidatePath validates a file path within a repository or archive.
// It prevents path traversal when archive entries are written to disk.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

package validator

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLen        = 255
	maxLogicalPathLen = 500
	maxTitleLen       = 255
	maxContentTypeLen = 255
	maxBatchSize      = 500
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d characters"
	errNameEmptyFmt            = "%s name cannot be empty"
	errNameMaxLengthFmt        = "%s name must not exceed %d characters"
	errNamePathSepFmt          = "%s name cannot contain path separators"
	errNameControlCharsFmt     = "%s name cannot contain control characters"
	errPathMaxLengthFmt        = "path must not exceed %d characters"
	errPathBackslashFmt        = "path cannot contain backslashes"
	errPathEmptySegFmt         = "path contains empty segment"
	errPathTraversalFmt        = "path cannot contain path traversal"
	errPathControlCharsFmt     = "path cannot contain control characters"
	errTitleMaxLengthFmt       = "title must not exceed %d characters"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errIDsEmptyFmt             = "at least one id is required"
	errIDsMaxFmt               = "at most %d ids allowed per request"

	kindFile   = "file"
	kindFolder = "folder"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func FileName(name string) error {
	return entryName(kindFile, name)
}

func FolderName(name string) error {
	return entryName(kindFolder, name)
}

func entryName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf(errNameEmptyFmt, kind)
	}

	if len(name) > maxNameLen {
		return fmt.Errorf(errNameMaxLengthFmt, kind, maxNameLen)
	}

	if name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf(errNamePathSepFmt, kind)
	}

	if hasControlChars(name) {
		return fmt.Errorf(errNameControlCharsFmt, kind)
	}

	return nil
}

// LogicalPath validates a slash-delimited catalog path. Empty means the root.
func LogicalPath(path string) error {
	if path == "" {
		return nil
	}

	if len(path) > maxLogicalPathLen {
		return fmt.Errorf(errPathMaxLengthFmt, maxLogicalPathLen)
	}

	if strings.Contains(path, `\`) {
		return fmt.Errorf(errPathBackslashFmt)
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf(errPathEmptySegFmt)
		}
		if seg == ".." || seg == "." {
			return fmt.Errorf(errPathTraversalFmt)
		}
		if hasControlChars(seg) {
			return fmt.Errorf(errPathControlCharsFmt)
		}
	}

	return nil
}

// NormalizePath trims surrounding whitespace and slashes.
func NormalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

func Title(title string) error {
	if len(title) > maxTitleLen {
		return fmt.Errorf(errTitleMaxLengthFmt, maxTitleLen)
	}
	return nil
}

func ContentType(contentType string) error {
	if contentType == "" {
		return nil
	}

	if len(contentType) > maxContentTypeLen {
		return fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	if _, _, err := mime.ParseMediaType(contentType); err != nil {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	return nil
}

func BatchIDs(n int) error {
	if n == 0 {
		return fmt.Errorf(errIDsEmptyFmt)
	}
	if n > maxBatchSize {
		return fmt.Errorf(errIDsMaxFmt, maxBatchSize)
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, char := range s {
		if char < asciiControlStart || char == asciiDelete {
			return true
		}
	}
	return false
}

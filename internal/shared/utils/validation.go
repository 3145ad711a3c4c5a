package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxJSONSize    = 1 * 1024 * 1024 // 1MB - maximum request payload
	MaxFileSize    = 512 * 1024      // 512KB - single virtual file
	MaxMessageSize = 16 * 1024       // 16KB - single websocket message
)

// String length limits
const (
	MaxIDLength   = 128
	MaxNameLength = 256
	MaxPathLength = 1024
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// TaskNamePattern allows lowercase identifiers with dots and hyphens
	TaskNamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateTaskName validates a worker task name
func ValidateTaskName(task string) error {
	if err := ValidateString(task, "task", 1, MaxIDLength, true); err != nil {
		return err
	}
	if !TaskNamePattern.MatchString(task) {
		return fmt.Errorf("task contains invalid characters")
	}
	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidatePath validates a virtual file path
func ValidatePath(path string) error {
	if err := ValidateString(path, "path", 1, MaxPathLength, true); err != nil {
		return err
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return fmt.Errorf("path must not contain '..' segments")
		}
	}
	return nil
}

// ValidateContentSize checks a file body against MaxFileSize
func ValidateContentSize(content string) error {
	if len(content) > MaxFileSize {
		return fmt.Errorf("content size %d bytes exceeds maximum %d bytes", len(content), MaxFileSize)
	}
	return nil
}

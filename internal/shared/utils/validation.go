package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits for fields arriving over the wire
const (
	MaxNameLength    = 512
	MaxHotCodeLength = 32
	MaxScanNames     = 10000
)

// HotCodePattern matches keyboard code names such as "KeyA", "Digit1" or "F5"
var HotCodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

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

	if !utf8.ValidString(value) || strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateAppName validates a required app name
func ValidateAppName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateHotCode validates an optional key code; empty clears a binding
func ValidateHotCode(code string) error {
	if err := ValidateString(code, "value", 1, MaxHotCodeLength, false); err != nil {
		return err
	}
	if code != "" && !HotCodePattern.MatchString(code) {
		return fmt.Errorf("value %q is not a key code", code)
	}
	return nil
}

// ValidateNames validates a scan result
func ValidateNames(names []string) error {
	if len(names) > MaxScanNames {
		return fmt.Errorf("names must not exceed %d entries", MaxScanNames)
	}
	for i, name := range names {
		if err := ValidateAppName(name, fmt.Sprintf("names[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

package device

import (
	"fmt"
	"strings"
)

// ImportRow is one validated credential pair from a CSV import.
type ImportRow struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LineError describes why a single import line was rejected.
// Line numbers are 1-indexed as the operator sees them.
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every offending line of an import batch.
// Validation is all-or-nothing: one bad line rejects the whole batch, and
// all bad lines are reported at once so the operator fixes them in one pass.
type ValidationError struct {
	Lines []LineError
}

// Error formats all offending lines.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, le := range e.Lines {
		parts[i] = fmt.Sprintf("line %d: %s", le.Line, le.Reason)
	}
	return "device: invalid import: " + strings.Join(parts, "; ")
}

// ParseImport parses newline-delimited "username,password" text.
//
// The format is headerless; blank lines are skipped and fields are trimmed.
// Returns the validated rows, or a ValidationError naming every bad line.
func ParseImport(raw string) ([]ImportRow, error) {
	var rows []ImportRow
	var lineErrs []LineError

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lineNo := i + 1

		if strings.TrimSpace(line) == "" {
			continue
		}

		username, password, found := strings.Cut(line, ",")
		if !found {
			lineErrs = append(lineErrs, LineError{lineNo, "expected username,password"})
			continue
		}

		username = strings.TrimSpace(username)
		password = strings.TrimSpace(password)

		if reason := validateImportRow(username, password); reason != "" {
			lineErrs = append(lineErrs, LineError{lineNo, reason})
			continue
		}

		rows = append(rows, ImportRow{Username: username, Password: password})
	}

	if len(lineErrs) > 0 {
		return nil, &ValidationError{Lines: lineErrs}
	}

	return rows, nil
}

// validateImportRow returns a rejection reason, or "" if the row is valid.
func validateImportRow(username, password string) string {
	switch {
	case username == "":
		return "username is empty"
	case len(username) > MaxUsernameLength:
		return fmt.Sprintf("username exceeds %d characters", MaxUsernameLength)
	case password == "":
		return "password is empty"
	case len(password) > MaxPasswordLength:
		return fmt.Sprintf("password exceeds %d characters", MaxPasswordLength)
	}
	return ""
}

package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, the underlying cause is included.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	e, ok := As(err)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if debug && e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString("Cause: ")
		sb.WriteString(e.Cause.Error())
		sb.WriteString("\n")
	}

	if e.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\n[%s]", e.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	e, ok := As(err)
	if !ok {
		e = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Message))
	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("  Cause: %v\n", e.Cause))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", e.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", e.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	e, ok := As(err)
	if !ok {
		e = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       e.Code,
		Message:    e.Message,
		Category:   string(e.Category),
		Severity:   string(e.Severity),
		Details:    e.Details,
		Suggestion: e.Suggestion,
	}
	if e.Cause != nil {
		je.Cause = e.Cause.Error()
	}

	return json.Marshal(je)
}

// LogAttrs returns slog attributes describing err, suitable for
// logger.Error("...", errors.LogAttrs(err)...).
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	e, ok := As(err)
	if !ok {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", e.Code),
		slog.String("error", e.Message),
		slog.String("category", string(e.Category)),
		slog.String("severity", string(e.Severity)),
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	if e.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", e.Suggestion))
	}
	for k, v := range e.Details {
		attrs = append(attrs, slog.String("detail_"+k, v))
	}

	return attrs
}

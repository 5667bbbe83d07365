// Package report collects errors raised while mirroring an account and turns
// them into a categorized error log.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/aws/smithy-go"
)

// Collector is a run-scoped, append-only list of errors. It is safe for
// concurrent use.
type Collector struct {
	mu     sync.Mutex
	errors []error
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records err. Nil errors are ignored. Errors are never deduplicated.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns a copy of the recorded errors in insertion order.
func (c *Collector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Len returns the number of recorded errors.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// Entry is one serialized error in the log.
type Entry struct {
	Type  Category       `json:"type"`
	Error map[string]any `json:"error"`
}

// Report is the persisted error log.
type Report struct {
	Count      int              `json:"count"`
	Categories map[Category]int `json:"categories"`
	Errors     []Entry          `json:"errors"`
}

// Detailer is implemented by errors that carry structured detail beyond their
// message. Details are merged into the serialized error.
type Detailer interface {
	Details() map[string]any
}

// sensitiveFields lists detail keys that are never written to the log.
var sensitiveFields = []string{"Token-0", "AWSAccessKeyId"}

var (
	accessKeyPattern = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`)
	// Presigned URLs end up in transport errors, such as a *url.Error from a
	// failed S3 request.
	signedQueryPattern = regexp.MustCompile(`(?i)(X-Amz-(?:Security-Token|Credential|Signature))=[^&\s"]+`)
)

// redact masks access key IDs and request signing material in s.
func redact(s string) string {
	s = signedQueryPattern.ReplaceAllString(s, "$1=[redacted]")
	return accessKeyPattern.ReplaceAllString(s, "[redacted]")
}

// Format classifies every recorded error and serializes it, preserving order.
func (c *Collector) Format() Report {
	errs := c.Errors()

	r := Report{
		Count:      len(errs),
		Categories: make(map[Category]int, len(Categories)),
		Errors:     make([]Entry, 0, len(errs)),
	}
	for _, cat := range Categories {
		r.Categories[cat] = 0
	}

	for _, err := range errs {
		cat := Classify(err)
		r.Categories[cat]++
		r.Errors = append(r.Errors, Entry{Type: cat, Error: Serialize(err)})
	}

	return r
}

// Serialize flattens err into a JSON-friendly map. Credentials and signing
// material are removed from messages and details.
func Serialize(err error) map[string]any {
	fields := map[string]any{
		"name":    fmt.Sprintf("%T", err),
		"message": redact(err.Error()),
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields["code"] = apiErr.ErrorCode()
		fields["errorMessage"] = redact(apiErr.ErrorMessage())
		fields["fault"] = apiErr.ErrorFault().String()
	}
	if status := httpStatus(err); status != 0 {
		fields["httpStatusCode"] = status
	}
	var withRequestID interface{ ServiceRequestID() string }
	if errors.As(err, &withRequestID) {
		fields["requestId"] = withRequestID.ServiceRequestID()
	}
	var detailer Detailer
	if errors.As(err, &detailer) {
		for k, v := range detailer.Details() {
			if str, ok := v.(string); ok {
				v = redact(str)
			}
			fields[k] = v
		}
	}
	for _, key := range sensitiveFields {
		delete(fields, key)
	}

	return fields
}

// Summary picks the single user-facing message for a report, by category
// precedence. It returns nil when the report holds no errors.
func (r Report) Summary(logPath string) error {
	if r.Count == 0 {
		return nil
	}
	for _, cat := range Categories {
		if r.Categories[cat] > 0 {
			return &SummaryError{Category: cat, LogPath: logPath}
		}
	}
	return &SummaryError{Category: Unknown, LogPath: logPath}
}

// SummaryError is the one error surfaced to the user after a run with errors.
type SummaryError struct {
	Category Category
	LogPath  string
}

func (e *SummaryError) Error() string {
	var msg string
	switch e.Category {
	case NoInternetAccess:
		msg = "Could not connect to AWS. Check your internet connection."
	case AuthenticationMissing:
		msg = "No AWS credentials were found. Configure credentials (for example with `aws configure`) and try again."
	case AuthenticationExpired:
		msg = "Your AWS credentials have expired. Refresh them and try again."
	case AuthenticationInvalid:
		msg = "Your AWS credentials are invalid. Check the configured access key and try again."
	case InsufficientPermissions:
		msg = "The operation completed, but your AWS credentials lack permissions for some resources."
	case SchemaValidationFailed:
		msg = "The operation completed, but some resources did not match the expected schema."
	default:
		msg = "The operation completed, but with some errors."
	}
	return fmt.Sprintf("%s Check the %s file for more information.", msg, e.LogPath)
}

// Write persists the report as indented JSON.
func (r Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal error report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write error report: %w", err)
	}
	return nil
}

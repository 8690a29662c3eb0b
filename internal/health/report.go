package health

import (
	"fmt"
	"sort"
	"strings"
)

type ReportStatus string

const (
	ReportOK    ReportStatus = "ok"
	ReportError ReportStatus = "error"
)

// Report is the combined result of all registered indicators for one
// check cycle. Every indicator appears exactly once in Details and in
// exactly one of Info and Errors.
type Report struct {
	Status  ReportStatus      `json:"status"`
	Info    map[string]Result `json:"info"`
	Errors  map[string]Result `json:"error"`
	Details map[string]Result `json:"details"`
}

func newReport(results []Result) *Report {
	report := &Report{
		Status:  ReportOK,
		Info:    make(map[string]Result, len(results)),
		Errors:  make(map[string]Result),
		Details: make(map[string]Result, len(results)),
	}
	for _, result := range results {
		report.Details[result.Name] = result
		if result.Healthy() {
			report.Info[result.Name] = result
		} else {
			report.Errors[result.Name] = result
			report.Status = ReportError
		}
	}
	return report
}

// ErrorMessage summarizes the failing indicators, one "name: reason"
// fragment per entry in a stable order. Empty when the report is OK.
func (r *Report) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.Errors))
	for name := range r.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		reason := r.Errors[name].Error
		if reason == "" {
			reason = "check failed"
		}
		parts[i] = fmt.Sprintf("%s: %s", name, reason)
	}
	return strings.Join(parts, "; ")
}

// Package report renders deploy summaries for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	yaml "go.yaml.in/yaml/v3"

	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

// Format selects the rendering of a summary.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means FormatText.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(messages.ReportInvalidFormatFmt, value)
	}
}

// Document is the machine-readable form of a deploy summary.
type Document struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Mode       string    `json:"mode" yaml:"mode"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Aborted    bool      `json:"aborted" yaml:"aborted"`
	OK         bool      `json:"ok" yaml:"ok"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
	Counts     Counts    `json:"counts" yaml:"counts"`
	Files      []File    `json:"files" yaml:"files"`
}

// Counts mirrors deploy.Counts with stable field names.
type Counts struct {
	Copied       int `json:"copied" yaml:"copied"`
	Skipped      int `json:"skipped_up_to_date" yaml:"skipped_up_to_date"`
	Failed       int `json:"failed" yaml:"failed"`
	NotAttempted int `json:"not_attempted" yaml:"not_attempted"`
}

// File is one deployment target in a Document.
type File struct {
	Name               string `json:"name" yaml:"name"`
	Source             string `json:"source,omitempty" yaml:"source,omitempty"`
	Destination        string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Outcome            string `json:"outcome" yaml:"outcome"`
	Planned            bool   `json:"planned,omitempty" yaml:"planned,omitempty"`
	Reason             string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error              string `json:"error,omitempty" yaml:"error,omitempty"`
	SourceVersion      string `json:"source_version,omitempty" yaml:"source_version,omitempty"`
	DestinationVersion string `json:"destination_version,omitempty" yaml:"destination_version,omitempty"`
}

// NewDocument converts a summary.
func NewDocument(s deploy.Summary) Document {
	c := s.Counts()
	doc := Document{
		RunID:      s.RunID,
		Mode:       string(s.Mode),
		DryRun:     s.DryRun,
		Aborted:    s.Aborted,
		OK:         s.OK(),
		StartedAt:  s.StartedAt.UTC(),
		FinishedAt: s.FinishedAt.UTC(),
		DurationMS: s.Duration().Milliseconds(),
		Counts: Counts{
			Copied:       c.Copied,
			Skipped:      c.Skipped,
			Failed:       c.Failed,
			NotAttempted: c.NotAttempted,
		},
		Files: make([]File, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		f := File{
			Name:        r.Target.Name,
			Source:      r.Target.Source,
			Destination: r.Target.Destination,
			Outcome:     r.Outcome.String(),
			Planned:     r.Planned,
			Reason:      string(r.Reason()),
		}
		if r.Err != nil {
			f.Error = r.Err.Error()
		}
		if r.SourceVersion != nil {
			f.SourceVersion = r.SourceVersion.String()
		}
		if r.DestinationVersion != nil {
			f.DestinationVersion = r.DestinationVersion.String()
		}
		doc.Files = append(doc.Files, f)
	}
	return doc
}

// Write renders s to w in the given format.
func Write(w io.Writer, s deploy.Summary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(s)); err != nil {
			return fmt.Errorf(messages.ReportEncodeFmt, format, err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(s)); err != nil {
			return fmt.Errorf(messages.ReportEncodeFmt, format, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf(messages.ReportEncodeFmt, format, err)
		}
		return nil
	case FormatText, "":
		writeText(w, s)
		return nil
	default:
		return fmt.Errorf(messages.ReportInvalidFormatFmt, format)
	}
}

func writeText(w io.Writer, s deploy.Summary) {
	for _, r := range s.Results {
		_, _ = fmt.Fprintf(w, messages.ReportLineFmt, label(r), r.Target.Name, detail(r))
	}
	c := s.Counts()
	_, _ = fmt.Fprintf(w, messages.ReportSummaryFmt, c.Copied, c.Skipped, c.Failed, c.NotAttempted, s.Duration().Round(time.Millisecond))
	if s.Aborted && s.Mode == deploy.ModeBaseline && c.Failed > 0 {
		_, _ = fmt.Fprintln(w, color.YellowString(messages.ReportAbortedNotice))
	}
}

func label(r deploy.Result) string {
	switch r.Outcome {
	case deploy.OutcomeCopied:
		if r.Planned {
			return color.CyanString(messages.ReportLabelPlanned)
		}
		return color.GreenString(messages.ReportLabelCopied)
	case deploy.OutcomeSkippedUpToDate:
		return messages.ReportLabelSkipped
	case deploy.OutcomeFailed:
		return color.RedString(messages.ReportLabelFailed)
	default:
		return color.YellowString(messages.ReportLabelNotAttempted)
	}
}

func detail(r deploy.Result) string {
	switch r.Outcome {
	case deploy.OutcomeFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
		return string(r.Reason())
	case deploy.OutcomeCopied:
		if r.DestinationVersion == nil {
			if r.SourceVersion != nil {
				return r.SourceVersion.String()
			}
			return ""
		}
		return fmt.Sprintf(messages.ReportVersionChangeFmt, r.DestinationVersion, r.SourceVersion)
	case deploy.OutcomeSkippedUpToDate:
		if r.DestinationVersion != nil {
			return r.DestinationVersion.String()
		}
	}
	return ""
}

package formatter

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
)

// BatchReport summarizes [tasks.PlaylistEngine.AnalyzeMany].
type BatchReport struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Playlists []BatchEntry `json:"playlists"`
}

type BatchEntry struct {
	Input  string  `json:"input"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// NewBatchReport builds a [BatchReport], preserving input order.
func NewBatchReport(res *tasks.BatchResult, top int) *BatchReport {
	b := &BatchReport{
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Playlists: make([]BatchEntry, 0, len(res.Items)),
	}
	for _, item := range res.Items {
		entry := BatchEntry{Input: item.Input}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		} else if item.Result != nil {
			entry.Report = NewReport(item.Result, top)
		}
		b.Playlists = append(b.Playlists, entry)
	}
	return b
}

// RenderBatch encodes b. CSV output shares a single header; text and Markdown list failures at the end.
func RenderBatch(b *BatchReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(b, true)
	case FormatCSV:
		var reports []*Report
		for _, e := range b.Playlists {
			if e.Report != nil {
				reports = append(reports, e.Report)
			}
		}
		return writeCSV(reports...)
	}

	var buf bytes.Buffer
	var failures []BatchEntry
	for _, e := range b.Playlists {
		if e.Report == nil {
			failures = append(failures, e)
			continue
		}
		if buf.Len() > 0 {
			fmt.Fprintf(&buf, "\n%s\n\n", separator)
		}
		if format == FormatMarkdown {
			buf.Write(ToMarkdown(e.Report))
		} else {
			buf.Write(ToText(e.Report))
		}
	}

	if len(failures) > 0 {
		if format == FormatMarkdown {
			buf.WriteString("\n## Failed\n\n")
		} else {
			fmt.Fprintf(&buf, "\n%s\n\nFailed:\n", separator)
		}
		for _, e := range failures {
			fmt.Fprintf(&buf, "- %s: %s\n", e.Input, e.Error)
		}
	}

	fmt.Fprintf(&buf, "\n%d succeeded, %d failed\n", b.Succeeded, b.Failed)
	return buf.Bytes(), nil
}

// WriteBatchReport renders b and writes it to path.
func WriteBatchReport(b *BatchReport, format Format, path string) error {
	data, err := RenderBatch(b, format)
	if err != nil {
		return fmt.Errorf("failed to render batch report: %w", err)
	}
	return writeFile(path, data)
}

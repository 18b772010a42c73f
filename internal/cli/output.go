// Package cli provides output formatting for the Tango command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Timeless-inc/Tango/internal/history"
	"github.com/Timeless-inc/Tango/internal/models"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a -output flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes a query response to w in the given format.
func WriteAnswer(w io.Writer, resp *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\n%s\n", resp.Response)
	if len(resp.Sources) > 0 {
		fmt.Fprintf(w, "\nDrawn from %d document(s):\n", len(resp.Sources))
		for i, src := range resp.Sources {
			fmt.Fprintf(w, "  %d. %s\n", i+1, utils.TruncateWords(src, 20))
		}
	}
	return nil
}

// WriteDocumentList writes the document listing to w in the given format.
func WriteDocumentList(w io.Writer, list *models.DocumentListResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, list)
	}
	fmt.Fprintf(w, "\n%d document(s) from %d source(s)\n\n", list.TotalDocuments, list.UniqueSources)
	for _, doc := range list.Documents {
		fmt.Fprintf(w, "[%d] %s\n", doc.ID, doc.Preview)
		if doc.Source != "" {
			fmt.Fprintf(w, "    source: %s\n", doc.Source)
		}
	}
	return nil
}

// WriteHistory writes recent exchanges to w in the given format.
func WriteHistory(w io.Writer, exchanges []history.Exchange, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, exchanges)
	}
	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No exchanges recorded.")
		return nil
	}
	for _, ex := range exchanges {
		fmt.Fprintf(w, "[%s] Q: %s\n", ex.CreatedAt.Format("2006-01-02 15:04"), ex.Question)
		fmt.Fprintf(w, "          A: %s\n\n", utils.Truncate(ex.Answer, 200))
	}
	return nil
}

// WriteStatus writes the server status to w in the given format.
func WriteStatus(w io.Writer, status map[string]any, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "collection:  %v\n", status["collection"])
	fmt.Fprintf(w, "documents:   %v\n", status["documents"])
	if n, ok := status["exchanges"]; ok {
		fmt.Fprintf(w, "exchanges:   %v\n", n)
	}
	if n, ok := status["disk_usage_bytes"]; ok {
		fmt.Fprintf(w, "disk usage:  %v bytes\n", n)
	}
	return nil
}

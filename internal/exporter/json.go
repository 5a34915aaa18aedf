package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"salespulse/pkg/contracts/domain"
)

// WriteJSON writes the full report as one indented document
func WriteJSON(out io.Writer, report domain.AnalyticsReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

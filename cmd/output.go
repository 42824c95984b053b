package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spigell/hh-matchmaker/internal/engine"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func writeReport(w io.Writer, report engine.Report, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", outputText:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range report.Categories() {
			fmt.Fprintf(tw, "%s\t%v\n", c, report[c])
		}
		return tw.Flush()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func dumpReportToTmpFile(report engine.Report) (string, error) {
	file, err := os.CreateTemp("", "match_report_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeReport(file, report, outputJSON); err != nil {
		return "", err
	}
	return file.Name(), nil
}

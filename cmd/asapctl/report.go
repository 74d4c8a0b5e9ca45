package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgallion1/asapgest/internal/asap"
	"github.com/dgallion1/asapgest/internal/ingest"
	"github.com/dgallion1/asapgest/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Render a report in the requested format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := report.ForFormat(reportFormat)
		if err != nil {
			return err
		}

		text, err := ingest.LoadFile(args[0])
		if err != nil {
			return err
		}

		doc, err := asap.Parse(text)
		if err != nil {
			if errors.Is(err, asap.ErrInvalidFormat) {
				return fmt.Errorf("%s: not an ASAP report (missing TH* verification header)", args[0])
			}
			return err
		}

		out, err := renderer.Render(doc, report.Options{UnsafePHIDisplay: unsafePHI})
		if err != nil {
			return err
		}

		if reportOutput == "" || reportOutput == "-" {
			if reportFormat == "xlsx" {
				return fmt.Errorf("xlsx output requires --output")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(reportOutput, out, 0644); err != nil {
			return fmt.Errorf("write %s: %w", reportOutput, err)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text",
		"output format: text, markdown, html, or xlsx")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"write output to file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

package main

import (
	"errors"
	"fmt"

	"github.com/dgallion1/asapgest/internal/asap"
	"github.com/dgallion1/asapgest/internal/ingest"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Parse a report and verify its required sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		sum := doc.Summarize()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "version:   %s\n", sum.Version)
		fmt.Fprintf(out, "sections:  %d\n", sum.SectionCount)
		fmt.Fprintf(out, "dispenses: %d\n", sum.DispenseCount)
		for _, h := range sum.UnknownHeaders {
			fmt.Fprintf(out, "unknown section: %s\n", h)
		}
		if len(sum.MissingRequired) > 0 {
			for _, h := range sum.MissingRequired {
				fmt.Fprintf(out, "missing required section: %s\n", h)
			}
			return fmt.Errorf("%d required section(s) missing", len(sum.MissingRequired))
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

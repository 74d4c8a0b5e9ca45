package main

import (
	"github.com/spf13/cobra"
)

var unsafePHI bool

var rootCmd = &cobra.Command{
	Use:   "asapctl",
	Short: "Inspect and render ASAP pharmacy transaction reports",
	Long: `asapctl parses ASAP flat-text pharmacy transaction reports,
checks them for missing required sections, and renders summaries
in text, markdown, HTML, or XLSX form.

Patient-identifying fields are redacted in all output unless
--unsafe-phi is given.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&unsafePHI, "unsafe-phi", false,
		"display patient-identifying fields unredacted")
}

// Command vnt syncs local TSV translation files with the VNT translation
// service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "vnt",
	Short: "Sync local TSV translation files with the VNT service",
	Long: `vnt keeps a directory of human-editable TSV script files in sync with
the VNT translation service.

Each TSV file holds one line per record with three tab-separated fields:
character, original text, and translation ("#" when untranslated). The
service is the system of record and keeps per-line translation history;
vnt uses that history to decide which side is stale when the two differ.

Login credentials are read from ~/.netrc for the endpoint host.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

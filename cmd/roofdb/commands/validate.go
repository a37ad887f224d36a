package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the structure of the roofer data file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := storage.ReadFile(cfg.DataFile, 0)
		if err != nil {
			return err
		}

		doc := string(b)
		if err := literal.Validate(doc, cfg.Marker); err != nil {
			return err
		}

		entries, err := literal.Entries(doc, cfg.Marker)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d records, checksum %016x\n", cfg.DataFile, len(entries), storage.Checksum(b))
		return nil
	},
}

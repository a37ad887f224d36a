package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var field string

var getCmd = &cobra.Command{
	Use:   "get [slug]",
	Short: "Print one roofer as JSON, hidden or not",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _, closer, err := openDirectory(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		r, err := dir.Roofer(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}

		if field == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}

		res := gjson.GetBytes(b, field)
		if !res.Exists() {
			return errors.Errorf("roofer %q has no field %q", args[0], field)
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.String())
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&field, "field", "", "print only this field, as a gjson path (e.g. serviceAreas.cities)")
}

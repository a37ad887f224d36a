package commands

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/Bitfisherllc/roofdb/internal/data"
)

var ifVersion string

var applyCmd = &cobra.Command{
	Use:   "apply [batch.json]",
	Short: "Apply a batch of roofer updates",
	Long: `Applies a JSON batch of roofer updates, either a bare array or an object
with a "roofers" array, the same body the admin API accepts.`,
	Args: cobra.ExactArgs(1),
	RunE: apply,
}

func init() {
	applyCmd.Flags().StringVar(&ifVersion, "if-version", "", "only apply when the data is at this version")
}

func apply(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "could not read %s", args[0])
	}

	updates, err := parseBatch(raw)
	if err != nil {
		return err
	}

	dir, _, closer, err := openDirectory(cmd.Context())
	if err != nil {
		return err
	}
	defer closer()

	report, err := dir.ApplyUpdates(cmd.Context(), updates, ifVersion)
	if err != nil {
		return errors.Wrap(err, "failed to update roofers")
	}

	version, err := dir.Version(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		Applied int         `json:"applied"`
		Skipped interface{} `json:"skipped"`
		Version string      `json:"version"`
	}{report.Applied, report.Skipped, version})
}

func parseBatch(raw []byte) ([]data.Update, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("batch is not valid JSON")
	}

	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		list = list.Get("roofers")
	}

	if !list.IsArray() {
		return nil, errors.New("expected an array of roofer updates")
	}

	var updates []data.Update
	if err := json.Unmarshal([]byte(list.Raw), &updates); err != nil {
		return nil, errors.Wrap(err, "could not decode roofer updates")
	}

	return updates, nil
}

package commands

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/options"
)

var (
	showHidden bool
	region     string
	county     string
	city       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List roofers in directory order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _, closer, err := openDirectory(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		opts := options.Find().SetOrder(options.Directory).InArea(region, county, city)
		if showHidden {
			opts.IncludeHidden()
		}

		rs, err := dir.Roofers(cmd.Context(), opts)
		if err != nil {
			return err
		}

		renderRoofers(cmd.OutOrStdout(), rs)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden roofers")
	listCmd.Flags().StringVar(&region, "region", "", "only roofers serving this region")
	listCmd.Flags().StringVar(&county, "county", "", "only roofers serving this county")
	listCmd.Flags().StringVar(&city, "city", "", "only roofers serving this city")
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderRoofers(w io.Writer, rs []data.Roofer) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Slug", "Name", "Listing", "Hidden", "Phone"})

	for _, r := range rs {
		t.AppendRow(table.Row{r.Slug, r.Name, data.ListingTypeOf(r), strconv.FormatBool(r.IsHidden), r.Phone})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", len(rs)})
	t.Render()
}

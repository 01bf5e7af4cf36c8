package cli

import (
	"github.com/spf13/cobra"

	"github.com/pkordes/dive-logbook/internal/divelist"
)

func addList(topLevel *cobra.Command, opts *rootOptions) {
	var (
		flat   bool
		expand bool
		sortBy string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the dive list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			if sortBy != "" {
				col, err := divelist.ParseColumn(sortBy)
				if err != nil {
					return err
				}
				o, err := divelist.ParseSortOrder(order)
				if err != nil {
					return err
				}
				if _, err := svc.SortBy(col, o); err != nil {
					return err
				}
			}
			if expand {
				svc.ExpandAll()
			}

			// Sorting by anything but the date switches to the flat list.
			var kind *divelist.ProjectionKind
			if flat {
				k := divelist.Flat
				kind = &k
			}
			printList(cmd.OutOrStdout(), svc.Snapshot(kind))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "show dives without trips")
	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "expand every trip")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by column, e.g. depth or location")
	cmd.Flags().StringVar(&order, "order", "desc", "sort order: asc or desc")
	topLevel.AddCommand(cmd)
}

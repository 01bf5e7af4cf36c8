package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/dive-logbook/internal/domain"
)

func addTrips(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "Show the trips of the current grouping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			printTrips(cmd.OutOrStdout(), svc.Trips())
			return nil
		},
	}
	cmd.AddCommand(newTripsAddCmd(opts))
	topLevel.AddCommand(cmd)
}

func newTripsAddCmd(opts *rootOptions) *cobra.Command {
	var location string
	addCmd := &cobra.Command{
		Use:   "add <start>",
		Short: "Record a trip that in_trip dives can join",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseWhen(args[0])
			if err != nil {
				return err
			}

			svc, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			hint, err := svc.CreateTripHint(cmd.Context(), domain.TripHint{StartedAt: start, Location: location})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hint.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&location, "location", "", "trip location")
	return addCmd
}

// whenLayouts are the accepted date formats, tried in order.
var whenLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// parseWhen reads a timestamp in one of whenLayouts. Times without a zone are UTC.
func parseWhen(s string) (time.Time, error) {
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot read time %q, want YYYY-MM-DD [HH:MM] or RFC 3339", domain.ErrValidation, s)
}

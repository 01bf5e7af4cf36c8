package cli

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/units"
)

func addShow(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show one dive with its computed statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: dive index must be a number", domain.ErrValidation)
			}

			svc, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			d, err := svc.Get(index)
			if err != nil {
				return err
			}
			u, _ := units.Parse(opts.units)
			printDive(cmd.OutOrStdout(), d, u)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// addOptions are the flags of the add command.
type addOptions struct {
	number   int
	duration time.Duration
	depth    float64
	location string
	suit     string
	rating   int
	cylinder string
	o2       int
	trip     string
}

func addAdd(topLevel *cobra.Command, opts *rootOptions) {
	ao := &addOptions{}
	cmd := &cobra.Command{
		Use:   "add <when>",
		Short: "Log a new dive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dive, err := ao.dive(args[0])
			if err != nil {
				return err
			}

			svc, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			created, err := svc.Create(cmd.Context(), dive)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dive #%d logged at index %d\n", created.Number, created.Index)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&ao.number, "number", "n", 0, "dive number")
	f.DurationVarP(&ao.duration, "duration", "t", 0, "bottom time, e.g. 45m")
	f.Float64VarP(&ao.depth, "depth", "d", 0, "maximum depth in metres")
	f.StringVar(&ao.location, "location", "", "dive site")
	f.StringVar(&ao.suit, "suit", "", "exposure suit")
	f.IntVar(&ao.rating, "rating", 0, "rating from 0 to 5 stars")
	f.StringVar(&ao.cylinder, "cylinder", "", "cylinder description, e.g. AL80")
	f.IntVar(&ao.o2, "o2", 0, "oxygen percentage of the cylinder; 0 is air")
	f.StringVar(&ao.trip, "trip", "unassigned", "trip placement: unassigned, no_trip or in_trip")
	topLevel.AddCommand(cmd)
}

func (ao *addOptions) dive(when string) (domain.Dive, error) {
	t, err := parseWhen(when)
	if err != nil {
		return domain.Dive{}, err
	}
	flag, err := domain.ParseTripFlag(ao.trip)
	if err != nil {
		return domain.Dive{}, err
	}
	if ao.o2 < 0 || ao.o2 > 100 {
		return domain.Dive{}, fmt.Errorf("%w: --o2 must be between 0 and 100", domain.ErrValidation)
	}

	d := domain.Dive{
		Number:      ao.number,
		When:        t,
		DurationSec: int(ao.duration / time.Second),
		MaxDepthMM:  int(math.Round(ao.depth * 1000)),
		Location:    ao.location,
		Suit:        ao.suit,
		Rating:      ao.rating,
		TripFlag:    flag,
	}
	if ao.cylinder != "" || ao.o2 != 0 {
		d.Cylinders = []domain.Cylinder{{
			Description: ao.cylinder,
			Mix:         domain.GasMix{O2: ao.o2 * 10},
		}}
	}
	return d, nil
}

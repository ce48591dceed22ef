package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pinledger/internal/cli"
	"pinledger/internal/geo"
	"pinledger/internal/places"
	"pinledger/internal/proximity"
)

var (
	flagRadius     float64
	flagPlacesFile string
)

var distanceCmd = &cobra.Command{
	Use:   "distance LAT1 LON1 LAT2 LON2",
	Short: "Great-circle distance between two points in meters",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseCoordinates(args[0], args[1])
		if err != nil {
			return err
		}
		b, err := parseCoordinates(args[2], args[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.1f m\n", geo.Distance(a, b))
		return nil
	},
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby LAT LON",
	Short: "List points of interest by distance and mark those within the radius",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseCoordinates(args[0], args[1])
		if err != nil {
			return err
		}
		file := flagPlacesFile
		if file == "" {
			cli.LoadEnvFile()
			file = os.Getenv("PLACES_FILE")
		}
		pois, err := places.Load(file)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, m := range geo.Nearest(from, pois) {
			mark := ""
			if m.Distance < flagRadius {
				mark = "nearby"
			}
			fmt.Fprintf(tw, "%d\t%s\t%.1f m\t%s\n", m.Place.ID, m.Place.Name, m.Distance, mark)
		}
		return tw.Flush()
	},
}

func init() {
	nearbyCmd.Flags().Float64Var(&flagRadius, "radius", proximity.DefaultRadius, "Radius in meters")
	nearbyCmd.Flags().StringVar(&flagPlacesFile, "places", "", "YAML file with points of interest (default PLACES_FILE or built-ins)")
	rootCmd.AddCommand(distanceCmd, nearbyCmd)
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"dynastyglobe/core"
)

func newProjectCommand() *cobra.Command {
	var radius float64

	cmd := &cobra.Command{
		Use:   "project <lat> <lng>",
		Short: "Print the globe-space position of a geographic point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("latitude: %w", err)
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("longitude: %w", err)
			}
			if radius <= 0 {
				radius = settingsFrom(cmd).Globe.GroundRadius
			}
			return printProjection(cmd.OutOrStdout(), core.GeoPoint{Lat: lat, Lng: lng}, radius)
		},
	}
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "sphere radius (default: globe.ground_radius)")
	return cmd
}

func printProjection(w io.Writer, g core.GeoPoint, radius float64) error {
	if !core.ValidateGeoPoint(g) {
		return fmt.Errorf("(%g, %g) is outside lat [-90, 90] / lng [-180, 180]", g.Lat, g.Lng)
	}

	p := g.Project(radius)
	back, r := core.SurfaceToLatLng(p)

	_, err := fmt.Fprintf(w, "lat=%.4f lng=%.4f r=%.2f\n  x=%.4f y=%.4f z=%.4f\n  back: lat=%.4f lng=%.4f r=%.2f\n",
		g.Lat, g.Lng, radius, p.X, p.Y, p.Z, back.Lat, back.Lng, r)
	return err
}

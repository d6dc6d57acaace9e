package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YogindraChaudhari/plantationDrive/internal/geo"
)

var cmdCoords = &cobra.Command{
	Use:   "coords [command]",
	Short: "Convert coordinates between DMS and decimal degrees",
}

var coordsField string

func init() {
	cmdCoords.PersistentFlags().StringVar(&coordsField, "field", string(geo.Latitude), "Axis of the value: latitude or longitude.")
}

func parseField(raw string) (geo.Field, error) {
	switch geo.Field(raw) {
	case geo.Latitude, geo.Longitude:
		return geo.Field(raw), nil
	}
	return "", fmt.Errorf("--field must be latitude or longitude, got %q", raw)
}

var cmdCoordsNormalize = &cobra.Command{
	Use:   "normalize VALUE...",
	Short: "Print each value in signed decimal degrees",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := parseField(coordsField)
		if err != nil {
			return err
		}
		return normalizeCoords(cmd.OutOrStdout(), field, args)
	},
}

func normalizeCoords(w io.Writer, field geo.Field, values []string) error {
	for _, raw := range values {
		v, err := geo.NormalizeField(field, raw)
		if err != nil {
			return err
		}
		if err := geo.CheckRange(field, v); err != nil {
			return err
		}
		fmt.Fprintln(w, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return nil
}

var cmdCoordsToDMS = &cobra.Command{
	Use:   "to-dms DECIMAL...",
	Short: "Print each decimal degree value in DMS notation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := parseField(coordsField)
		if err != nil {
			return err
		}
		return coordsToDMS(cmd.OutOrStdout(), field, args)
	},
}

func coordsToDMS(w io.Writer, field geo.Field, values []string) error {
	for _, raw := range values {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%q is not a decimal degree value", raw)
		}
		if err := geo.CheckRange(field, v); err != nil {
			return err
		}
		fmt.Fprintln(w, geo.ToDMS(v, field))
	}
	return nil
}

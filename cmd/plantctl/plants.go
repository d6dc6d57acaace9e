package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YogindraChaudhari/plantationDrive/internal/bootstrap"
	"github.com/YogindraChaudhari/plantationDrive/internal/config"
)

var cmdPlants = &cobra.Command{
	Use:   "plants [command]",
	Short: "Read the inventory configured by the environment",
}

var (
	plantsExportZone string
	plantsExportOut  string
)

func init() {
	cmdPlantsExport.Flags().StringVar(&plantsExportZone, "zone", "", "Export only this zone.")
	cmdPlantsExport.Flags().StringVarP(&plantsExportOut, "out", "o", "plants.xlsx", "Output workbook path.")
}

func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("while loading configuration: %w", err)
	}
	return bootstrap.New(ctx, cfg, newLogger())
}

var cmdPlantsExport = &cobra.Command{
	Use:   "export",
	Short: "Write an XLSX workbook with one sheet per zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		f, err := os.Create(plantsExportOut)
		if err != nil {
			return fmt.Errorf("while creating %s: %w", plantsExportOut, err)
		}
		if err := app.Plants.Export(ctx, plantsExportZone, f); err != nil {
			f.Close()
			return fmt.Errorf("while exporting plants: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("while closing %s: %w", plantsExportOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", plantsExportOut)
		return nil
	},
}

var cmdPlantsZones = &cobra.Command{
	Use:   "zones",
	Short: "List zones with their plant counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		zones, err := app.Plants.Zones(ctx)
		if err != nil {
			return fmt.Errorf("while listing zones: %w", err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ZONE\tPLANTS")
		for _, z := range zones {
			fmt.Fprintf(tw, "%s\t%d\n", z.Zone, z.Count)
		}
		return tw.Flush()
	},
}

// plantctl is an operator tool for the plant inventory: coordinate conversion, workbook
// exports and a live view of plant events.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cmdRoot = &cobra.Command{
	Use:           "plantctl",
	Short:         "Operate the Plantation Drive inventory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	cmdRoot.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log backend activity to stderr.")
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	cmdRoot.AddCommand(cmdCoords, cmdPlants, cmdEvents)
	cmdCoords.AddCommand(cmdCoordsNormalize, cmdCoordsToDMS)
	cmdPlants.AddCommand(cmdPlantsExport, cmdPlantsZones)
	cmdEvents.AddCommand(cmdEventsWatch)

	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plantctl:", err)
		os.Exit(1)
	}
}

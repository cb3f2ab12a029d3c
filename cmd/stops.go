package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops [stop point name]",
	Short: "Lists the stop points the provider covers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  stops,
}

var asCSV bool

func init() {
	stopsCmd.Flags().BoolVarP(&asCSV, "csv", "", false, "CSV output with stop ids and coordinates")
	rootCmd.AddCommand(stopsCmd)
}

func stops(cmd *cobra.Command, args []string) error {
	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	stops, err := client.Stops(cmd.Context(), name)
	if err != nil {
		return err
	}

	sort.Slice(stops, func(i, j int) bool {
		return stops[i].Name < stops[j].Name
	})

	if asCSV {
		return gocsv.Marshal(&stops, os.Stdout)
	}

	for _, stop := range stops {
		fmt.Printf("%s: %s\n", stop.ID, stop.Name)
	}

	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	travelura "github.com/clonejo/travel-ura"
	"github.com/clonejo/travel-ura/render"
)

var (
	compact   bool
	unordered bool
)

func init() {
	rootCmd.Flags().BoolVarP(&compact, "compact", "c", false, "single-space output, no column padding")
	rootCmd.Flags().BoolVarP(&unordered, "unordered", "u", false, "don't require the stops to be visited in the order given")
}

func departures(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}

	q := travelura.NewQuerier(client)
	q.MaxConcurrent = cfg.MaxConcurrent
	q.Logger = client.Logger

	combined, err := q.Departures(cmd.Context(), args, !unordered)
	if err != nil {
		return err
	}

	return render.Text(os.Stdout, *combined, compact)
}

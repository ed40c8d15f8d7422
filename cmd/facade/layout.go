package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snjsomnath/threejsEditor-sub001/internal/app"
	"github.com/snjsomnath/threejsEditor-sub001/internal/report"
)

func newLayoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the per-edge window layout of every building",
		Long:  `layout runs the placement pipeline without a window and prints each building's per-edge solution followed by the instance pool statistics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, scene, err := opts.load()
			if err != nil {
				return err
			}

			a, err := app.NewApp(nil, app.NewView(0, 0), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			placed := a.LoadScene(scene)
			logger.Debug("scene loaded", "buildings", a.Buildings.Len(), "windows", placed)

			out := cmd.OutOrStdout()
			planner := a.Windows.Planner()
			for _, e := range a.Buildings.Entries() {
				report.Building(out, e.Building, planner.Plan(e.Building))
				fmt.Fprintln(out)
			}
			report.Stats(out, a.Windows.Stats())

			return a.Windows.ValidateIntegrity()
		},
	}
}

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/app"
	"github.com/geostore-service/internal/usecase/dto"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			return a.DB.Migrate(ctx)
		})
	},
}

var fillTilesCacheCmd = &cobra.Command{
	Use:   "fill-tiles-cache",
	Short: "Force-compute and cache every tile of a layer (or of all layers)",
	Long: `Iterates every tile covering the layer extent between minzoom and maxzoom
and overwrites the cache entry. Missing zoom bounds come from the layer settings
and are guessed (and saved) when the layer has none. Safe to re-run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, _ := cmd.Flags().GetString("layer")
		minZoom := optionalInt(cmd, "minzoom")
		maxZoom := optionalInt(cmd, "maxzoom")

		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			n, err := a.Tiles.FillTilesCache(ctx, layer, minZoom, maxZoom)
			a.Logger.Info("Tiles cache filled", zap.Int("tiles", n))
			return err
		})
	},
}

var createTopologyCmd = &cobra.Command{
	Use:   "create-topology <layer>",
	Short: "Build the pgRouting topology of a linestring layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clean, _ := cmd.Flags().GetBool("clean")
		var tolerance *float64
		if cmd.Flags().Changed("tolerance") {
			v, _ := cmd.Flags().GetFloat64("tolerance")
			tolerance = &v
		}

		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			res, err := a.Routing.CreateTopology(ctx, args[0], tolerance, clean)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "layer %d: %s (tolerance %g)\n", res.LayerID, res.Status, res.Tolerance)
			return nil
		})
	},
}

var requestWarmCmd = &cobra.Command{
	Use:   "request-warm",
	Short: "Queue a tile warm job for the worker",
	Long: `Publishes a warm job to the Redis stream consumed by cmd/worker and returns
immediately. Use fill-tiles-cache to warm synchronously instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, _ := cmd.Flags().GetString("layer")
		req := dto.WarmTilesRequest{
			MinZoom: optionalInt(cmd, "minzoom"),
			MaxZoom: optionalInt(cmd, "maxzoom"),
		}

		return withApp(cmd, app.Options{Stream: true}, func(ctx context.Context, a *app.App) error {
			resp, err := a.Tiles.RequestWarm(ctx, layer, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s queued\n", resp.JobID)
			return nil
		})
	},
}

var guessZoomCmd = &cobra.Command{
	Use:   "guess-zoom <layer>",
	Short: "Print the guessed min and max zoom of a layer",
	Long: `Without --save only prints the guesses. With --save, zoom levels that are not
set explicitly in the layer settings are guessed and stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")

		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			layer, err := a.Tiles.Layer(ctx, args[0])
			if err != nil {
				return err
			}

			minZoom, maxZoom := a.Zoom.GuessMinZoom, a.Zoom.GuessMaxZoom
			if save {
				minZoom, maxZoom = a.Zoom.MinZoom, a.Zoom.MaxZoom
			}
			lo, err := minZoom(ctx, layer)
			if err != nil {
				return err
			}
			hi, err := maxZoom(ctx, layer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: minzoom=%d maxzoom=%d\n", layer.Name, lo, hi)
			return nil
		})
	},
}

var processLayerCmd = &cobra.Command{
	Use:   "process-layer",
	Short: "Apply a geometry operation to a layer and write the result to another layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dto.ProcessRequest{Params: map[string]float64{}}
		req.Input, _ = cmd.Flags().GetString("input")
		req.Output, _ = cmd.Flags().GetString("output")
		req.Operation, _ = cmd.Flags().GetString("operation")

		raw, _ := cmd.Flags().GetStringToString("param")
		for k, v := range raw {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("param %s: %w", k, err)
			}
			req.Params[k] = f
		}

		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			resp, err := a.Processing.Process(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s): %d features\n",
				resp.InputLayer, resp.OutputLayer, resp.Operation, resp.Features)
			return nil
		})
	},
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func init() {
	fillTilesCacheCmd.Flags().String("layer", "", "layer id or name (all layers when empty)")
	fillTilesCacheCmd.Flags().Int("minzoom", 0, "first zoom level (default: layer minzoom)")
	fillTilesCacheCmd.Flags().Int("maxzoom", 0, "last zoom level (default: layer maxzoom)")

	requestWarmCmd.Flags().String("layer", "", "layer id or name (all layers when empty)")
	requestWarmCmd.Flags().Int("minzoom", 0, "first zoom level (default: layer minzoom)")
	requestWarmCmd.Flags().Int("maxzoom", 0, "last zoom level (default: layer maxzoom)")

	createTopologyCmd.Flags().Float64("tolerance", 0, "snapping tolerance in layer units (default: ROUTING_TOPOLOGY_TOLERANCE)")
	createTopologyCmd.Flags().Bool("clean", false, "drop the existing topology first")

	guessZoomCmd.Flags().Bool("save", false, "store guessed zoom levels missing from the layer settings")

	processLayerCmd.Flags().String("input", "", "input layer id or name")
	processLayerCmd.Flags().String("output", "", "output layer name (created when missing)")
	processLayerCmd.Flags().String("operation", "", "simplify | buffer | make_valid | centroid")
	processLayerCmd.Flags().StringToString("param", nil, "operation parameters, e.g. --param tolerance=0.0001")
	_ = processLayerCmd.MarkFlagRequired("input")
	_ = processLayerCmd.MarkFlagRequired("output")
	_ = processLayerCmd.MarkFlagRequired("operation")

	rootCmd.AddCommand(migrateCmd, fillTilesCacheCmd, requestWarmCmd, createTopologyCmd, guessZoomCmd, processLayerCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pindrop/pindrop/internal/export"
	"github.com/pindrop/pindrop/internal/model"
)

var (
	locationsDB     string
	locationsFormat string
	locationsOut    string
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Process a database once and print the resulting locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}

		db := locationsDB
		if db == "" {
			db = cfg.Notion.Database
		}

		batch, err := p.Run(ctx, db)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if locationsOut != "" {
			f, err := os.Create(locationsOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if err := writeBatch(out, batch, locationsFormat); err != nil {
			return err
		}

		for _, msg := range batch.Messages() {
			zap.L().Warn("row skipped", zap.String("reason", msg))
		}
		return nil
	},
}

func init() {
	locationsCmd.Flags().StringVar(&locationsDB, "db", "", "Notion database ID (default from config)")
	locationsCmd.Flags().StringVar(&locationsFormat, "format", "json", "output format: json, geojson, or csv")
	locationsCmd.Flags().StringVarP(&locationsOut, "out", "o", "", "write output to file instead of stdout")
	rootCmd.AddCommand(locationsCmd)
}

// writeBatch encodes the batch in the requested format.
func writeBatch(w io.Writer, batch *model.Batch, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(locationsResponse{
			Locations: batch.Locations,
			Count:     len(batch.Locations),
			Errors:    batch.Messages(),
		}); err != nil {
			return eris.Wrap(err, "encode json")
		}
	case "geojson":
		data, err := export.GeoJSON(batch)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return eris.Wrap(err, "write geojson")
		}
	case "csv":
		if err := export.CSV(w, batch); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want json, geojson, or csv)", format)
	}
	return nil
}

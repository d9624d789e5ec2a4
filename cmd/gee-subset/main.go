package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/1F47E/gee-subset/pkg/backend"
	"github.com/1F47E/gee-subset/pkg/config"
	"github.com/1F47E/gee-subset/pkg/locations"
	"github.com/1F47E/gee-subset/pkg/models"
	"github.com/1F47E/gee-subset/pkg/output"
	"github.com/1F47E/gee-subset/pkg/runner"
	"github.com/1F47E/gee-subset/pkg/subset"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	defaultStart = "2013-01-01"
	defaultEnd   = "2014-12-31"
	defaultScale = 30
)

// usageError marks problems with the command line itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type options struct {
	product    string
	bands      []string
	start      string
	end        string
	pad        float64
	scale      float64
	location   []float64
	file       string
	directory  string
	verbose    bool
	within     string
	postgisDSN string
	configFile string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "gee-subset",
		Short: "Extract remote sensing time series for point locations",
		Long: `Extracts the time series of a remote sensing product for one location or
for every location of a comma delimited file (site,lat,lon), either printed
to the console or written as one CSV file per site.

Examples:
  gee-subset -p COPERNICUS/S1_GRD -b VV VH -l 44.0646 -71.2881
  gee-subset -p MODIS/006/MOD13Q1 -b NDVI -f sites.csv -d out -sc 250 -pd 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.product, "product", "p", "", "remote sensing product id (required)")
	flags.StringSliceVarP(&opts.bands, "bands", "b", nil, "band name(s) for the requested product (required)")
	flags.StringVarP(&opts.start, "start", "s", defaultStart, "start date of the time series (yyyy-mm-dd)")
	flags.StringVarP(&opts.end, "end", "e", defaultEnd, "end date of the time series (yyyy-mm-dd)")
	flags.Float64Var(&opts.pad, "pad", 0, "grow the sampling location in km east, west, north and south (-pd)")
	flags.Float64Var(&opts.scale, "scale", defaultScale, "scale in metres, match the native resolution of the product (-sc)")
	flags.Float64SliceVarP(&opts.location, "location", "l", nil, "location as latitude longitude")
	flags.StringVarP(&opts.file, "file", "f", "", "csv file with site,lat,lon locations")
	flags.StringVarP(&opts.directory, "directory", "d", "", "output directory, prints to the console when empty")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging, stop at the first failing location")
	flags.StringVar(&opts.within, "within", "", "only process locations inside minLon,minLat,maxLon,maxLat")
	flags.StringVar(&opts.postgisDSN, "postgis-dsn", "", "also store results in this PostGIS database")
	flags.StringVar(&opts.configFile, "config", "", "config file (default gee-subset.yaml)")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ue *usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(stderr, opts.verbose).With("run_id", uuid.NewString())

	query, err := buildQuery(opts)
	if err != nil {
		return &usageError{err: err}
	}

	var within *models.BoundingBox
	if opts.within != "" {
		within, err = locations.ParseBoundingBox(opts.within)
		if err != nil {
			return &usageError{err: err}
		}
	}

	locs, err := locations.Resolve(locations.Options{
		File:     opts.file,
		Location: opts.location,
		Within:   within,
	})
	switch {
	case errors.Is(err, locations.ErrConflictingLocations), errors.Is(err, locations.ErrNoLocations):
		return &usageError{err: err}
	case err != nil:
		return err
	}
	if opts.file != "" {
		logger.Info("read input locations", "file", opts.file, "count", len(locs))
	}

	sinks, closeSinks, err := buildSinks(ctx, stdout, opts, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.Timeout, logger)
	extractor := subset.NewExtractor(client, cfg.Backend.FilterProperty, logger)

	_, err = runner.New(extractor, query, sinks, opts.verbose, stderr, logger).Run(ctx, locs)
	return err
}

func buildQuery(opts options) (subset.Query, error) {
	start, err := time.Parse(subset.DateFormat, opts.start)
	if err != nil {
		return subset.Query{}, fmt.Errorf("invalid start date %q, use yyyy-mm-dd", opts.start)
	}
	end, err := time.Parse(subset.DateFormat, opts.end)
	if err != nil {
		return subset.Query{}, fmt.Errorf("invalid end date %q, use yyyy-mm-dd", opts.end)
	}

	bands := make([]string, 0, len(opts.bands))
	for _, b := range opts.bands {
		if b = strings.TrimSpace(b); b != "" {
			bands = append(bands, b)
		}
	}

	q := subset.Query{
		Product: strings.TrimSpace(opts.product),
		Bands:   bands,
		Start:   start,
		End:     end,
		Scale:   opts.scale,
		PadKm:   opts.pad,
	}
	return q, q.Validate()
}

func buildSinks(ctx context.Context, stdout io.Writer, opts options, cfg *config.Config) ([]output.Sink, func(), error) {
	var sinks []output.Sink
	closeFn := func() {}

	if opts.directory != "" {
		sinks = append(sinks, output.NewDirectorySink(opts.directory))
	} else {
		sinks = append(sinks, output.NewConsoleSink(stdout, isTerminal(stdout)))
	}

	dsn := cfg.PostGIS.DSN
	if opts.postgisDSN != "" {
		dsn = opts.postgisDSN
	}
	if dsn != "" {
		pg, err := output.NewPostGISSink(ctx, dsn, cfg.PostGIS.Table)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		closeFn = func() { _ = pg.Close() }
	}

	return sinks, closeFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

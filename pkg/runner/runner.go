// Package runner drives the extraction over every resolved location.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/1F47E/gee-subset/pkg/models"
	"github.com/1F47E/gee-subset/pkg/output"
	"github.com/1F47E/gee-subset/pkg/subset"
)

const (
	QueryFailedMessage = "Error: check input parameters"
	WriteFailedMessage = "Error: could not write output"
)

// Extractor fetches the table of one location.
type Extractor interface {
	Extract(ctx context.Context, q subset.Query, loc models.Location) (*subset.Table, error)
}

// Summary counts what a run did.
type Summary struct {
	Processed int
	Failed    int
	Written   []string
}

type Runner struct {
	extractor Extractor
	query     subset.Query
	sinks     []output.Sink
	verbose   bool
	diag      io.Writer
	logger    *slog.Logger
}

// New creates a runner. Diagnostics for failed locations go to diag. In
// verbose mode the first failure stops the run.
func New(extractor Extractor, query subset.Query, sinks []output.Sink, verbose bool, diag io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		extractor: extractor,
		query:     query,
		sinks:     sinks,
		verbose:   verbose,
		diag:      diag,
		logger:    logger.With("component", "runner"),
	}
}

// Run processes locs one after another. A failing location is reported and
// skipped unless the runner is verbose, in which case its error is returned.
func (r *Runner) Run(ctx context.Context, locs []models.Location) (Summary, error) {
	var summary Summary

	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		r.logger.Info(fmt.Sprintf("processing: %s at %v / %v", loc.SiteID, loc.Lon, loc.Lat))
		summary.Processed++

		table, err := r.extractor.Extract(ctx, r.query, loc)
		if err != nil {
			summary.Failed++
			if abort := r.fail(QueryFailedMessage, loc, err); abort != nil {
				return summary, abort
			}
			continue
		}

		written, err := r.write(ctx, output.Result{Location: loc, Query: r.query, Table: table})
		summary.Written = append(summary.Written, written...)
		if err != nil {
			summary.Failed++
			if abort := r.fail(WriteFailedMessage, loc, err); abort != nil {
				return summary, abort
			}
		}
	}

	r.logger.Info("run finished",
		"processed", summary.Processed,
		"failed", summary.Failed,
		"written", len(summary.Written),
	)
	return summary, nil
}

func (r *Runner) write(ctx context.Context, result output.Result) ([]string, error) {
	var written []string
	for _, sink := range r.sinks {
		dest, err := sink.Write(ctx, result)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", result.Location.SiteID, err)
		}
		r.logger.Debug("result written", "site", result.Location.SiteID, "destination", dest, "rows", result.Table.Len())
		written = append(written, dest)
	}
	return written, nil
}

// fail reports a location failure and returns the error to abort with, or
// nil to continue.
func (r *Runner) fail(message string, loc models.Location, err error) error {
	fmt.Fprintln(r.diag, message)
	r.logger.Error("location failed",
		"site", loc.SiteID,
		"latitude", loc.Lat,
		"longitude", loc.Lon,
		"product", r.query.Product,
		"error", err,
	)
	if r.verbose {
		return err
	}
	return nil
}

// Package output routes extracted tables to files, the console or a
// database.
package output

import (
	"context"

	"github.com/1F47E/gee-subset/pkg/models"
	"github.com/1F47E/gee-subset/pkg/subset"
)

// Result is the table extracted for one location.
type Result struct {
	Location models.Location
	Query    subset.Query
	Table    *subset.Table
}

// Sink persists results. Write returns a short description of where the
// result went.
type Sink interface {
	Write(ctx context.Context, r Result) (string, error)
}

// Package catalog streams raw fund records from a bulk source: a large JSON
// array file read in bounded-memory chunks, or the distributor's Postgres
// catalog table.
package catalog

import (
	"context"

	"github.com/niveshhub/fundsearch/internal/fund"
)

// EmitFunc receives one raw record at a time. Returning an error aborts the
// stream.
type EmitFunc func(rec fund.RawRecord) error

// Stats summarises one streaming pass over a source.
type Stats struct {
	Emitted   int
	Malformed int
}

// Source produces a sequence of raw catalog records. A Source failing to
// open its backing store is a hard initialization failure for the caller;
// individual malformed records are dropped and counted, never surfaced as
// errors.
type Source interface {
	Stream(ctx context.Context, emit EmitFunc) (Stats, error)
}

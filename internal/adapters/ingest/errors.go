package ingest

import "errors"

// Sentinel kinds for ingest errors. A missing required column is structural
// and fails the whole batch; everything else is recovered per row.
var (
	ErrOpenDataset   = errors.New("dataset open failed")
	ErrReadCSV       = errors.New("csv read failed")
	ErrEmptyDataset  = errors.New("dataset has no header row")
	ErrMissingColumn = errors.New("dataset missing required column")
)

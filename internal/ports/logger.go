package ports

import "github.com/bft-labs/beaconsync/pkg/log"

// Logger is the structured logging abstraction used by the application
// layer. It aliases pkg/log so adapters written against either package
// satisfy both.
type Logger = log.Logger

// Field is a key-value pair for structured logging.
type Field = log.Field

// Field constructors, re-exported so application code does not need a
// second import for logging.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)

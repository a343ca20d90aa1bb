// Package passpersist implements the agent side of the net-snmp
// pass_persist protocol: a long-lived subprocess that serves a subtree
// of management data to a master daemon over a line-based
// request/response channel, computing values on demand.
//
// The embedding application supplies the data through a Provider that
// populates a fresh mib.Tree per request, through direct lookup hooks
// that answer targeted queries without a full re-enumeration, or both.
// The agent is read-only: SET requests are always answered not-writable
// and no record is ever mutated.
package passpersist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/golangsnmp/passpersist/mib"
)

// ErrNoSource is returned when a GET, GETNEXT, or DUMP arrives with
// neither a matching lookup hook nor a Provider configured.
var ErrNoSource = errors.New("no data source configured")

// DefaultIdleTimeout is how long the agent waits for a line from the
// master before exiting. Masters respawn pass_persist agents on demand,
// so an idle exit is a normal disconnect, not a failure.
const DefaultIdleTimeout = 60 * time.Second

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-record iteration logging (DUMP output).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// Provider populates an empty tree with current records. It is invoked
// once per GET, GETNEXT, or DUMP so every answer reflects a fresh
// snapshot; it must not retain the tree.
type Provider func(*mib.Tree) error

// LookupFunc answers a single targeted query. ok=false means no
// matching record.
type LookupFunc func(oid mib.Oid) (rec mib.Record, ok bool)

// Option configures Serve.
type Option func(*config)

type config struct {
	in       io.Reader
	out      io.Writer
	timeout  time.Duration
	logger   *slog.Logger
	provider Provider
	getHook  LookupFunc
	nextHook LookupFunc
}

// WithInput sets the request channel. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(c *config) { c.in = r }
}

// WithOutput sets the response channel. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithIdleTimeout sets how long to wait for an input line before
// exiting. Defaults to DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithProvider sets the snapshot provider backing GET, GETNEXT, and
// DUMP.
func WithProvider(p Provider) Option {
	return func(c *config) { c.provider = p }
}

// WithGetHook answers GET requests directly, bypassing the provider
// rebuild.
func WithGetHook(fn LookupFunc) Option {
	return func(c *config) { c.getHook = fn }
}

// WithNextHook answers GETNEXT requests directly, bypassing the
// provider rebuild.
func WithNextHook(fn LookupFunc) Option {
	return func(c *config) { c.nextHook = fn }
}

// Serve runs the command loop until the master disconnects, the idle
// timeout expires, an EXIT or QUIT command arrives, or ctx is canceled.
// All of those are orderly terminations and return nil.
//
// Serve returns an error only for embedding faults: a failed write to
// the response channel, a Provider error, or a data-bearing request
// with no source configured (ErrNoSource). Malformed input from the
// master is answered on the wire and never surfaces as an error.
func Serve(ctx context.Context, opts ...Option) error {
	cfg := config{
		in:      os.Stdin,
		out:     os.Stdout,
		timeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newAgent(cfg).run(ctx)
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}

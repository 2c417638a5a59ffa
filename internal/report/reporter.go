// Package report prints the host diagnostic report and the heartbeat that
// follows it.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/bft-labs/hostbeat/internal/hostinfo"
	"github.com/bft-labs/hostbeat/pkg/log"
)

// IdentityFunc queries the host identity.
type IdentityFunc func() (hostinfo.Identity, error)

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithIdentityFunc replaces the identity query, mainly for tests.
func WithIdentityFunc(fn IdentityFunc) Option {
	return func(r *Reporter) {
		r.identity = fn
	}
}

// Reporter writes the report to out. Write errors are not checked.
type Reporter struct {
	out      io.Writer
	logger   log.Logger
	identity IdentityFunc

	host    hostinfo.Identity
	counter uint64
	reload  chan Heartbeat
}

// New creates a Reporter writing to out.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:      out,
		logger:   log.NewNoopLogger(),
		identity: hostinfo.Query,
		reload:   make(chan Heartbeat, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run prints identity, arguments and environment, then runs the heartbeat
// loop. Nothing is printed after a failed identity query.
func (r *Reporter) Run(ctx context.Context, args, env []string, hb Heartbeat) error {
	if _, err := r.ReportHostIdentity(); err != nil {
		return err
	}
	r.ReportArguments(args)
	r.ReportEnvironment(env)
	return r.HeartbeatLoop(ctx, hb)
}

// ReportHostIdentity queries the host once and prints the identity block.
func (r *Reporter) ReportHostIdentity() (hostinfo.Identity, error) {
	id, err := r.identity()
	if err != nil {
		return hostinfo.Identity{}, fmt.Errorf("host identity: %w", err)
	}
	r.host = id
	r.logger.Debug("host identity",
		log.String("os", id.OSName),
		log.String("machine", id.Machine),
	)

	fmt.Fprintf(r.out, "OS name: %s\n", id.OSName)
	fmt.Fprintf(r.out, "Hardware identifier: %s\n", id.Machine)
	fmt.Fprintln(r.out)
	return id, nil
}

// ReportArguments prints each argument with its zero-based index.
func (r *Reporter) ReportArguments(args []string) {
	fmt.Fprintln(r.out, "Arguments:")
	for i, arg := range args {
		fmt.Fprintf(r.out, "argv[%d]: %s\n", i, arg)
	}
	fmt.Fprintln(r.out)
}

// ReportEnvironment prints env entries verbatim and in the order given.
func (r *Reporter) ReportEnvironment(env []string) {
	fmt.Fprintln(r.out, "Environment:")
	for _, kv := range env {
		fmt.Fprintln(r.out, kv)
	}
	fmt.Fprintln(r.out)
}

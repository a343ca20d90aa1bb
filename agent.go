package passpersist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/golangsnmp/passpersist/mib"
)

// Wire tokens of the pass_persist protocol.
const (
	tokenPong        = "PONG"
	tokenNone        = "NONE"
	tokenBye         = "BYE"
	tokenNotWritable = "not-writable"
	tokenUnknown     = "unknown-command"
	tokenEndOfDump   = "."
)

// agent is the protocol state machine. There is a single state, awaiting
// command; EXIT/QUIT, end of input, idle timeout, and cancellation are
// the only transitions out of it.
type agent struct {
	lines   chan lineEvent
	done    chan struct{}
	out     *bufio.Writer
	timeout time.Duration
	logger  *slog.Logger
	res     resolver
}

type lineEvent struct {
	text string
	err  error // io.EOF or a read failure; text is unset when non-nil
}

func newAgent(cfg config) *agent {
	a := &agent{
		lines:   make(chan lineEvent),
		done:    make(chan struct{}),
		out:     bufio.NewWriter(cfg.out),
		timeout: cfg.timeout,
		logger:  cfg.logger,
		res:     newResolver(cfg),
	}
	go a.pumpLines(cfg.in)
	return a
}

// pumpLines feeds input lines to the command loop. It runs in its own
// goroutine so the loop can bound every wait with the idle timeout; it
// exits at end of input or when the loop terminates first.
func (a *agent) pumpLines(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case a.lines <- lineEvent{text: sc.Text()}:
		case <-a.done:
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case a.lines <- lineEvent{err: err}:
	case <-a.done:
	}
}

// readLine waits for one input line, bounded by the idle timeout and
// ctx. ok=false means the loop should terminate silently: timeout, end
// of input, or cancellation.
func (a *agent) readLine(ctx context.Context) (string, bool) {
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case ev := <-a.lines:
		if ev.err != nil {
			if !errors.Is(ev.err, io.EOF) && logEnabled(a.logger, slog.LevelDebug) {
				a.logger.Debug("input channel failed", "err", ev.err)
			}
			return "", false
		}
		return ev.text, true
	case <-timer.C:
		if logEnabled(a.logger, slog.LevelDebug) {
			a.logger.Debug("idle timeout, exiting", "timeout", a.timeout)
		}
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// run processes one command per iteration until an orderly termination.
func (a *agent) run(ctx context.Context) error {
	defer close(a.done)

	for {
		line, ok := a.readLine(ctx)
		if !ok {
			return nil
		}
		verb := strings.ToUpper(strings.TrimSpace(line))
		if logEnabled(a.logger, slog.LevelDebug) {
			a.logger.Debug("command received", "verb", verb)
		}

		switch verb {
		case "PING":
			if err := a.reply(tokenPong); err != nil {
				return err
			}

		case "GET":
			op, ok := a.readLine(ctx)
			if !ok {
				return nil
			}
			rec, found, err := a.res.get(mib.ParseOID(op))
			if err != nil {
				return fmt.Errorf("get %s: %w", op, err)
			}
			if err := a.replyRecord(rec, found); err != nil {
				return err
			}

		case "GETNEXT":
			op, ok := a.readLine(ctx)
			if !ok {
				return nil
			}
			rec, found, err := a.res.next(mib.ParseOID(op))
			if err != nil {
				return fmt.Errorf("getnext %s: %w", op, err)
			}
			if err := a.replyRecord(rec, found); err != nil {
				return err
			}

		case "SET":
			// Read and discard the key and value lines; this agent
			// never writes.
			for i := 0; i < 2; i++ {
				if _, ok := a.readLine(ctx); !ok {
					return nil
				}
			}
			if err := a.reply(tokenNotWritable); err != nil {
				return err
			}

		case "EXIT", "QUIT":
			return a.reply(tokenBye)

		case "DUMP":
			if err := a.dump(ctx); err != nil {
				return err
			}

		default:
			if err := a.reply(tokenUnknown); err != nil {
				return err
			}
		}
	}
}

// dump streams every record in ascending key order, then a lone dot.
func (a *agent) dump(ctx context.Context) error {
	recs, err := a.res.dump()
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	for _, rec := range recs {
		key, tag, value := rec.Fields()
		if logEnabled(a.logger, LevelTrace) {
			a.logger.Log(ctx, LevelTrace, "dump record", "oid", key, "type", tag)
		}
		if err := a.writeLine(key, tag, value); err != nil {
			return err
		}
	}
	return a.reply(tokenEndOfDump)
}

// replyRecord answers a GET or GETNEXT: the three-field record form, or
// NONE when absent.
func (a *agent) replyRecord(rec mib.Record, found bool) error {
	if !found {
		return a.reply(tokenNone)
	}
	key, tag, value := rec.Fields()
	return a.reply(key, tag, value)
}

// reply writes one complete response and flushes it, so the master
// never observes a partial reply.
func (a *agent) reply(lines ...string) error {
	if err := a.writeLine(lines...); err != nil {
		return err
	}
	if err := a.out.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}

func (a *agent) writeLine(lines ...string) error {
	for _, s := range lines {
		if _, err := a.out.WriteString(s); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := a.out.WriteByte('\n'); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return nil
}

// Package session runs the interactive turn-by-turn chat with a provisioned agent.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	loggerpkg "github.com/minhyannv/superagent-chat-go/pkg/logger"
	"github.com/minhyannv/superagent-chat-go/pkg/remote"
)

// ExitSentinel ends the session. It is matched exactly.
const ExitSentinel = "exit"

const maxLineBytes = 1024 * 1024

// State is a session loop state.
type State int

const (
	StateAwaitingInput State = iota
	StateInvoking
	StateDisplaying
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateInvoking:
		return "invoking"
	case StateDisplaying:
		return "displaying"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Notifier renders loop events. Implementations must not read input.
type Notifier interface {
	OnPrompt()
	OnTurnStart(input string)
	OnTurnSuccess(output string, elapsedSeconds float64)
	OnTurnError(message string)
}

// Turn is one input/output exchange.
type Turn struct {
	Input    string
	Output   string
	Err      error
	Started  time.Time
	Finished time.Time
}

// Elapsed returns the turn duration in seconds rounded to two decimals.
func (t Turn) Elapsed() float64 {
	d := t.Finished.Sub(t.Started)
	if d < 0 {
		d = 0
	}
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}

// Loop reads lines from an input stream and invokes the agent once per line.
type Loop struct {
	service  remote.Service
	notifier Notifier
	in       io.Reader
	now      func() time.Time
	logger   loggerpkg.Logger

	sessionID string
	state     State
	observe   func(State)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(lp *Loop) {
		if now != nil {
			lp.now = now
		}
	}
}

// WithSessionID tags every invoke with a session id.
func WithSessionID(id string) Option {
	return func(lp *Loop) {
		lp.sessionID = id
	}
}

// WithStateObserver registers a callback for state transitions.
func WithStateObserver(fn func(State)) Option {
	return func(lp *Loop) {
		lp.observe = fn
	}
}

// New builds a Loop. The loop owns in for its lifetime and closes it, when it
// is an io.Closer, once the exit sentinel is read.
func New(service remote.Service, notifier Notifier, in io.Reader, opts ...Option) *Loop {
	lp := &Loop{
		service:  service,
		notifier: notifier,
		in:       in,
		now:      time.Now,
		logger:   loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(lp)
		}
	}
	return lp
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

// Run chats with agentID until the exit sentinel, EOF, a read error or ctx
// cancellation. Invocation errors are reported through the notifier and do
// not stop the loop.
func (l *Loop) Run(ctx context.Context, agentID string) error {
	if l.service == nil {
		return errors.New("remote service is required")
	}
	if l.notifier == nil {
		return errors.New("notifier is required")
	}
	if l.in == nil {
		return errors.New("input reader is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for {
		l.transition(StateAwaitingInput)
		if err := ctx.Err(); err != nil {
			l.transition(StateTerminated)
			return err
		}

		l.notifier.OnPrompt()
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			l.transition(StateTerminated)
			return err
		}
		input := scanner.Text()
		if input == ExitSentinel {
			l.transition(StateTerminated)
			l.logger.Debug("exit sentinel received", nil)
			return l.release()
		}

		turn := l.invoke(ctx, agentID, input)

		l.transition(StateDisplaying)
		if turn.Err != nil {
			l.logger.Warn("invoke failed", map[string]any{"agent_id": agentID, "error": turn.Err.Error()})
			l.notifier.OnTurnError("Error invoking the agent: " + turn.Err.Error())
			continue
		}
		l.logger.Debug("invoke succeeded", map[string]any{"agent_id": agentID, "elapsed_s": turn.Elapsed()})
		l.notifier.OnTurnSuccess(turn.Output, turn.Elapsed())
	}

	l.transition(StateTerminated)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// invoke performs exactly one blocking call; no input is read meanwhile.
func (l *Loop) invoke(ctx context.Context, agentID, input string) Turn {
	l.transition(StateInvoking)
	turn := Turn{Input: input, Started: l.now()}
	l.notifier.OnTurnStart(input)

	res, err := l.service.Invoke(ctx, agentID, remote.InvokeRequest{
		Input:           input,
		EnableStreaming: false,
		SessionID:       l.sessionID,
	})
	turn.Finished = l.now()
	if err != nil {
		turn.Err = err
		return turn
	}
	turn.Output = res.Output
	return turn
}

func (l *Loop) release() error {
	if c, ok := l.in.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close input: %w", err)
		}
	}
	return nil
}

func (l *Loop) transition(s State) {
	l.state = s
	if l.observe != nil {
		l.observe(s)
	}
}

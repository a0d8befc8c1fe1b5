package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"paizer/config"
	ncerr "paizer/internal/errors"
	"paizer/internal/metrics"
	"paizer/internal/session"
	"paizer/util"
)

// QuitPrompt is asked before /quit ends the session.
const QuitPrompt = "Are you sure you want to quit? [y/N] "

// UI is the console side of a chat: the session's display sink plus
// line input.  *console.Console is the production implementation.
type UI interface {
	session.Sink
	ReadLine() (string, error)
	Confirm(question string) (bool, error)
}

// ChatMode connects one session and drives it from console input until
// the user quits, input ends or the context is cancelled.
type ChatMode struct {
	Connector session.Connector
	UI        UI
	Nickname  string
	Server    string
	AssumeYes bool
	Logger    *util.Logger
	Metrics   *metrics.Collector

	// Stats prints the metrics snapshot to StatsOut (default
	// os.Stderr) when the session ends.
	Stats    bool
	StatsOut io.Writer
}

func (m *ChatMode) statsOut() io.Writer {
	if m.StatsOut != nil {
		return m.StatsOut
	}
	return os.Stderr
}

// Run starts the session and returns once it has been shut down.  The
// session's own failures are already on the console when Run returns
// them.
func (m *ChatMode) Run(ctx context.Context) error {
	if c, ok := m.Connector.(io.Closer); ok {
		defer c.Close()
	}
	defer m.report()

	sess := session.New(session.Options{
		Connector: m.Connector,
		Sink:      m.UI,
		Logger:    m.Logger,
		Metrics:   m.Metrics,
	})

	if err := sess.Start(ctx, m.Nickname, m.Server); err != nil {
		return err
	}

	// ReadLine cannot be interrupted, so input runs on its own
	// goroutine and is abandoned on cancel.
	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		m.readInput(sess)
	}()

	select {
	case <-inputDone:
	case <-ctx.Done():
		m.Logger.Verbose("interrupted, shutting down")
	}

	return sess.Shutdown()
}

// readInput forwards console lines to the session until the user quits
// or input ends.  A remote disconnect does not stop it: later sends
// report that the session is not connected.
func (m *ChatMode) readInput(sess *session.Session) {
	for {
		line, err := m.UI.ReadLine()
		if err != nil {
			if err != io.EOF {
				m.Logger.Verbose("console: %v", err)
			}
			return
		}

		if strings.TrimSpace(line) == config.DefaultQuitCommand {
			if m.confirmQuit() {
				return
			}
			continue
		}

		if err := sess.Send(line); err != nil && ncerr.Is(err, ncerr.ErrNotConnected) {
			m.UI.Status("[!] not connected to server")
		}
	}
}

func (m *ChatMode) confirmQuit() bool {
	if m.AssumeYes {
		return true
	}
	ok, err := m.UI.Confirm(QuitPrompt)
	if err != nil {
		// input ended at the prompt
		return true
	}
	return ok
}

func (m *ChatMode) report() {
	if m.Metrics == nil {
		return
	}
	m.Logger.Debug("stats: %s", m.Metrics.JSON())
	if m.Stats {
		fmt.Fprintln(m.statsOut(), m.Metrics.JSON())
	}
}

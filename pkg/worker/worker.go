// Package worker supervises one external helper process, streaming its
// decoded output lines while remaining cancellable and exit-code aware.
//
// The helper is run under a pseudo terminal: steamcmd only emits live
// progress text when it believes it has an interactive console. A dedicated
// reader goroutine polls the pty, cleans each line (ANSI escapes stripped,
// invalid UTF-8 replaced, whitespace trimmed) and queues non-empty lines.
// The queue is unbounded, so the helper is never stalled by output
// backpressure: a caller may ignore the output entirely, or consume it at
// any pace, without blocking the reader or Wait. Teardown is guaranteed on
// every path, including when the caller never waits: the reader is
// signalled and the process killed.
package worker

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// pollInterval is the read deadline of the pty poll loop. It bounds how
// long a cancellation request can go unnoticed.
const pollInterval = 10 * time.Millisecond

// ExitError reports a helper process that terminated with a non-zero code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("worker process exited with code %d", e.Code)
}

// Process owns one live helper process, its reader goroutine, its output
// channel and its cancellation signal. A Process is not shareable.
type Process struct {
	cmd    *exec.Cmd
	tty    *os.File
	logger zerolog.Logger

	lines       chan string
	outputMu    sync.Mutex
	outputTaken bool

	queueMu    sync.Mutex
	queueCond  *sync.Cond
	queue      []string
	readerExit bool

	interrupt     chan struct{}
	interruptOnce sync.Once
	readerDone    chan struct{}

	waitOnce sync.Once
	waitErr  error

	ttyOnce sync.Once
}

// Spawn starts args[0] with the remaining arguments under a pseudo
// terminal and begins streaming its output.
func Spawn(args []string) (*Process, error) {
	if len(args) == 0 {
		return nil, errors.New(errors.ErrProcessSpawn, "empty argument vector")
	}
	logger := logging.GetLogger("worker")
	logger.Trace().Strs("args", args).Msg("Spawning worker process")

	cmd := exec.Command(args[0], args[1:]...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProcessSpawn, "failed to spawn %s", args[0])
	}

	p := &Process{
		cmd:        cmd,
		tty:        tty,
		logger:     logger,
		lines:      make(chan string),
		interrupt:  make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	p.queueCond = sync.NewCond(&p.queueMu)
	go p.readLoop()
	return p, nil
}

// TakeOutput hands the output channel to the caller. The channel carries
// cleaned, non-empty lines in emission order; lines queue without bound
// until received, so a slow (or absent) consumer never throttles the
// process. The caller that takes the output must drain the channel until it
// is closed, which happens once the stream ends and every queued line has
// been delivered. It may be taken at most once; a second take is a
// programmer error and panics.
func (p *Process) TakeOutput() <-chan string {
	p.outputMu.Lock()
	defer p.outputMu.Unlock()
	if p.outputTaken {
		panic("worker: output already taken")
	}
	p.outputTaken = true
	go p.pump()
	return p.lines
}

// Wait blocks until the process terminates, then signals the reader and
// collects it. Exit code 0 yields nil; any other code yields an *ExitError
// carrying the code.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		p.stopReader()

		switch {
		case err == nil:
			p.logger.Trace().Msg("Worker process exited cleanly")
		default:
			var exitErr *exec.ExitError
			if stderrors.As(err, &exitErr) {
				code := exitErr.ExitCode()
				p.logger.Trace().Int("code", code).Msg("Worker process exited")
				p.waitErr = &ExitError{Code: code}
			} else {
				p.waitErr = errors.Wrap(err, errors.ErrProcessExit, "failed to wait for worker process")
			}
		}
	})
	return p.waitErr
}

// Close tears the process down: cancellation signal, forcible kill, reader
// join. Safe to call whether or not Wait ran, and more than once. This is
// what guarantees no process or goroutine leaks on early error paths.
func (p *Process) Close() error {
	p.signalInterrupt()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.Wait()
	return nil
}

func (p *Process) signalInterrupt() {
	p.interruptOnce.Do(func() {
		close(p.interrupt)
	})
}

func (p *Process) stopReader() {
	p.signalInterrupt()
	<-p.readerDone
	p.ttyOnce.Do(func() {
		_ = p.tty.Close()
	})
}

// readLoop polls the pty with a short read deadline, queueing complete
// cleaned lines. It ends on cancellation, end of stream, or a read error
// (a pty reports an I/O error once the child side is gone).
func (p *Process) readLoop() {
	defer close(p.readerDone)
	defer p.endStream()

	buf := make([]byte, 4096)
	var pending []byte
	for {
		interrupted := false
		select {
		case <-p.interrupt:
			interrupted = true
		default:
		}

		_ = p.tty.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := p.tty.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				p.push(string(pending[:idx]))
				pending = pending[idx+1:]
			}
		}
		if err != nil {
			if stderrors.Is(err, os.ErrDeadlineExceeded) {
				// Cancellation exits only once a poll comes back empty, so
				// output already buffered in the pty still gets delivered.
				if interrupted && n == 0 {
					p.logger.Trace().Msg("Reader interrupted")
					return
				}
				continue
			}
			// EOF or EIO: the stream is over. Flush whatever is left.
			p.push(string(pending))
			p.logger.Trace().Msg("Reader reached end of stream")
			return
		}
	}
}

// push cleans one raw line and queues it if non-empty. Queueing never
// blocks, so the reader keeps draining the pty regardless of whether the
// output is being consumed.
func (p *Process) push(raw string) {
	line := ansi.Strip(raw)
	line = strings.ToValidUTF8(line, "�")
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	p.queueMu.Lock()
	p.queue = append(p.queue, line)
	p.queueMu.Unlock()
	p.queueCond.Signal()
}

// endStream marks the line stream as finished and wakes the pump so it can
// drain the remainder and close the channel.
func (p *Process) endStream() {
	p.queueMu.Lock()
	p.readerExit = true
	p.queueMu.Unlock()
	p.queueCond.Broadcast()
}

// pump moves queued lines onto the output channel in order, closing it once
// the stream has ended and the queue is empty. It runs only when the output
// was taken.
func (p *Process) pump() {
	defer close(p.lines)
	for {
		p.queueMu.Lock()
		for len(p.queue) == 0 && !p.readerExit {
			p.queueCond.Wait()
		}
		if len(p.queue) == 0 {
			p.queueMu.Unlock()
			return
		}
		line := p.queue[0]
		p.queue = p.queue[1:]
		p.queueMu.Unlock()
		p.lines <- line
	}
}

//go:build !windows

package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnBadExecutable(t *testing.T) {
	_, err := Spawn([]string{"/nonexistent/helper-binary"})
	assert.Error(t, err)
}

func TestSpawnEmptyArgs(t *testing.T) {
	_, err := Spawn(nil)
	assert.Error(t, err)
}

func TestWaitExitCode(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "exit 3"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	err = p.Wait()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestWaitSuccess(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	assert.NoError(t, p.Wait())
}

func TestOutputLinesInOrder(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "echo one; echo two; echo three"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	lines := p.TakeOutput()
	require.NoError(t, p.Wait())

	// After Wait the reader has stopped; whatever was emitted is drained
	// here, and the channel closes once the queue is empty.
	var got []string
	for line := range lines {
		got = append(got, line)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestOutputCleaned(t *testing.T) {
	// ANSI escapes are stripped and surrounding whitespace trimmed; blank
	// lines are dropped.
	p, err := Spawn([]string{"/bin/sh", "-c", `printf '\033[1;32m  hello  \033[0m\n\n\nworld\n'`})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	lines := p.TakeOutput()
	require.NoError(t, p.Wait())

	var got []string
	for line := range lines {
		got = append(got, line)
	}
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestWaitWithoutTakingOutput(t *testing.T) {
	// A chatty helper whose output nobody consumes must not be able to
	// stall Wait: lines queue without bound instead of backing up into the
	// pty and blocking the child.
	p, err := Spawn([]string{"/bin/sh", "-c",
		"i=0; while [ $i -lt 3000 ]; do echo line $i; i=$((i+1)); done"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	done := make(chan error, 1)
	go func() {
		done <- p.Wait()
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Wait blocked with unconsumed output")
	}
}

func TestTakeOutputAfterWait(t *testing.T) {
	// Output queued while nobody was listening is still delivered, in
	// order, to a late consumer.
	p, err := Spawn([]string{"/bin/sh", "-c", "echo early; echo late"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	require.NoError(t, p.Wait())

	var got []string
	for line := range p.TakeOutput() {
		got = append(got, line)
	}
	assert.Equal(t, []string{"early", "late"}, got)
}

func TestTakeOutputTwicePanics(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)
	defer func() {
		_ = p.Close()
	}()

	_ = p.TakeOutput()
	assert.Panics(t, func() {
		_ = p.TakeOutput()
	})
	require.NoError(t, p.Wait())
}

func TestCloseKillsRunningProcess(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "sleep 30"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_ = p.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not tear the process down in time")
	}
}

func TestCloseIdempotent(t *testing.T) {
	p, err := Spawn([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)

	require.NoError(t, p.Wait())
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

package reconcile

import (
	"time"

	"github.com/arthur-debert/modsync/pkg/logging"
)

// Handle is the supervised helper process driven per scheduled item.
// *worker.Process satisfies it; tests substitute fakes.
type Handle interface {
	TakeOutput() <-chan string
	Wait() error
	Close() error
}

// ExecDeps injects everything Execute needs to act on a schedule. Spawn
// starts the download helper for one id; Copy moves the finished download
// into the collection; Checksum recomputes the local tree checksum; Record
// persists the sync record for a completed item.
type ExecDeps struct {
	Spawn    func(id string) (Handle, error)
	Copy     func(id string) error
	Checksum func(id string) (string, error)
	Record   func(id, checksum string, at time.Time) error

	// SkipVerify disables post-copy checksum verification.
	SkipVerify bool

	// Printf emits user-facing progress lines. Optional.
	Printf func(format string, args ...interface{})
}

// Execute processes the schedule sequentially, downloading, copying and
// verifying each entry. One bad entry never aborts the rest: every failure
// is counted and processing moves on. The return value is the total error
// count; zero is success, nonzero is reported by the caller, not a crash.
func Execute(schedule []Decision, deps ExecDeps) int {
	logger := logging.GetLogger("reconcile.execute")
	printf := deps.Printf
	if printf == nil {
		printf = func(string, ...interface{}) {}
	}

	errCount := 0
	for _, entry := range schedule {
		printf("Downloading %q (%s) ...", entry.DisplayName(), entry.ID)
		if err := executeOne(entry, deps, printf); err != nil {
			logger.Error().Err(err).Str("id", entry.ID).Msg("Item failed")
			printf("ERROR for %s: %v", entry.ID, err)
			errCount++
		}
	}
	return errCount
}

func executeOne(entry Decision, deps ExecDeps, printf func(string, ...interface{})) error {
	logger := logging.GetLogger("reconcile.execute")

	handle, err := deps.Spawn(entry.ID)
	if err != nil {
		return err
	}
	defer func() {
		_ = handle.Close()
	}()

	// Forward helper output to the log on a best-effort basis. The drainer
	// ends on its own once the handle's reader closes the channel.
	lines := handle.TakeOutput()
	go func() {
		for line := range lines {
			logger.Info().Str("id", entry.ID).Msg(line)
		}
	}()

	if err := handle.Wait(); err != nil {
		return err
	}

	printf("Download complete, copying to collection ...")
	if err := deps.Copy(entry.ID); err != nil {
		return err
	}

	if deps.SkipVerify {
		if deps.Record != nil {
			if err := deps.Record(entry.ID, "", time.Now().UTC()); err != nil {
				return err
			}
		}
		return nil
	}

	printf("Copied, computing checksum ...")
	sum, err := deps.Checksum(entry.ID)
	if err != nil {
		return err
	}
	printf("Checksum is %s", sum)

	if deps.Record != nil {
		if err := deps.Record(entry.ID, sum, time.Now().UTC()); err != nil {
			return err
		}
	}

	if entry.Checksum != "" && sum != entry.Checksum {
		printf("ERROR, checksum mismatch - %s local <=> import %s", sum, entry.Checksum)
		return &VerifyError{ID: entry.ID, Got: sum, Want: entry.Checksum}
	}
	if entry.Checksum != "" {
		printf("OK, match with import checksum")
	}
	return nil
}

// VerifyError reports a post-download checksum mismatch.
type VerifyError struct {
	ID   string
	Got  string
	Want string
}

func (e *VerifyError) Error() string {
	return "checksum mismatch for " + e.ID + " - " + e.Got + " local <=> expected " + e.Want
}

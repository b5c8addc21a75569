package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

var (
	// ErrNotRunning is returned when no live daemon owns the run file.
	ErrNotRunning = errors.New("daemon: not running")
	// ErrRunning is returned when another live daemon owns the run file.
	ErrRunning = errors.New("daemon: already running")
)

// RunInfo describes the daemon process that owns a run file.
type RunInfo struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	DBPath    string    `json:"db_path"`
	StartedAt time.Time `json:"started_at"`
}

// RunFile is the JSON file a running daemon leaves behind so that
// `snowball daemon status` and `stop` can find it.
type RunFile struct {
	Path string
}

// Read returns the recorded owner without checking that it is alive.
func (f RunFile) Read() (RunInfo, error) {
	var info RunInfo
	data, err := os.ReadFile(f.Path) //nolint:gosec // run file path is chosen by the local user
	if errors.Is(err, os.ErrNotExist) {
		return info, ErrNotRunning
	}
	if err != nil {
		return info, fmt.Errorf("reading run file: %w", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parsing run file %s: %w", f.Path, err)
	}
	if info.PID <= 0 {
		return info, fmt.Errorf("run file %s has no pid", f.Path)
	}
	return info, nil
}

// Live returns the owner if its process still exists. A file left by a dead
// process is removed and reported as ErrNotRunning.
func (f RunFile) Live() (RunInfo, error) {
	info, err := f.Read()
	if err != nil {
		return info, err
	}
	if !Alive(info.PID) {
		_ = f.Release()
		return info, ErrNotRunning
	}
	return info, nil
}

// Claim records info as the owner. It fails with ErrRunning while another
// live process holds the file.
func (f RunFile) Claim(info RunInfo) error {
	if cur, err := f.Live(); err == nil && cur.PID != info.PID {
		return fmt.Errorf("%w (pid %d)", ErrRunning, cur.PID)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o750); err != nil {
		return fmt.Errorf("creating run file dir: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing run file: %w", err)
	}
	return nil
}

// Release removes the run file.
func (f RunFile) Release() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Stop sends SIGTERM to the live owner and waits for it to exit or for ctx
// to end.
func (f RunFile) Stop(ctx context.Context) (RunInfo, error) {
	info, err := f.Live()
	if err != nil {
		return info, err
	}
	proc, err := os.FindProcess(info.PID)
	if err != nil {
		return info, fmt.Errorf("finding pid %d: %w", info.PID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return info, fmt.Errorf("signalling pid %d: %w", info.PID, err)
	}

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return info, fmt.Errorf("pid %d did not exit: %w", info.PID, ctx.Err())
		case <-tick.C:
			if !Alive(info.PID) {
				_ = f.Release()
				return info, nil
			}
		}
	}
}

// Alive reports whether a process with this pid exists.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

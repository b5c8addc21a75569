package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// deadPID is above Linux's pid_max, so no process can hold it.
const deadPID = 1 << 30

func TestRunFileClaimAndRead(t *testing.T) {
	f := RunFile{Path: filepath.Join(t.TempDir(), "run", "snowballd.json")}

	if _, err := f.Read(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Read on missing file: err = %v, want ErrNotRunning", err)
	}

	want := RunInfo{PID: os.Getpid(), Addr: "127.0.0.1:9999", DBPath: "/tmp/ledger.db", StartedAt: time.Now().UTC().Truncate(time.Second)}
	if err := f.Claim(want); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	got, err := f.Live()
	if err != nil {
		t.Fatalf("Live: %v", err)
	}
	if got.PID != want.PID || got.Addr != want.Addr || got.DBPath != want.DBPath || !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("Live = %+v, want %+v", got, want)
	}

	// Re-claiming for the same process is allowed.
	if err := f.Claim(want); err != nil {
		t.Errorf("second Claim by owner: %v", err)
	}

	if err := f.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Errorf("Release twice: %v", err)
	}
}

func TestRunFileRejectsSecondOwner(t *testing.T) {
	f := RunFile{Path: filepath.Join(t.TempDir(), "snowballd.json")}
	if err := f.Claim(RunInfo{PID: os.Getpid()}); err != nil {
		t.Fatal(err)
	}
	err := f.Claim(RunInfo{PID: os.Getpid() + 1})
	if !errors.Is(err, ErrRunning) {
		t.Errorf("err = %v, want ErrRunning", err)
	}
}

func TestRunFileStaleOwner(t *testing.T) {
	f := RunFile{Path: filepath.Join(t.TempDir(), "snowballd.json")}
	if err := f.Claim(RunInfo{PID: deadPID}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Live(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Live with dead pid: err = %v, want ErrNotRunning", err)
	}
	if _, err := os.Stat(f.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale run file should be removed, stat err = %v", err)
	}

	if err := f.Claim(RunInfo{PID: deadPID}); err != nil {
		t.Fatal(err)
	}
	if err := f.Claim(RunInfo{PID: os.Getpid()}); err != nil {
		t.Errorf("Claim over a stale owner: %v", err)
	}
}

func TestRunFileStopWithoutDaemon(t *testing.T) {
	f := RunFile{Path: filepath.Join(t.TempDir(), "snowballd.json")}
	if _, err := f.Stop(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop: err = %v, want ErrNotRunning", err)
	}
}

func TestRunFileBadContents(t *testing.T) {
	f := RunFile{Path: filepath.Join(t.TempDir(), "snowballd.json")}
	if err := os.WriteFile(f.Path, []byte("12345\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Read(); err == nil || errors.Is(err, ErrNotRunning) {
		t.Errorf("Read of a bare pid: err = %v, want a parse error", err)
	}
}

func TestAlive(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	if Alive(deadPID) {
		t.Error("pid above pid_max should not be alive")
	}
}

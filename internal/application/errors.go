package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrServerNotFound = errors.New("server not found")
	ErrServerDisabled = errors.New("server disabled")
	ErrSelfRelay      = errors.New("relay source and destination are the same server")
	ErrLockBusy       = errors.New("lock busy")
	ErrUnreachable    = errors.New("server unreachable")
)

// ReachabilityError reports which server failed its connectivity probe,
// so relay callers know which side is unreachable.
type ReachabilityError struct {
	ServerID string
	Err      error
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("server %s unreachable: %v", e.ServerID, e.Err)
}

func (e *ReachabilityError) Is(target error) bool {
	return target == ErrUnreachable
}

func (e *ReachabilityError) Unwrap() error {
	return e.Err
}

// LockBusyError reports a lock held by a live process.
type LockBusyError struct {
	Name string
	PID  int
}

func (e *LockBusyError) Error() string {
	return fmt.Sprintf("lock %q held by running process %d", e.Name, e.PID)
}

func (e *LockBusyError) Is(target error) bool {
	return target == ErrLockBusy
}

// TransferError reports a nonzero exit from the transfer primitive.
type TransferError struct {
	ExitCode int
	Stderr   string
}

func (e *TransferError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("transfer failed (exit %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("transfer failed (exit %d)", e.ExitCode)
}

// PartialTransferError reports that some but not all files moved. The
// relay coordinator downgrades a push failure to this when the pulled
// files remain locally available for a retry.
type PartialTransferError struct {
	Transferred int
	Reason      string
}

func (e *PartialTransferError) Error() string {
	return fmt.Sprintf("partial transfer (%d files moved): %s", e.Transferred, e.Reason)
}

////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package stoppable provides a way to signal and wait for background threads.
package stoppable

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Error messages.
const (
	timeoutErr = "timed out after %s waiting for the stoppable %q to stop"

	// ErrMsg is returned by operations called on a component whose thread
	// has already been stopped.
	ErrMsg = "stoppable %q has been stopped; cannot call %s"

	errKey = "has been stopped"
)

// pollInterval is how often WaitForStopped checks the status.
const pollInterval = 10 * time.Millisecond

// Stoppable is the interface of a background thread that can be stopped.
type Stoppable interface {
	// Name returns the name of the Stoppable.
	Name() string

	// GetStatus returns the current Status.
	GetStatus() Status

	// IsRunning returns true if the thread has not been asked to stop.
	IsRunning() bool

	// IsStopping returns true if the thread has been asked to stop but has
	// not yet finished.
	IsStopping() bool

	// IsStopped returns true once the thread has finished.
	IsStopped() bool

	// Close signals the thread to stop. It does not wait.
	Close() error
}

// Status is the running state of a Stoppable.
type Status uint32

const (
	Running Status = iota
	Stopping
	Stopped
)

// String returns a human-readable name for the Status. Used for debugging and
// to adhere to the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "INVALID STATUS: " + strconv.Itoa(int(s))
	}
}

// WaitForStopped polls the Stoppable until it reports Stopped or the timeout
// elapses.
func WaitForStopped(s Stoppable, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for !s.IsStopped() {
		select {
		case <-deadline.C:
			return errors.Errorf(timeoutErr, timeout, s.Name())
		case <-ticker.C:
		}
	}

	jww.DEBUG.Printf("Stoppable %q has stopped.", s.Name())
	return nil
}

// CheckErr returns true if the error was produced because a stoppable had
// already been stopped.
func CheckErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), errKey)
}

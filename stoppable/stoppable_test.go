////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package stoppable

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

func TestMain(m *testing.M) {
	jww.SetStdoutThreshold(jww.LevelTrace)

	os.Exit(m.Run())
}

// Tests that WaitForStopped returns once the thread marks itself stopped.
func TestWaitForStopped(t *testing.T) {
	single := NewSingle("threadName")

	go func() {
		<-single.Quit()
		time.Sleep(20 * time.Millisecond)
		single.ToStopped()
	}()

	if err := single.Close(); err != nil {
		t.Fatalf("Failed to close single stoppable: %+v", err)
	}

	err := WaitForStopped(single, 2*time.Second)
	if err != nil {
		t.Errorf("WaitForStopped returned an error: %+v", err)
	}
}

// Error path: tests that WaitForStopped returns an error if the timeout is
// reached before the stoppable stops.
func TestWaitForStopped_TimeoutError(t *testing.T) {
	single := NewSingle("threadName")
	timeout := 15 * time.Millisecond
	expectedErr := fmt.Sprintf(timeoutErr, timeout, single.Name())

	err := WaitForStopped(single, timeout)
	if err == nil || err.Error() != expectedErr {
		t.Errorf("WaitForStopped did not return the expected error."+
			"\nexpected: %s\nreceived: %+v", expectedErr, err)
	}
}

// Tests that CheckErr returns true for stoppable errors and false for all
// other errors.
func TestCheckErr(t *testing.T) {
	testValues := []struct {
		err      error
		expected bool
	}{
		{errors.Errorf(ErrMsg, "testThread", "testFunc"), true},
		{errors.Errorf(ErrMsg, "", ""), true},
		{errors.Errorf(errKey), true},
		{errors.Errorf("Random error"), false},
		{errors.Errorf(""), false},
		{nil, false},
	}

	for i, val := range testValues {
		result := CheckErr(val.err)
		if result != val.expected {
			t.Errorf("CheckErr failed to return the expected value (%d)."+
				"\nexpected: %t\nreceived: %t", i, val.expected, result)
		}
	}
}

// Tests that Status.String names each stage of a Single and invalid values.
func TestStatus_String(t *testing.T) {
	single := NewSingle("stuck")
	if s := single.GetStatus().String(); s != "running" {
		t.Errorf("Unexpected status.\nexpected: %s\nreceived: %s",
			"running", s)
	}

	if err := single.Close(); err != nil {
		t.Fatalf("Failed to close single stoppable: %+v", err)
	}
	if s := single.GetStatus().String(); s != "stopping" {
		t.Errorf("Unexpected status.\nexpected: %s\nreceived: %s",
			"stopping", s)
	}

	single.ToStopped()
	if s := fmt.Sprint(single.GetStatus()); s != "stopped" {
		t.Errorf("Unexpected status.\nexpected: %s\nreceived: %s",
			"stopped", s)
	}

	if s := Status(7).String(); s != "INVALID STATUS: 7" {
		t.Errorf("Unexpected status.\nexpected: %s\nreceived: %s",
			"INVALID STATUS: 7", s)
	}
}

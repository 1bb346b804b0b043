// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import "testing"

// TestFrameEncoderIdleFlush verifies that flushing with no recorded
// frame is a no-op: nothing is submitted and no error is reported.
func TestFrameEncoderIdleFlush(t *testing.T) {
	e := newFrameEncoder(nil, nil)
	if err := e.flush(); err != nil {
		t.Errorf("flush() on idle encoder = %v, want nil", err)
	}
	if e.recording {
		t.Error("idle encoder reports recording after flush")
	}
}

// TestFrameEncoderIdleDiscard verifies that discarding with no recorded
// frame does not touch the device.
func TestFrameEncoderIdleDiscard(t *testing.T) {
	e := newFrameEncoder(nil, nil)
	e.discard()
	if e.recording || e.enc != nil {
		t.Error("idle encoder changed state on discard")
	}
}

// TestFrameEncoderEndPassNoPass verifies that ending a pass when none
// is open is safe.
func TestFrameEncoderEndPassNoPass(t *testing.T) {
	e := newFrameEncoder(nil, nil)
	e.endPass()
	if e.pass != nil {
		t.Error("endPass() left a pass open")
	}
}

// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import "testing"

func TestSubsystemZeroValueInvalid(t *testing.T) {
	var s Subsystem
	if s.Valid() {
		t.Fatal("zero-value Subsystem must be invalid")
	}
}

func TestAllSubsystemsValid(t *testing.T) {
	if len(All) != 4 {
		t.Fatalf("len(All) = %d, want 4", len(All))
	}
	for _, s := range All {
		if !s.Valid() {
			t.Fatalf("%v should be valid", s)
		}
		if s.String() == "Unknown" {
			t.Fatalf("%v should have a name", s)
		}
	}
}

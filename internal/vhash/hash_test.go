// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vhash

import "testing"

func TestZeroIsIdentity(t *testing.T) {
	if !IsZero(Zero()) {
		t.Fatal("Zero() should report IsZero")
	}
	if IsZero(Sum([]byte("x"))) {
		t.Fatal("a real sum should not be zero")
	}
}

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Fatal("Sum must be deterministic")
	}
	if a == Sum([]byte("hellp")) {
		t.Fatal("different input must not collide trivially")
	}
}

func TestCombineOrderSensitive(t *testing.T) {
	a, b := Sum([]byte("a")), Sum([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("Combine(a,b) must differ from Combine(b,a)")
	}
}

func TestPutUintLE(t *testing.T) {
	got := PutUint64LE(nil, 1)
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if string(got) != string(want) {
		t.Fatalf("PutUint64LE(1) = %v, want %v", got, want)
	}

	got32 := PutUint32LE(nil, 1)
	want32 := []byte{1, 0, 0, 0}
	if string(got32) != string(want32) {
		t.Fatalf("PutUint32LE(1) = %v, want %v", got32, want32)
	}
}

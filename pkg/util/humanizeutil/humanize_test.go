// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package humanizeutil

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIBytes(t *testing.T) {
	require.EqualValues(t, "0 B", IBytes(0))
	require.EqualValues(t, "1.0 KiB", IBytes(1<<10))
	require.EqualValues(t, "1.0 MiB", IBytes(1<<20))
	require.EqualValues(t, "-64 KiB", IBytes(-(64 << 10)))
}

func TestParseBytes(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected int64
	}{
		{"0", 0},
		{"64 KiB", 64 << 10},
		{"1.0 MiB", 1 << 20},
		{"-1 KiB", -(1 << 10)},
	} {
		got, err := ParseBytes(tc.in)
		require.NoError(t, err)
		require.Equalf(t, tc.expected, got, "ParseBytes(%q)", tc.in)
	}
	_, err := ParseBytes("")
	require.Error(t, err)
	_, err = ParseBytes("bogus")
	require.Error(t, err)
}

func TestBytesValue(t *testing.T) {
	var val int64
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	b := NewBytesValue(&val)
	f.Var(b, "limit", "")

	require.NoError(t, f.Parse([]string{"-limit", "256 MiB"}))
	require.Equal(t, int64(256<<20), val)
	require.True(t, b.IsSet())
	require.Equal(t, "256 MiB", b.String())
}

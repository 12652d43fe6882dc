// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleton(t *testing.T) {
	Init(1 << 20)
	a := Default()
	require.NotNil(t, a)
	require.Same(t, a, Default())

	c, err := a.Allocate(4<<10, nil, false)
	require.NoError(t, err)
	require.NoError(t, a.Release(&c, nil))

	require.Panics(t, func() { Init(1 << 20) })
}

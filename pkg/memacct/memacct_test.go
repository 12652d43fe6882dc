// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package memacct

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitorLimit(t *testing.T) {
	m := NewMonitor("test", 100)
	require.True(t, m.TryConsume(60))
	require.True(t, m.TryConsume(40))
	require.False(t, m.TryConsume(1))
	require.Equal(t, int64(100), m.Used())

	m.Release(50)
	require.True(t, m.TryConsume(50))
	require.False(t, m.TryConsume(50))
}

func TestMonitorUnlimited(t *testing.T) {
	m := NewMonitor("test", 0)
	require.True(t, m.TryConsume(1<<40))
	require.Equal(t, int64(1<<40), m.Used())
	m.Release(1 << 40)
	require.Zero(t, m.Used())
}

func TestMonitorConsumePastLimit(t *testing.T) {
	m := NewMonitor("test", 10)
	m.Consume(100)
	require.Equal(t, int64(100), m.Used())
	require.False(t, m.TryConsume(1))
	m.Release(100)
	require.Zero(t, m.Used())
}

func TestMonitorConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 1000
	m := NewMonitor("test", workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				require.True(t, m.TryConsume(1))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(workers*perWorker), m.Used())
	require.False(t, m.TryConsume(1))
}

func TestMonitorString(t *testing.T) {
	m := NewMonitor("sql-exec", 1<<20)
	m.Consume(1 << 10)
	require.Equal(t, "sql-exec: 1.0 KiB used of 1.0 MiB", m.String())
}

// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package cpuid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumCores(t *testing.T) {
	require.Greater(t, NumCores(), 0)
}

func TestCurrentInRange(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 4*NumCores(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c := Current()
				if int(c) < 0 || int(c) >= NumCores() {
					t.Errorf("core id %d out of range [0, %d)", c, NumCores())
					return
				}
			}
		}()
	}
	wg.Wait()
}

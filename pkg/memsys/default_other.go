// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

//go:build !linux

package memsys

// Default returns the provider used when a caller does not supply one.
func Default() Provider {
	return HeapProvider{}
}

// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package tokenledger holds build information. Version is set at link time:
//
//	go build -ldflags "-X gitlab.com/accumulatenetwork/tokenledger.Version=v1.0.0" ./cmd/tokenledger
package tokenledger

const unknownVersion = "version unknown"

var Version = unknownVersion

func IsVersionKnown() bool {
	return Version != unknownVersion
}

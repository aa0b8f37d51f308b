// Package ir provides the literal value model shared by every quiver package.
//
// This package contains value types and their encodings only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// value model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - IRValue is sealed; only the types in this package implement it
//   - Go natives enter the model through FromGo, never by ad-hoc conversion
//   - MarshalCanonical is the only encoding used for fingerprints and snapshots
//   - Map keys are always iterated through SortedKeys for determinism
package ir

// Package weights computes blended allocation weights for the heads of an
// ensemble from their performance profiles.
//
// # Reading Guide
//
// Start with these files to understand the pipeline, in data-flow order:
//   - types.go: HeadProfile, ScoreSet and Distribution
//   - ingest.go: raw metric extraction (accuracy, speed, confidence) per head
//   - normalize.go: min-max normalization and the degenerate-category policy
//   - aggregate.go: coefficient-weighted combination of normalized scores
//   - distribute.go: conversion to a probability distribution with uniform fallback
//   - pipeline.go: Compute, the pure entry point returning a Result and its Outcome
//
// # Architecture
//
// The weights package is I/O free. Reading profile files lives in
// weights/profile, writing artifacts and metrics textfiles in weights/artifact,
// and the optional run ledger in weights/history.
//
// A run is deterministic: the same profiles and Options always yield the
// same Distribution. Head iteration is in sorted name order everywhere so that
// floating-point summation order does not depend on map iteration.
package weights

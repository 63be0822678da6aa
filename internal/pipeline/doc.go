// Package pipeline runs one sort of a source tree into a target root.
//
// A run discovers every file under the source, reads capture metadata, and
// splits the photos into located, dated, and undated sets. Dated and undated
// photos go straight to the no-cluster area. Located photos are segmented
// into epochs; epochs large enough to cluster get a distance matrix and a
// label per photo, and every resulting group is copied to its folder before
// the next epoch starts. Per-file failures are collected into the Summary
// rather than aborting the run.
package pipeline

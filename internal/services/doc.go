// Package services defines shared utilities consumed by the sorting stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and epoch indexes for
//     logging.
//   - Structured error markers plus the Wrap helper so the CLI can classify a
//     failure (bad configuration vs unreadable input vs clustering failure)
//     without parsing messages.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services

// Package exifload finds image files under a source tree and reads their
// capture time and GPS position from embedded EXIF metadata.
//
// Files that are not images are skipped without producing a record. Images
// whose metadata is missing or malformed still produce a record; the affected
// fields are simply absent.
package exifload

// Package ingest reads order exports into memory.
//
// A Source yields a Table (header plus records) from a local CSV or XLSX
// file, or from an object in an S3-compatible bucket. Sources know nothing
// about order semantics; turning a Table into order lines is the job of
// analytics.Normalizer.
//
// Each Source also reports a Fingerprint (file size and mtime, or the
// object ETag) so callers can cache a normalized dataset until the export
// changes.
package ingest

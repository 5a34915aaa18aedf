// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides the slog capture handler used to assert
// on log output and the order-line fixtures (CSV and XLSX writers plus a
// small sample export) shared by the ingest, services, transport and
// command tests.
package shared

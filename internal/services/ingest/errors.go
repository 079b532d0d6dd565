package ingest

import "fmt"

// MaxFileSize bounds any spreadsheet accepted for parsing, uploaded or fetched.
const MaxFileSize = 50 * 1024 * 1024

// FormatError rejects input before any row is read: wrong MIME type, wrong
// extension, or an oversized payload.
type FormatError struct {
	Detail string
}

func (e *FormatError) Error() string {
	return e.Detail
}

// MalformedInputError rejects bytes that claim a supported format but cannot
// be parsed as one.
type MalformedInputError struct {
	Format string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("cannot parse %s input: %v", e.Format, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// FetchError covers everything that can go wrong retrieving a remote
// document: auth, not-found, transport. It is fatal to its run only.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RowError is a recovered per-row failure. It is aggregated into the batch's
// error list and serialized into the import ledger; it never aborts a batch.
type RowError struct {
	Row    RawRow `json:"row"`
	Reason string `json:"error"`
}

func missingFieldError(row RawRow, field string) *RowError {
	return &RowError{Row: row, Reason: "missing required field " + field}
}

func parseFieldError(row RawRow, field, value string) *RowError {
	return &RowError{Row: row, Reason: fmt.Sprintf("cannot parse %s value %q", field, value)}
}

// Package sanitizer normalizes free-text booking input before validation and
// storage.
//
// All functions are idempotent and never fail: invalid input yields an empty
// string or is dropped from a slice.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Links: trim and add https:// when no scheme is given; otherwise keep the link as entered
//   - Invitees: "Name <email>" with a lowercased email, or a bare lowercased email
//   - Slices: remove duplicates and empty values after normalization
package sanitizer

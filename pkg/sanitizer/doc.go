// Package sanitizer normalizes booking input before it is validated and stored.
//
// All functions are idempotent and never fail: invalid input comes back as an
// empty string, leaving it to validation to reject it.
//
// Normalization includes:
//   - Names and services: trim, collapse inner whitespace
//   - Emails: trim, lowercase the domain part
//   - Phone numbers: E.164 for North American numbers (+1XXXXXXXXXX)
package sanitizer

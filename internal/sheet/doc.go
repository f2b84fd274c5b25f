// Package sheet reads tabular invoice data from spreadsheets.
//
// A Reader turns one file into an ordered slice of Rows. Row 1 of the active
// sheet is the header row; every later non-blank row becomes one Row whose
// Fields are keyed by header text. Header text is trimmed and NFC-normalized
// so visually identical headers typed on different systems compare equal.
//
// Cell values are returned raw and untrimmed: numbers as their stored value
// (dates therefore arrive as Excel serial numbers unless the cell is text).
// Coercion is the caller's job.
package sheet

// Package schemas registers the built-in sheet schemas with the sheet
// registry. Import this package for its side effects to make them
// available by key.
package schemas

// Package export finalizes encode parameters and writes the output container
// file. The destination extension picks the container; codec choices are
// checked against a fixed compatibility table before any encoding starts.
// Clips handed to Export are released on every exit path, and failed or
// cancelled encodes never leave a partial file behind.
package export

// Package publishing implements the final workflow stage. Items marked for
// publication are mapped to a publicly resolvable media URL and handed to the
// platform publisher; all other items complete with their render on disk.
package publishing

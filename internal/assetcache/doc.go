// Package assetcache stores downloaded source media on disk keyed by a
// stable hash of the platform media id. The cache is append-only: the first
// successful download of an id wins and later writers are discarded, so
// concurrent jobs can share it without coordination beyond the filesystem.
package assetcache

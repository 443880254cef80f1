package library

import "errors"

// ErrNoRoot means no root folder was granted yet, there is nothing to scan.
var ErrNoRoot = errors.New("no root folder selected")

// ErrScanFailed fails a whole scan, the persisted library stays untouched.
var ErrScanFailed = errors.New("scan failed, library unchanged")

// ErrSyncFailed means the merge could not be committed, the previously
// persisted library remains authoritative.
var ErrSyncFailed = errors.New("library update failed, library unchanged")

// ErrNotFound is returned for lookups of ids without a record.
var ErrNotFound = errors.New("not found")

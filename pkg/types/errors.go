package types

import "errors"

// Lookup errors.
var (
	ErrNotFound       = errors.New("asset not found")
	ErrParentNotFound = errors.New("parent asset not found")
)

// Tree mutation errors.
var (
	ErrInvalidMove     = errors.New("cannot move a node under itself or its descendant")
	ErrParentDetached  = errors.New("parent asset is detached from the tree")
	ErrRootImmutable   = errors.New("root asset cannot be relocated")
	ErrInvalidPosition = errors.New("unsupported tree position")
	ErrTreeCorrupt     = errors.New("asset tree is corrupt")
)

// Backup and seed errors.
var (
	ErrSourceTableMissing = errors.New("source table does not exist")
	ErrBackupMissing      = errors.New("backup table does not exist")
	ErrSeedUnreadable     = errors.New("seed script cannot be read")
)

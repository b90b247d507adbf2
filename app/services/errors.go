package services

import "errors"

var (
	// ErrAlreadyExists signals a (name, owner) creation conflict.
	ErrAlreadyExists = errors.New("directory already exists")

	// ErrNotAChild signals a navigation or deletion target that is not a
	// direct child of the current directory anymore.
	ErrNotAChild = errors.New("not a child of the current directory")

	// ErrInvariantViolation is an internal fault: a non-root directory
	// with no resolvable parent. Callers recover by resetting navigation
	// to the owner's root.
	ErrInvariantViolation = errors.New("tree invariant violated")

	// ErrDirectoryGone signals a mutation against a directory that was
	// deleted after the caller resolved it. Mutations re-verify their
	// target under the owner lock, so a stale handle fails instead of
	// inserting rows that reference a deleted parent.
	ErrDirectoryGone = errors.New("directory no longer exists")

	// ErrAlreadyAttached signals an upload whose reference is already
	// stored under a different directory. References are global, so the
	// existing entry stays where it is.
	ErrAlreadyAttached = errors.New("media entry already attached to another directory")
)

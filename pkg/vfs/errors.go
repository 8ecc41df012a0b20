package vfs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when opening a file that does not exist.
	ErrNotFound = fs.ErrNotExist

	// ErrIsDirectory is returned when opening a directory. It matches
	// ErrNotFound with errors.Is.
	ErrIsDirectory = fmt.Errorf("is a directory: %w", fs.ErrNotExist)

	// ErrInvalidArgument is returned for a missing glob or a glob listing
	// requested on something that is not a directory.
	ErrInvalidArgument = fs.ErrInvalid

	// ErrIOFailure is returned when the backing storage cannot be read.
	ErrIOFailure = errors.New("storage unreadable")

	// ErrWriteFailure is returned when building backing storage fails.
	ErrWriteFailure = errors.New("storage write failed")
)

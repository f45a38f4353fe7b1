// Package apperr holds the sentinel errors shared across the importer.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrRootMissing       = errors.New("root folder does not exist")
	ErrNotebookMissing   = errors.New("notebook folder does not exist")
	ErrResourcesMissing  = errors.New("resources folder does not exist")
	ErrPageCreate        = errors.New("page creation failed")
	ErrNotImage          = errors.New("resource is not an image")
	ErrInvalidCredential = errors.New("invalid credentials")
)

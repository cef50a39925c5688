package storage

import "errors"

// Sentinel errors the chain store wraps with fmt.Errorf's %w, so
// callers can distinguish failure classes with errors.Is.
var (
	// ErrStoreIO is returned when the underlying key-value engine
	// itself fails (disk error, corrupted database, closed handle).
	ErrStoreIO = errors.New("storage: key-value engine failure")

	// ErrDecode is returned when stored bytes fail to parse back into
	// a block or piece of consensus state.
	ErrDecode = errors.New("storage: decode failure")

	// ErrNotFound is returned when a requested block, by hash or
	// height, does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidBlock is returned when a candidate block fails any
	// structural or consensus check during append.
	ErrInvalidBlock = errors.New("storage: invalid block")
)

package mmap

import (
	"errors"
	"fmt"

	"github.com/gorustyt/mmaps/detour"
)

// Recoverable failures. Call sites wrap these with region, coordinate and
// path context; test with errors.Is.
var (
	ErrIO                = errors.New("mmap: file unreadable")
	ErrMalformedData     = errors.New("mmap: malformed data")
	ErrVersionMismatch   = errors.New("mmap: version mismatch")
	ErrInitialization    = errors.New("mmap: initialization failed")
	ErrInsertion         = errors.New("mmap: tile insertion failed")
	ErrRegionNotLoaded   = errors.New("mmap: region not loaded")
	ErrTileAlreadyLoaded = errors.New("mmap: tile already loaded")
	ErrTileNotLoaded     = errors.New("mmap: tile not loaded")
	ErrQueryNotLoaded    = errors.New("mmap: query handle not loaded")
	ErrInvalidCoordinate = errors.New("mmap: tile coordinate out of range")
)

// ErrTileRemoval is the cause carried by every FatalError.
var ErrTileRemoval = errors.New("mmap: tile removal failed")

// FatalError reports a tile that could not be removed from its mesh. The
// mesh and the registry can no longer be trusted; callers must stop the
// process (the default fatal handler already does).
type FatalError struct {
	Region RegionID
	Coord  TileCoord
	Status detour.DtStatus
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%v: region %03d tile [%02d, %02d] status %v", ErrTileRemoval, e.Region, e.Coord.X, e.Coord.Y, e.Status)
}

func (e *FatalError) Unwrap() error { return ErrTileRemoval }

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

package detour

import (
	"errors"
	"fmt"
)

type DtStatus uint32

const (
	// High level status.
	DT_FAILURE     DtStatus = 1 << 31 // Operation failed.
	DT_SUCCESS     DtStatus = 1 << 30 // Operation succeed.
	DT_IN_PROGRESS DtStatus = 1 << 29 // Operation still in progress.

	// Detail information for status.
	DT_STATUS_DETAIL_MASK DtStatus = 0x0ffffff
	DT_WRONG_MAGIC        DtStatus = 1 << 0 // Input data is not recognized.
	DT_WRONG_VERSION      DtStatus = 1 << 1 // Input data is in wrong version.
	DT_OUT_OF_MEMORY      DtStatus = 1 << 2 // Operation ran out of memory.
	DT_INVALID_PARAM      DtStatus = 1 << 3 // An input parameter was invalid.
	DT_BUFFER_TOO_SMALL   DtStatus = 1 << 4 // Result buffer for the query was too small to store all results.
	DT_OUT_OF_NODES       DtStatus = 1 << 5 // Query ran out of nodes during search.
	DT_PARTIAL_RESULT     DtStatus = 1 << 6 // Query did not reach the end location, returning best guess.
	DT_ALREADY_OCCUPIED   DtStatus = 1 << 7 // A tile has already been assigned to the given x,y coordinate
)

var ErrFailure = errors.New("operation failed")
var ErrWrongMagic = fmt.Errorf("%w: input data is not recognized", ErrFailure)
var ErrWrongVersion = fmt.Errorf("%w: input data is in wrong version", ErrFailure)
var ErrOutOfMemory = fmt.Errorf("%w: operation ran out of memory", ErrFailure)
var ErrInvalidParam = fmt.Errorf("%w: an input parameter was invalid", ErrFailure)
var ErrAlreadyOccupied = fmt.Errorf("%w: a tile is already assigned to the location", ErrFailure)

// Returns true of status is success.
func (status DtStatus) DtStatusSucceed() bool {
	return (status & DT_SUCCESS) != 0
}

// Returns true of status is failure.
func (status DtStatus) DtStatusFailed() bool {
	return (status & DT_FAILURE) != 0
}

// Returns true of status is in progress.
func (status DtStatus) DtStatusInProgress() bool {
	return (status & DT_IN_PROGRESS) != 0
}

// Returns true if specific detail is set.
func (status DtStatus) DtStatusDetail(detail DtStatus) bool {
	return (status & detail) != 0
}

// Err converts a failed status into the matching sentinel error, nil otherwise.
func (status DtStatus) Err() error {
	if !status.DtStatusFailed() {
		return nil
	}
	switch {
	case status.DtStatusDetail(DT_WRONG_MAGIC):
		return ErrWrongMagic
	case status.DtStatusDetail(DT_WRONG_VERSION):
		return ErrWrongVersion
	case status.DtStatusDetail(DT_OUT_OF_MEMORY):
		return ErrOutOfMemory
	case status.DtStatusDetail(DT_INVALID_PARAM):
		return ErrInvalidParam
	case status.DtStatusDetail(DT_ALREADY_OCCUPIED):
		return ErrAlreadyOccupied
	}
	return ErrFailure
}

func (status DtStatus) String() string {
	var s string
	switch {
	case status.DtStatusFailed():
		s = "failure"
	case status.DtStatusInProgress():
		s = "in progress"
	case status.DtStatusSucceed():
		s = "success"
	default:
		s = "unknown"
	}
	if detail := status & DT_STATUS_DETAIL_MASK; detail != 0 {
		s = fmt.Sprintf("%s(0x%x)", s, uint32(detail))
	}
	return s
}

package reference

import "errors"

// The messages are shown to API clients verbatim.
var (
	ErrDoctorNotFound    = errors.New("Doctor not found")
	ErrDoctorNotInLab    = errors.New("Doctor is not associated with your lab")
	ErrProductNotFound   = errors.New("Product not found")
	ErrDirectoryDown     = errors.New("directory service unavailable")
	ErrDirectoryRejected = errors.New("directory service rejected the caller")
)

// IsInvalidReference reports whether err means a referenced doctor or
// product cannot be used by the caller's lab.
func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrDoctorNotFound) ||
		errors.Is(err, ErrDoctorNotInLab) ||
		errors.Is(err, ErrProductNotFound)
}

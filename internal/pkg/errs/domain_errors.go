package errs

import cr "github.com/cockroachdb/errors"

// Error kinds shared by every layer. Lower layers Mark their errors with one
// of these; the HTTP layer maps them to status codes.
var (
	ErrInvalidInput       = cr.New("invalid input")
	ErrConflict           = cr.New("reservation conflict")
	ErrNotFound           = cr.New("reservation not found")
	ErrStorageUnavailable = cr.New("storage unavailable")
)

// KindOf names the taxonomy kind of err, for logs and metrics labels.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case cr.Is(err, ErrInvalidInput):
		return "invalid_input"
	case cr.Is(err, ErrConflict):
		return "conflict"
	case cr.Is(err, ErrNotFound):
		return "not_found"
	case cr.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "internal"
	}
}

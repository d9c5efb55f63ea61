package services

import (
	"errors"
	"net/http"

	"github.com/cppla/wellbeing/analytics"
)

var (
	ErrInvalidDate        = errors.New("date must be a valid day in YYYY-MM-DD format")
	ErrInvalidScore       = errors.New("score must be between 1 and 5")
	ErrNoteTooLong        = errors.New("note must be at most 2000 characters")
	ErrInvalidPerPage     = errors.New("per_page must be between 1 and 100")
	ErrInvalidCutoff      = errors.New("cutoff must be between 1 and 5")
	ErrDayConflict        = errors.New("a check-in already exists for this day")
	ErrCheckInNotFound    = errors.New("check-in not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrReservedEmail      = errors.New("email domain is reserved for demo sessions")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotDemoUser        = errors.New("not a demo session")
)

// Status is the HTTP status and envelope code an error maps to.
type Status struct {
	HTTP int
	Code int
}

var ErrorMap = map[error]Status{
	ErrInvalidDate:            {http.StatusBadRequest, 40020},
	analytics.ErrInvalidRange: {http.StatusBadRequest, 40021},
	ErrInvalidScore:           {http.StatusBadRequest, 40022},
	ErrNoteTooLong:            {http.StatusBadRequest, 40023},
	ErrInvalidPerPage:         {http.StatusBadRequest, 40024},
	ErrReservedEmail:          {http.StatusBadRequest, 40025},
	ErrInvalidCutoff:          {http.StatusBadRequest, 40026},
	ErrInvalidCredentials:     {http.StatusUnauthorized, 40106},
	ErrNotDemoUser:            {http.StatusForbidden, 40301},
	ErrCheckInNotFound:        {http.StatusNotFound, 40420},
	ErrUserNotFound:           {http.StatusNotFound, 40401},
	ErrDayConflict:            {http.StatusConflict, 40930},
	ErrEmailTaken:             {http.StatusConflict, 40901},
}

// ErrorStatus resolves err, or anything it wraps, against ErrorMap. Unknown
// errors map to 500 with ok set to false.
func ErrorStatus(err error) (Status, bool) {
	for target, status := range ErrorMap {
		if errors.Is(err, target) {
			return status, true
		}
	}
	return Status{HTTP: http.StatusInternalServerError, Code: 50000}, false
}

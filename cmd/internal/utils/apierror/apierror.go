package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON body returned for any failed request. Code is the
// HTTP status to respond with; the value itself marshals to the body.
type ErrorResponse interface {
	Code() int
}

type simpleError struct {
	status  int
	Message string `json:"message"`
}

func (e *simpleError) Code() int { return e.status }

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{status: code, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, expected string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", name, expected))
}

type validationError struct {
	status  int
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

func (e *validationError) Code() int { return e.status }

// FromValidationError turns a validator.v10 error into a 400 response listing
// the offending fields.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]string, len(verrs))
	for i, ferr := range verrs {
		fields[i] = fmt.Sprintf("%s: failed '%s' validation", ferr.Field(), ferr.Tag())
	}
	return &validationError{
		status:  http.StatusBadRequest,
		Message: "Request body failed validation",
		Fields:  fields,
	}
}

// Transport and user/IdP errors.
var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Could not understand request body")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Missing or invalid authorization token")

	UserAlreadyExistsError    = NewSimple(http.StatusConflict, "A user with this email already exists")
	UsernameTakenError        = NewSimple(http.StatusConflict, "This username is already taken")
	UserAlreadyConfirmedError = NewSimple(http.StatusConflict, "User is already confirmed")

	IDPInvalidPasswordError     = NewSimple(http.StatusBadRequest, "Password does not meet the security requirements")
	IDPExistingEmailError       = NewSimple(http.StatusConflict, "A user with this email already exists")
	IDPUserNotFoundError        = NewSimple(http.StatusNotFound, "No user registered with this email")
	IDPUserNotConfirmedError    = NewSimple(http.StatusForbidden, "User has not confirmed their email yet")
	IDPCredentialsMismatchError = NewSimple(http.StatusUnauthorized, "Email and password do not match")
	IDPConfirmCodeMismatchError = NewSimple(http.StatusBadRequest, "Confirmation code does not match")
	IDPConfirmCodeExpiredError  = NewSimple(http.StatusBadRequest, "Confirmation code has expired")
)

// Calendar and booking errors.
var (
	CalendarAlreadyExistsError = NewSimple(http.StatusConflict, "You already have a calendar")
	CalendarNotFoundError      = NewSimple(http.StatusNotFound, "Calendar not found")
	NotCalendarOwnerError      = NewSimple(http.StatusForbidden, "Only the calendar owner can do this")
	InvalidAvailabilityError   = NewSimple(http.StatusBadRequest, "Availability window is out of range")

	SelfBookingError         = NewSimple(http.StatusBadRequest, "You cannot book a meeting with yourself.")
	InvalidIntervalError     = NewSimple(http.StatusBadRequest, "Meeting must start before it ends")
	InvalidDateError         = NewSimple(http.StatusBadRequest, "Date does not exist")
	OutsideAvailabilityError = NewSimple(http.StatusUnprocessableEntity, "Requested slot is outside the calendar's availability")
	SlotTakenError           = NewSimple(http.StatusConflict, "Requested slot overlaps an existing meeting")
	MeetingNotFoundError     = NewSimple(http.StatusNotFound, "No meeting found at the given date and times")
	NotMeetingAttendeeError  = NewSimple(http.StatusForbidden, "Only the attendee who booked the meeting can cancel it")
)

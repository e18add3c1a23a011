package service

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"meetcal/cmd/internal/domain/entity"
	"meetcal/cmd/internal/events"
	"meetcal/cmd/internal/schedule"
	"meetcal/cmd/internal/utils"
	"meetcal/cmd/internal/utils/apierror"
)

type MeetingRepository interface {
	FindByDate(calendarID, year, month, day int) ([]*entity.Meeting, error)
	FindExact(calendarID, year, month, day, startSeconds, endSeconds int) (*entity.Meeting, error)
	Save(meeting *entity.Meeting) error
}

type MeetingRequest struct {
	Year  int    `json:"year" validate:"required,min=1,max=9999"`
	Month int    `json:"month" validate:"required,min=1,max=12"`
	Day   int    `json:"day" validate:"required,min=1,max=31"`
	Start string `json:"start" validate:"required,clocktime"`
	End   string `json:"end" validate:"required,clocktime"`
}

type MeetingResponse struct {
	Attendee string `json:"attendee"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type DefaultMeetingService struct {
	MeetingRepo  MeetingRepository
	CalendarRepo CalendarRepository
	UserRepo     UserRepository
	Validate     *validator.Validate
	Bus          EventBus

	// One mutex per calendar: booking and cancellation against the same
	// calendar are serialized so that two overlapping booking attempts can
	// never both pass the conflict check. Calendars stay independent.
	locks sync.Map
}

func NewMeetingService(meetingRepo MeetingRepository, calRepo CalendarRepository, userRepo UserRepository, validate *validator.Validate, bus EventBus) *DefaultMeetingService {
	return &DefaultMeetingService{
		MeetingRepo:  meetingRepo,
		CalendarRepo: calRepo,
		UserRepo:     userRepo,
		Validate:     validate,
		Bus:          bus,
	}
}

// GetMeetings lists the live meetings on one date of a calendar, in the
// order they were booked. A date with no meetings yields an empty list.
func (s *DefaultMeetingService) GetMeetings(username string, year, month, day int) ([]*MeetingResponse, apierror.ErrorResponse) {
	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return nil, apierr
	}

	date := schedule.Date{Year: year, Month: month, Day: day}
	if err := date.Validate(); err != nil {
		return nil, apierror.InvalidDateError
	}

	meetings, err := s.MeetingRepo.FindByDate(cal.ID, year, month, day)
	if err != nil {
		log.Errorf("failed to list meetings of calendar %d on %04d-%02d-%02d: %v", cal.ID, year, month, day, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*MeetingResponse, len(meetings))
	for i, m := range meetings {
		response[i] = toMeetingResponse(m)
	}
	return response, nil
}

// BookMeeting validates the requested slot against the owner's availability
// and the date's existing meetings, then appends it. Validation fully
// precedes the write; a failed booking changes nothing.
func (s *DefaultMeetingService) BookMeeting(username string, req *MeetingRequest, subId string) (*MeetingResponse, apierror.ErrorResponse) {
	caller, apierr := s.fetchCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return nil, apierr
	}

	date, start, end, apierr := s.parseSlot(req)
	if apierr != nil {
		return nil, apierr
	}

	lock := s.lockFor(cal.ID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.MeetingRepo.FindByDate(cal.ID, date.Year, date.Month, date.Day)
	if err != nil {
		log.Errorf("failed to load meetings of calendar %d for conflict check: %v", cal.ID, err)
		return nil, apierror.InternalServerError
	}

	booked := make([]schedule.Interval, len(existing))
	for i, m := range existing {
		booked[i] = schedule.Interval{StartSeconds: m.StartSeconds, EndSeconds: m.EndSeconds}
	}

	checkErr := schedule.CheckBooking(cal.OwnerID, caller.ID, toScheduleAvailability(cal.Availability), date, start, end, booked)
	if checkErr != nil {
		return nil, bookingError(checkErr)
	}

	meeting := &entity.Meeting{
		CalendarID:   cal.ID,
		Year:         date.Year,
		Month:        date.Month,
		Day:          date.Day,
		StartSeconds: start.SecondsOfDay(),
		EndSeconds:   end.SecondsOfDay(),
		AttendeeID:   caller.ID,
		IsDeleted:    false,
		CreatedAt:    utils.NowUTC(),
	}

	if err := s.MeetingRepo.Save(meeting); err != nil {
		log.Errorf("failed to save meeting on calendar %d: %v", cal.ID, err)
		return nil, apierror.InternalServerError
	}

	s.publishMeetingEvent(events.TypeMeetingBooked, meeting, caller.ID)
	meeting.Attendee = *caller
	return toMeetingResponse(meeting), nil
}

// CancelMeeting removes the meeting identified by the exact (date, start,
// end) tuple. Only the attendee who booked it may cancel; the row is
// soft-deleted so the slot becomes bookable again immediately.
func (s *DefaultMeetingService) CancelMeeting(username string, req *MeetingRequest, subId string) apierror.ErrorResponse {
	caller, apierr := s.fetchCaller(subId)
	if apierr != nil {
		return apierr
	}

	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return apierr
	}

	date, start, end, apierr := s.parseSlot(req)
	if apierr != nil {
		return apierr
	}

	lock := s.lockFor(cal.ID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.MeetingRepo.FindExact(cal.ID, date.Year, date.Month, date.Day, start.SecondsOfDay(), end.SecondsOfDay())
	if err != nil {
		log.Errorf("failed to look up meeting on calendar %d: %v", cal.ID, err)
		return apierror.InternalServerError
	}

	attendeeID := 0
	if meeting != nil {
		attendeeID = meeting.AttendeeID
	}
	if checkErr := schedule.CheckCancellation(caller.ID, attendeeID, meeting != nil); checkErr != nil {
		return bookingError(checkErr)
	}

	meeting.IsDeleted = true
	if err := s.MeetingRepo.Save(meeting); err != nil {
		log.Errorf("failed to cancel meeting %d on calendar %d: %v", meeting.ID, cal.ID, err)
		return apierror.InternalServerError
	}

	s.publishMeetingEvent(events.TypeMeetingCancelled, meeting, caller.ID)
	return nil
}

func (s *DefaultMeetingService) lockFor(calendarID int) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(calendarID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *DefaultMeetingService) parseSlot(req *MeetingRequest) (schedule.Date, schedule.TimeOfDay, schedule.TimeOfDay, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return schedule.Date{}, schedule.TimeOfDay{}, schedule.TimeOfDay{}, apierror.FromValidationError(err)
	}

	date := schedule.Date{Year: req.Year, Month: req.Month, Day: req.Day}
	if err := date.Validate(); err != nil {
		return schedule.Date{}, schedule.TimeOfDay{}, schedule.TimeOfDay{}, apierror.InvalidDateError
	}

	// The clocktime validator already vouched for the format.
	start, _ := schedule.ParseTimeOfDay(req.Start)
	end, _ := schedule.ParseTimeOfDay(req.End)
	return date, start, end, nil
}

func (s *DefaultMeetingService) fetchCaller(subId string) (*entity.User, apierror.ErrorResponse) {
	caller, err := s.UserRepo.FindBySub(subId)
	if err != nil {
		log.Errorf("failed to find user (%s) by sub: %v", subId, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return caller, nil
}

func (s *DefaultMeetingService) fetchCalendar(username string) (*entity.Calendar, apierror.ErrorResponse) {
	cal, err := s.CalendarRepo.FindByOwnerUsername(username)
	if err != nil {
		log.Errorf("failed to look up calendar of %s: %v", username, err)
		return nil, apierror.InternalServerError
	}
	if cal == nil {
		return nil, apierror.CalendarNotFoundError
	}
	return cal, nil
}

func (s *DefaultMeetingService) publishMeetingEvent(typ events.Type, m *entity.Meeting, actorID int) {
	s.Bus.Publish(events.Event{
		Type:       typ,
		CalendarID: m.CalendarID,
		ActorID:    actorID,
		Year:       m.Year,
		Month:      m.Month,
		Day:        m.Day,
		Start:      schedule.FromSecondsOfDay(m.StartSeconds).String(),
		End:        schedule.FromSecondsOfDay(m.EndSeconds).String(),
	})
}

func bookingError(err error) apierror.ErrorResponse {
	switch {
	case errors.Is(err, schedule.ErrSelfBooking):
		return apierror.SelfBookingError
	case errors.Is(err, schedule.ErrInvalidInterval):
		return apierror.InvalidIntervalError
	case errors.Is(err, schedule.ErrOutsideAvailability):
		return apierror.OutsideAvailabilityError
	case errors.Is(err, schedule.ErrOverlap):
		return apierror.SlotTakenError
	case errors.Is(err, schedule.ErrMeetingNotFound):
		return apierror.MeetingNotFoundError
	case errors.Is(err, schedule.ErrNotAttendee):
		return apierror.NotMeetingAttendeeError
	default:
		return apierror.InternalServerError
	}
}

func toMeetingResponse(m *entity.Meeting) *MeetingResponse {
	return &MeetingResponse{
		Attendee: m.Attendee.Username,
		Start:    schedule.FromSecondsOfDay(m.StartSeconds).String(),
		End:      schedule.FromSecondsOfDay(m.EndSeconds).String(),
	}
}

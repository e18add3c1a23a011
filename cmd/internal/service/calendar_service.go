package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"meetcal/cmd/internal/domain/entity"
	"meetcal/cmd/internal/events"
	"meetcal/cmd/internal/schedule"
	"meetcal/cmd/internal/utils"
	"meetcal/cmd/internal/utils/apierror"
)

type CalendarRepository interface {
	FindByOwnerID(ownerID int) (*entity.Calendar, error)
	FindByOwnerUsername(username string) (*entity.Calendar, error)
	ExistsByOwnerID(ownerID int) (bool, error)
	Save(cal *entity.Calendar) error
}

type EventBus interface {
	Publish(e events.Event)
}

type ProfileRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=2,max=80"`
	Picture     string `json:"picture" validate:"max=2048"`
	URL         string `json:"url" validate:"max=2048"`
	Description string `json:"description" validate:"max=512"`
}

type AvailabilityRequest struct {
	AvailableDays         uint8  `json:"available_days" validate:"max=127"`
	Location              string `json:"location" validate:"max=256"`
	TimeZone              string `json:"time_zone" validate:"max=64"`
	EarliestTimeInMinutes int    `json:"earliest_time_in_minutes" validate:"min=0,max=1439"`
	MinutesAvailable      int    `json:"minutes_available" validate:"min=0"`
}

type CreateCalendarRequest struct {
	Profile      ProfileRequest      `json:"profile"`
	Availability AvailabilityRequest `json:"availability"`
}

type ProfileResponse struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Picture     string `json:"picture"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type AvailabilityResponse struct {
	AvailableDays         uint8  `json:"available_days"`
	Location              string `json:"location"`
	TimeZone              string `json:"time_zone"`
	EarliestTimeInMinutes int    `json:"earliest_time_in_minutes"`
	MinutesAvailable      int    `json:"minutes_available"`
}

type CalendarResponse struct {
	ID           int                   `json:"id"`
	Owner        string                `json:"owner"`
	Profile      *ProfileResponse      `json:"profile"`
	Availability *AvailabilityResponse `json:"availability"`
	CreatedAt    string                `json:"created_at"`
}

type DefaultCalendarService struct {
	CalendarRepo CalendarRepository
	UserRepo     UserRepository
	Validate     *validator.Validate
	Bus          EventBus
}

func NewCalendarService(calRepo CalendarRepository, userRepo UserRepository, validate *validator.Validate, bus EventBus) *DefaultCalendarService {
	return &DefaultCalendarService{CalendarRepo: calRepo, UserRepo: userRepo, Validate: validate, Bus: bus}
}

// CreateCalendar sets up the caller's calendar: one per owner, ever. The
// profile and availability arrive together and are stored as one row.
func (s *DefaultCalendarService) CreateCalendar(req *CreateCalendarRequest, subId string) (*CalendarResponse, apierror.ErrorResponse) {
	caller, apierr := s.fetchCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(&req.Profile)
	utils.Sanitize(&req.Availability)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if !toScheduleAvailability(toAvailability(&req.Availability)).Valid() {
		return nil, apierror.InvalidAvailabilityError
	}

	exists, err := s.CalendarRepo.ExistsByOwnerID(caller.ID)
	if err != nil {
		log.Errorf("failed to check for an existing calendar of user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	if exists {
		return nil, apierror.CalendarAlreadyExistsError
	}

	now := utils.NowUTC()
	cal := &entity.Calendar{
		OwnerID: caller.ID,
		Profile: entity.Profile{
			Email:       req.Profile.Email,
			Username:    req.Profile.Username,
			Picture:     req.Profile.Picture,
			URL:         req.Profile.URL,
			Description: req.Profile.Description,
		},
		Availability: toAvailability(&req.Availability),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.CalendarRepo.Save(cal); err != nil {
		log.Errorf("failed to create calendar for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	s.Bus.Publish(events.Event{
		Type:       events.TypeCalendarCreated,
		CalendarID: cal.ID,
		ActorID:    caller.ID,
	})
	return toCalendarResponse(cal, caller.Username), nil
}

func (s *DefaultCalendarService) GetCalendar(username string) (*CalendarResponse, apierror.ErrorResponse) {
	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return nil, apierr
	}
	return toCalendarResponse(cal, username), nil
}

func (s *DefaultCalendarService) GetAvailability(username string) (*AvailabilityResponse, apierror.ErrorResponse) {
	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return nil, apierr
	}
	return toAvailabilityResponse(&cal.Availability), nil
}

// SetAvailability replaces the stored availability wholesale. Owner only;
// there is no partial merge.
func (s *DefaultCalendarService) SetAvailability(username string, req *AvailabilityRequest, subId string) (*AvailabilityResponse, apierror.ErrorResponse) {
	caller, apierr := s.fetchCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	cal, apierr := s.fetchCalendar(username)
	if apierr != nil {
		return nil, apierr
	}

	if cal.OwnerID != caller.ID {
		return nil, apierror.NotCalendarOwnerError
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	avail := toAvailability(req)
	if !toScheduleAvailability(avail).Valid() {
		return nil, apierror.InvalidAvailabilityError
	}

	cal.Availability = avail
	cal.UpdatedAt = utils.NowUTC()
	if err := s.CalendarRepo.Save(cal); err != nil {
		log.Errorf("failed to update availability of calendar %d: %v", cal.ID, err)
		return nil, apierror.InternalServerError
	}
	return toAvailabilityResponse(&cal.Availability), nil
}

func (s *DefaultCalendarService) fetchCaller(subId string) (*entity.User, apierror.ErrorResponse) {
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

func (s *DefaultCalendarService) fetchCalendar(username string) (*entity.Calendar, apierror.ErrorResponse) {
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

func toAvailability(req *AvailabilityRequest) entity.Availability {
	return entity.Availability{
		AvailableDays:         req.AvailableDays,
		Location:              req.Location,
		TimeZone:              req.TimeZone,
		EarliestTimeInMinutes: req.EarliestTimeInMinutes,
		MinutesAvailable:      req.MinutesAvailable,
	}
}

func toAvailabilityResponse(a *entity.Availability) *AvailabilityResponse {
	return &AvailabilityResponse{
		AvailableDays:         a.AvailableDays,
		Location:              a.Location,
		TimeZone:              a.TimeZone,
		EarliestTimeInMinutes: a.EarliestTimeInMinutes,
		MinutesAvailable:      a.MinutesAvailable,
	}
}

func toCalendarResponse(cal *entity.Calendar, owner string) *CalendarResponse {
	return &CalendarResponse{
		ID:    cal.ID,
		Owner: owner,
		Profile: &ProfileResponse{
			Email:       cal.Profile.Email,
			Username:    cal.Profile.Username,
			Picture:     cal.Profile.Picture,
			URL:         cal.Profile.URL,
			Description: cal.Profile.Description,
		},
		Availability: toAvailabilityResponse(&cal.Availability),
		CreatedAt:    utils.FormatEpoch(cal.CreatedAt),
	}
}

func toScheduleAvailability(a entity.Availability) schedule.Availability {
	return schedule.Availability{
		Days:            schedule.Days(a.AvailableDays),
		EarliestMinutes: a.EarliestTimeInMinutes,
		DurationMinutes: a.MinutesAvailable,
	}
}

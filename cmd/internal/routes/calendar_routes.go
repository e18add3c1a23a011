package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"meetcal/cmd/internal/service"
	"meetcal/cmd/internal/utils"
	"meetcal/cmd/internal/utils/apierror"
)

type CalendarService interface {
	CreateCalendar(req *service.CreateCalendarRequest, subId string) (*service.CalendarResponse, apierror.ErrorResponse)
	GetCalendar(username string) (*service.CalendarResponse, apierror.ErrorResponse)
	GetAvailability(username string) (*service.AvailabilityResponse, apierror.ErrorResponse)
	SetAvailability(username string, req *service.AvailabilityRequest, subId string) (*service.AvailabilityResponse, apierror.ErrorResponse)
}

type DefaultCalendarRoute struct {
	CalendarService CalendarService
}

func NewCalendarDefault(calService CalendarService) *DefaultCalendarRoute {
	return &DefaultCalendarRoute{CalendarService: calService}
}

func (r *DefaultCalendarRoute) CreateCalendar(c echo.Context) error {
	var req service.CreateCalendarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	cal, apierr := r.CalendarService.CreateCalendar(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, cal)
}

func (r *DefaultCalendarRoute) GetCalendar(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	cal, apierr := r.CalendarService.GetCalendar(username)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, cal)
}

func (r *DefaultCalendarRoute) GetAvailability(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	avail, apierr := r.CalendarService.GetAvailability(username)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, avail)
}

func (r *DefaultCalendarRoute) SetAvailability(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	avail, apierr := r.CalendarService.SetAvailability(username, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, avail)
}

func ownerParam(c echo.Context) (string, apierror.ErrorResponse) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return "", apierror.NewMissingParamError("username")
	}
	return username, nil
}

package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"meetcal/cmd/internal/service"
	"meetcal/cmd/internal/utils"
	"meetcal/cmd/internal/utils/apierror"
)

type MeetingService interface {
	GetMeetings(username string, year, month, day int) ([]*service.MeetingResponse, apierror.ErrorResponse)
	BookMeeting(username string, req *service.MeetingRequest, subId string) (*service.MeetingResponse, apierror.ErrorResponse)
	CancelMeeting(username string, req *service.MeetingRequest, subId string) apierror.ErrorResponse
}

type DefaultMeetingRoute struct {
	MeetingService MeetingService
}

func NewMeetingDefault(meetingService MeetingService) *DefaultMeetingRoute {
	return &DefaultMeetingRoute{MeetingService: meetingService}
}

func (r *DefaultMeetingRoute) GetMeetings(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	year, apierr := intQueryParam(c, "year")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	month, apierr := intQueryParam(c, "month")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	day, apierr := intQueryParam(c, "day")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	meetings, apierr := r.MeetingService.GetMeetings(username, year, month, day)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"meetings": meetings}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultMeetingRoute) BookMeeting(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.MeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	meeting, apierr := r.MeetingService.BookMeeting(username, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, meeting)
}

func (r *DefaultMeetingRoute) CancelMeeting(c echo.Context) error {
	username, apierr := ownerParam(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.MeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	apierr = r.MeetingService.CancelMeeting(username, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func intQueryParam(c echo.Context, name string) (int, apierror.ErrorResponse) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError(name, "int32")
	}
	return n, nil
}

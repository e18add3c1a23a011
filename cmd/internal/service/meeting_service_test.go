package service

import (
	"sync"
	"testing"

	"meetcal/cmd/internal/domain/entity"
	"meetcal/cmd/internal/events"
	"meetcal/cmd/internal/schedule"
	"meetcal/cmd/internal/utils/apierror"
)

const (
	aliceSub = "sub-alice"
	bobSub   = "sub-bob"
)

type meetingFixture struct {
	users    *fakeUserRepo
	cals     *fakeCalendarRepo
	meetings *fakeMeetingRepo
	bus      *fakeBus
	svc      *DefaultMeetingService
}

// newMeetingFixture sets up alice (attendee) and bob, who owns a calendar
// available Sunday through Thursday, 09:30 to 17:30.
func newMeetingFixture(t *testing.T) *meetingFixture {
	t.Helper()

	users := &fakeUserRepo{users: []*entity.User{
		{ID: 1, SubUUID: aliceSub, Username: "alicep", Email: "alice@mail.com"},
		{ID: 2, SubUUID: bobSub, Username: "bobslob", Email: "bob@mail.com"},
	}}
	cals := &fakeCalendarRepo{users: users, cals: []*entity.Calendar{{
		ID:      1,
		OwnerID: 2,
		Availability: entity.Availability{
			AvailableDays:         uint8(schedule.Sunday | schedule.Monday | schedule.Tuesday | schedule.Wednesday | schedule.Thursday),
			TimeZone:              "Australia/Sydney",
			EarliestTimeInMinutes: 9*60 + 30,
			MinutesAvailable:      8 * 60,
		},
	}}}
	meetings := &fakeMeetingRepo{users: users}
	bus := &fakeBus{}

	return &meetingFixture{
		users:    users,
		cals:     cals,
		meetings: meetings,
		bus:      bus,
		svc:      NewMeetingService(meetings, cals, users, newTestValidate(t), bus),
	}
}

// sundayMeeting is a bookable slot: 2021-10-03 was a Sunday.
func sundayMeeting(start, end string) *MeetingRequest {
	return &MeetingRequest{Year: 2021, Month: 10, Day: 3, Start: start, End: end}
}

func TestBookMeeting(t *testing.T) {
	fx := newMeetingFixture(t)

	resp, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("14:15", "15:15"), aliceSub)
	if apierr != nil {
		t.Fatalf("BookMeeting failed: %+v", apierr)
	}
	if resp.Attendee != "alicep" || resp.Start != "14:15" || resp.End != "15:15" {
		t.Errorf("unexpected response: %+v", resp)
	}

	listed, apierr := fx.svc.GetMeetings("bobslob", 2021, 10, 3)
	if apierr != nil {
		t.Fatalf("GetMeetings failed: %+v", apierr)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(listed))
	}
	if listed[0].Attendee != "alicep" || listed[0].Start != "14:15" || listed[0].End != "15:15" {
		t.Errorf("unexpected listed meeting: %+v", listed[0])
	}

	if len(fx.bus.published) != 1 || fx.bus.published[0].Type != events.TypeMeetingBooked {
		t.Errorf("expected one meeting.booked event, got %+v", fx.bus.published)
	}
}

func TestBookMeetingPreservesBookingOrder(t *testing.T) {
	fx := newMeetingFixture(t)

	slots := [][2]string{{"15:30", "16:00"}, {"14:15", "15:15"}, {"16:30", "17:00"}}
	for _, s := range slots {
		if _, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting(s[0], s[1]), aliceSub); apierr != nil {
			t.Fatalf("BookMeeting(%s-%s) failed: %+v", s[0], s[1], apierr)
		}
	}

	listed, apierr := fx.svc.GetMeetings("bobslob", 2021, 10, 3)
	if apierr != nil {
		t.Fatalf("GetMeetings failed: %+v", apierr)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 meetings, got %d", len(listed))
	}
	for i, s := range slots {
		if listed[i].Start != s[0] {
			t.Errorf("meeting %d: got start %s, want %s (insertion order)", i, listed[i].Start, s[0])
		}
	}
}

func TestBookMeetingRejections(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		req     *MeetingRequest
		wantErr apierror.ErrorResponse
	}{
		{
			name:    "self booking",
			caller:  bobSub,
			req:     sundayMeeting("14:15", "15:15"),
			wantErr: apierror.SelfBookingError,
		},
		{
			name:    "friday is outside the weekday set",
			caller:  aliceSub,
			req:     &MeetingRequest{Year: 2021, Month: 10, Day: 1, Start: "14:15", End: "15:15"},
			wantErr: apierror.OutsideAvailabilityError,
		},
		{
			name:    "before the window opens",
			caller:  aliceSub,
			req:     sundayMeeting("08:00", "09:00"),
			wantErr: apierror.OutsideAvailabilityError,
		},
		{
			name:    "start after end",
			caller:  aliceSub,
			req:     sundayMeeting("15:15", "14:15"),
			wantErr: apierror.InvalidIntervalError,
		},
		{
			name:    "impossible date",
			caller:  aliceSub,
			req:     &MeetingRequest{Year: 2021, Month: 2, Day: 30, Start: "14:15", End: "15:15"},
			wantErr: apierror.InvalidDateError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newMeetingFixture(t)
			_, apierr := fx.svc.BookMeeting("bobslob", tt.req, tt.caller)
			if apierr != tt.wantErr {
				t.Errorf("BookMeeting() error = %+v, want %+v", apierr, tt.wantErr)
			}
			if len(fx.meetings.meetings) != 0 {
				t.Error("failed booking must not mutate the ledger")
			}
			if len(fx.bus.published) != 0 {
				t.Error("failed booking must not emit events")
			}
		})
	}
}

func TestBookMeetingOverlap(t *testing.T) {
	fx := newMeetingFixture(t)

	if _, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("14:15", "15:15"), aliceSub); apierr != nil {
		t.Fatalf("first booking failed: %+v", apierr)
	}

	if _, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("15:00", "16:00"), aliceSub); apierr != apierror.SlotTakenError {
		t.Errorf("overlapping booking: got %+v, want SlotTakenError", apierr)
	}

	// Adjacent slots touch but do not overlap.
	if _, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("15:15", "16:15"), aliceSub); apierr != nil {
		t.Errorf("adjacent booking failed: %+v", apierr)
	}
}

func TestConcurrentOverlappingBookings(t *testing.T) {
	fx := newMeetingFixture(t)

	// All attempts race for the same slot; the per-calendar lock must let
	// exactly one through.
	const attempts = 8
	results := make(chan apierror.ErrorResponse, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("14:15", "15:15"), aliceSub)
			results <- apierr
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for apierr := range results {
		switch apierr {
		case nil:
			wins++
		case apierror.SlotTakenError:
			conflicts++
		default:
			t.Errorf("unexpected booking error: %+v", apierr)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Errorf("got %d successes and %d conflicts, want 1 and %d", wins, conflicts, attempts-1)
	}
	if len(fx.meetings.meetings) != 1 {
		t.Errorf("ledger holds %d meetings, want 1", len(fx.meetings.meetings))
	}
	if len(fx.bus.published) != 1 {
		t.Errorf("published %d events, want 1", len(fx.bus.published))
	}
}

func TestBookMeetingRequestValidation(t *testing.T) {
	fx := newMeetingFixture(t)

	_, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("25:00", "26:00"), aliceSub)
	if apierr == nil || apierr.Code() != 400 {
		t.Errorf("bad clock time: got %+v, want a 400", apierr)
	}
}

func TestBookMeetingUnknownCalendarAndCaller(t *testing.T) {
	fx := newMeetingFixture(t)

	if _, apierr := fx.svc.BookMeeting("ghost", sundayMeeting("14:15", "15:15"), aliceSub); apierr != apierror.CalendarNotFoundError {
		t.Errorf("unknown calendar: got %+v, want CalendarNotFoundError", apierr)
	}
	if _, apierr := fx.svc.BookMeeting("bobslob", sundayMeeting("14:15", "15:15"), "sub-nobody"); apierr != apierror.InvalidAuthTokenError {
		t.Errorf("unknown caller: got %+v, want InvalidAuthTokenError", apierr)
	}
}

func TestCancelMeeting(t *testing.T) {
	fx := newMeetingFixture(t)
	req := sundayMeeting("14:15", "15:15")

	if _, apierr := fx.svc.BookMeeting("bobslob", req, aliceSub); apierr != nil {
		t.Fatalf("booking failed: %+v", apierr)
	}

	if apierr := fx.svc.CancelMeeting("bobslob", req, aliceSub); apierr != nil {
		t.Fatalf("CancelMeeting failed: %+v", apierr)
	}

	listed, _ := fx.svc.GetMeetings("bobslob", 2021, 10, 3)
	if len(listed) != 0 {
		t.Errorf("expected no meetings after cancellation, got %d", len(listed))
	}

	// The identical slot is bookable again.
	if _, apierr := fx.svc.BookMeeting("bobslob", req, aliceSub); apierr != nil {
		t.Errorf("rebooking the cancelled slot failed: %+v", apierr)
	}

	types := make([]events.Type, len(fx.bus.published))
	for i, e := range fx.bus.published {
		types[i] = e.Type
	}
	want := []events.Type{events.TypeMeetingBooked, events.TypeMeetingCancelled, events.TypeMeetingBooked}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event sequence %v, want %v", types, want)
		}
	}
}

func TestCancelMeetingRejections(t *testing.T) {
	fx := newMeetingFixture(t)
	req := sundayMeeting("14:15", "15:15")

	if apierr := fx.svc.CancelMeeting("bobslob", req, aliceSub); apierr != apierror.MeetingNotFoundError {
		t.Errorf("cancelling nothing: got %+v, want MeetingNotFoundError", apierr)
	}

	if _, apierr := fx.svc.BookMeeting("bobslob", req, aliceSub); apierr != nil {
		t.Fatalf("booking failed: %+v", apierr)
	}

	// Differing end time means no exact match.
	if apierr := fx.svc.CancelMeeting("bobslob", sundayMeeting("14:15", "15:00"), aliceSub); apierr != apierror.MeetingNotFoundError {
		t.Errorf("near-miss tuple: got %+v, want MeetingNotFoundError", apierr)
	}

	// Even the calendar owner cannot cancel someone else's booking.
	if apierr := fx.svc.CancelMeeting("bobslob", req, bobSub); apierr != apierror.NotMeetingAttendeeError {
		t.Errorf("owner cancelling attendee's meeting: got %+v, want NotMeetingAttendeeError", apierr)
	}

	listed, _ := fx.svc.GetMeetings("bobslob", 2021, 10, 3)
	if len(listed) != 1 {
		t.Errorf("failed cancellations must leave the ledger unchanged, got %d meetings", len(listed))
	}
}

func TestGetMeetingsEmptyAndInvalid(t *testing.T) {
	fx := newMeetingFixture(t)

	listed, apierr := fx.svc.GetMeetings("bobslob", 2021, 10, 3)
	if apierr != nil {
		t.Fatalf("GetMeetings failed: %+v", apierr)
	}
	if len(listed) != 0 {
		t.Errorf("expected empty list, got %d", len(listed))
	}

	if _, apierr := fx.svc.GetMeetings("bobslob", 2021, 2, 30); apierr != apierror.InvalidDateError {
		t.Errorf("impossible date: got %+v, want InvalidDateError", apierr)
	}
	if _, apierr := fx.svc.GetMeetings("ghost", 2021, 10, 3); apierr != apierror.CalendarNotFoundError {
		t.Errorf("unknown calendar: got %+v, want CalendarNotFoundError", apierr)
	}
}

func TestBookMeetingIntoRolledOverWindow(t *testing.T) {
	fx := newMeetingFixture(t)
	// Bob switches to evenings: 18:00 for 8 hours, Sunday through Thursday.
	fx.cals.cals[0].Availability.EarliestTimeInMinutes = 18 * 60

	// 2021-10-04 was a Monday; its first two hours belong to Sunday's window.
	req := &MeetingRequest{Year: 2021, Month: 10, Day: 4, Start: "00:30", End: "01:30"}
	resp, apierr := fx.svc.BookMeeting("bobslob", req, aliceSub)
	if apierr != nil {
		t.Fatalf("rolled-over booking failed: %+v", apierr)
	}
	if resp.Start != "00:30" {
		t.Errorf("unexpected start %s", resp.Start)
	}

	// The meeting is recorded under the requested date.
	listed, _ := fx.svc.GetMeetings("bobslob", 2021, 10, 4)
	if len(listed) != 1 {
		t.Fatalf("expected the meeting under 2021-10-04, got %d entries", len(listed))
	}

	// Past the 02:00 close the tail is over.
	late := &MeetingRequest{Year: 2021, Month: 10, Day: 4, Start: "02:00", End: "03:00"}
	if _, apierr := fx.svc.BookMeeting("bobslob", late, aliceSub); apierr != apierror.OutsideAvailabilityError {
		t.Errorf("past the rolled-over close: got %+v, want OutsideAvailabilityError", apierr)
	}
}

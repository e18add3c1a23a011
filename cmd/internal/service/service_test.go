package service

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"meetcal/cmd/internal/domain/entity"
	"meetcal/cmd/internal/events"
	"meetcal/cmd/internal/utils/validators"
)

func newTestValidate(t *testing.T) *validator.Validate {
	t.Helper()

	v := validator.New()
	for name, fn := range map[string]validator.Func{
		"hasupper":   validators.HasUpper,
		"haslower":   validators.HasLower,
		"hasdigit":   validators.HasDigit,
		"hasspecial": validators.HasSpecial,
		"nospaces":   validators.NoWhiteSpaces,
		"clocktime":  validators.ClockTime,
	} {
		if err := v.RegisterValidation(name, fn); err != nil {
			t.Fatalf("failed to register validator %s: %v", name, err)
		}
	}
	return v
}

type fakeUserRepo struct {
	users []*entity.User
}

func (f *fakeUserRepo) FindByID(id int) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindBySub(sub string) (*entity.User, error) {
	for _, u := range f.users {
		if u.SubUUID == sub {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	u, _ := f.FindByEmail(email)
	return u != nil, nil
}

func (f *fakeUserRepo) ExistsByUsername(username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) FindAll() ([]*entity.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) Save(user *entity.User) error {
	if user.ID == 0 {
		user.ID = len(f.users) + 1
		f.users = append(f.users, user)
	}
	return nil
}

type fakeCalendarRepo struct {
	cals  []*entity.Calendar
	users *fakeUserRepo
}

func (f *fakeCalendarRepo) FindByOwnerID(ownerID int) (*entity.Calendar, error) {
	for _, c := range f.cals {
		if c.OwnerID == ownerID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCalendarRepo) FindByOwnerUsername(username string) (*entity.Calendar, error) {
	for _, u := range f.users.users {
		if u.Username == username {
			return f.FindByOwnerID(u.ID)
		}
	}
	return nil, nil
}

func (f *fakeCalendarRepo) ExistsByOwnerID(ownerID int) (bool, error) {
	c, _ := f.FindByOwnerID(ownerID)
	return c != nil, nil
}

func (f *fakeCalendarRepo) Save(cal *entity.Calendar) error {
	if cal.ID == 0 {
		cal.ID = len(f.cals) + 1
		f.cals = append(f.cals, cal)
	}
	return nil
}

type fakeMeetingRepo struct {
	meetings []*entity.Meeting
	users    *fakeUserRepo
}

func (f *fakeMeetingRepo) FindByDate(calendarID, year, month, day int) ([]*entity.Meeting, error) {
	var out []*entity.Meeting
	for _, m := range f.meetings {
		if m.IsDeleted || m.CalendarID != calendarID {
			continue
		}
		if m.Year != year || m.Month != month || m.Day != day {
			continue
		}
		if u, _ := f.users.FindByID(m.AttendeeID); u != nil {
			m.Attendee = *u
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMeetingRepo) FindExact(calendarID, year, month, day, startSeconds, endSeconds int) (*entity.Meeting, error) {
	onDate, _ := f.FindByDate(calendarID, year, month, day)
	for _, m := range onDate {
		if m.StartSeconds == startSeconds && m.EndSeconds == endSeconds {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMeetingRepo) Save(meeting *entity.Meeting) error {
	if meeting.ID == 0 {
		meeting.ID = len(f.meetings) + 1
		f.meetings = append(f.meetings, meeting)
	}
	return nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(e events.Event) {
	f.published = append(f.published, e)
}

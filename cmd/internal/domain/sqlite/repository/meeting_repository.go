package repository

import (
	"errors"

	"gorm.io/gorm"

	"meetcal/cmd/internal/domain/entity"
)

type DefaultMeetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *DefaultMeetingRepository {
	return &DefaultMeetingRepository{db: db}
}

// FindByDate returns the live meetings booked on one calendar date, in
// booking order (the autoincrement ID).
func (m *DefaultMeetingRepository) FindByDate(calendarID, year, month, day int) ([]*entity.Meeting, error) {
	var meetings []*entity.Meeting
	err := m.db.
		Preload("Attendee").
		Where("calendar_id = ?", calendarID).
		Where("is_deleted = ?", false).
		Where("year = ? AND month = ? AND day = ?", year, month, day).
		Order("id asc").
		Find(&meetings).Error
	return meetings, err
}

// FindExact resolves the (date, start, end) tuple a cancellation names. At
// most one live meeting can match, since overlapping slots are never booked.
func (m *DefaultMeetingRepository) FindExact(calendarID, year, month, day, startSeconds, endSeconds int) (*entity.Meeting, error) {
	var meeting entity.Meeting
	err := m.db.
		Where("calendar_id = ?", calendarID).
		Where("is_deleted = ?", false).
		Where("year = ? AND month = ? AND day = ?", year, month, day).
		Where("start_seconds = ? AND end_seconds = ?", startSeconds, endSeconds).
		First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &meeting, err
}

func (m *DefaultMeetingRepository) Save(meeting *entity.Meeting) error {
	return m.db.Save(meeting).Error
}

// PurgeCancelledBefore hard-deletes cancelled meetings created before the
// cutoff. Used by the maintenance sweep only.
func (m *DefaultMeetingRepository) PurgeCancelledBefore(cutoffMillis int64) (int64, error) {
	res := m.db.
		Where("is_deleted = ?", true).
		Where("created_at < ?", cutoffMillis).
		Delete(&entity.Meeting{})
	return res.RowsAffected, res.Error
}

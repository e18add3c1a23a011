package repository

import (
	"errors"

	"gorm.io/gorm"

	"meetcal/cmd/internal/domain/entity"
)

type DefaultCalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *DefaultCalendarRepository {
	return &DefaultCalendarRepository{db: db}
}

func (c *DefaultCalendarRepository) FindByOwnerID(ownerID int) (*entity.Calendar, error) {
	var cal entity.Calendar
	err := c.db.Where("owner_id = ?", ownerID).First(&cal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cal, err
}

// FindByOwnerUsername resolves the directory lookup "whose calendar is this":
// one calendar per owner, keyed by the owner's account username.
func (c *DefaultCalendarRepository) FindByOwnerUsername(username string) (*entity.Calendar, error) {
	var cal entity.Calendar
	err := c.db.
		Joins("JOIN users ON users.id = calendars.owner_id").
		Where("users.username = ?", username).
		First(&cal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cal, err
}

func (c *DefaultCalendarRepository) ExistsByOwnerID(ownerID int) (bool, error) {
	var count int64
	err := c.db.Model(&entity.Calendar{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count > 0, err
}

func (c *DefaultCalendarRepository) Save(cal *entity.Calendar) error {
	return c.db.Save(cal).Error
}

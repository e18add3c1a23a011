package entity

// Meeting is one booked slot on a calendar. Rows are never updated:
// cancellation flips IsDeleted and a rebooked slot is a fresh row, so the
// autoincrement ID doubles as insertion order for retrieval.
type Meeting struct {
	ID           int   `gorm:"primaryKey"`
	CalendarID   int   `gorm:"index;not null"` // References: calendars(id)
	Year         int   `gorm:"not null"`
	Month        int   `gorm:"not null"`
	Day          int   `gorm:"not null"`
	StartSeconds int   `gorm:"not null"` // seconds of day
	EndSeconds   int   `gorm:"not null"`
	AttendeeID   int   `gorm:"not null"` // References: users(id)
	IsDeleted    bool  `gorm:"not null"`
	CreatedAt    int64 `gorm:"not null"`

	// Relations
	Attendee User `gorm:"foreignKey:AttendeeID;references:ID"`
}

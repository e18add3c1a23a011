package entity

// Profile is the public card shown when a calendar is looked up.
type Profile struct {
	Email       string `gorm:"not null"`
	Username    string `gorm:"not null"`
	Picture     string
	URL         string
	Description string
}

// Availability is the owner's recurring weekly booking window.
// AvailableDays is a weekday bitmask (Sunday = 1 << 0 ... Saturday = 1 << 6).
// The window opens at EarliestTimeInMinutes (minute of day) and lasts
// MinutesAvailable minutes; it may run past midnight. TimeZone is stored
// verbatim and never interpreted.
type Availability struct {
	AvailableDays         uint8 `gorm:"not null"`
	Location              string
	TimeZone              string
	EarliestTimeInMinutes int `gorm:"not null"`
	MinutesAvailable      int `gorm:"not null"`
}

type Calendar struct {
	ID           int          `gorm:"primaryKey"`
	OwnerID      int          `gorm:"uniqueIndex;not null"` // References: users(id)
	Profile      Profile      `gorm:"embedded;embeddedPrefix:profile_"`
	Availability Availability `gorm:"embedded;embeddedPrefix:avail_"`
	CreatedAt    int64        `gorm:"not null"`
	UpdatedAt    int64        `gorm:"not null"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID;references:ID"`
}

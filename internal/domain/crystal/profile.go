package crystal

import "time"

// UserProfile is the caller's birth chart and spiritual focus. One row per user id.
type UserProfile struct {
	UserID string `gorm:"column:user_id;primaryKey" json:"user_id"`

	DisplayName     string `gorm:"column:display_name" json:"display_name"`
	SunSign         string `gorm:"column:sun_sign" json:"sun_sign"`
	MoonSign        string `gorm:"column:moon_sign" json:"moon_sign"`
	RisingSign      string `gorm:"column:rising_sign" json:"rising_sign"`
	DominantElement string `gorm:"column:dominant_element" json:"dominant_element"`

	SpiritualGoals    string `gorm:"column:spiritual_goals" json:"spiritual_goals"`
	CurrentChallenges string `gorm:"column:current_challenges" json:"current_challenges"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

// HasBirthChart reports whether any chart placement is set.
func (p *UserProfile) HasBirthChart() bool {
	return p != nil && (p.SunSign != "" || p.MoonSign != "" || p.RisingSign != "" || p.DominantElement != "")
}

package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuidanceSession records one answered guidance question.
type GuidanceSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;not null;index" json:"user_id"`
	Question     string    `gorm:"column:question;not null" json:"question"`
	GuidanceType string    `gorm:"column:guidance_type;not null" json:"guidance_type"`
	Response     string    `gorm:"column:response;not null" json:"response"`
	MoonPhase    string    `gorm:"column:moon_phase" json:"moon_phase"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GuidanceSession) TableName() string { return "guidance_session" }

func (g *GuidanceSession) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

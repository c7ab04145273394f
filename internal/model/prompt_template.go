package model

import "time"

// PromptTemplate is a persisted, operator-editable prompt skeleton.
// Templates are looked up by Key; inactive templates behave as absent.
type PromptTemplate struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Key         string `gorm:"column:template_key;size:120;not null;uniqueIndex"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Content     string `gorm:"type:text;not null"`

	// Instructions and Rules are auxiliary blocks editable by operators.
	// The resolver injects them into Content via {instructions}/{rules}
	// placeholders, or splices them in before a known anchor phrase.
	Instructions string `gorm:"type:text"`
	Rules        string `gorm:"type:text"`

	Category   string `gorm:"size:40;not null;index"` // suggestion | generation | template | images
	PromptType string `gorm:"size:60"`
	IsActive   bool   `gorm:"not null;default:true;index"`

	Metadata map[string]string `gorm:"serializer:json"`

	CreatedBy string    `gorm:"size:128"`
	UpdatedBy string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

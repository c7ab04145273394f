package model

import "time"

// Generation types for the flat lineage records. Regenerated nodes carry the
// RegeneratedSuffix exactly once, regardless of chain depth.
const (
	TypeWhiteBackground       = "white_background"
	TypeBackgroundChange      = "background_change"
	TypeModelWithOrnament     = "model_with_ornament"
	TypeRealModelWithOrnament = "real_model_with_ornament"
	TypeCampaignShotAdvanced  = "campaign_shot_advanced"

	RegeneratedSuffix = "_regenerated"
)

// GenerationNode is the atomic record of one produced image and its prompt
// provenance. Nodes are append-only: regeneration creates a new node that
// points at its parent, it never mutates an existing one.
type GenerationNode struct {
	ID   string `gorm:"primaryKey;size:36"`
	Type string `gorm:"size:60;not null;index"`

	// Prompt is the final resolved prompt sent to the generation service.
	// OriginalPrompt is the root ancestor's prompt, copied down the chain so
	// the root is recoverable without walking parents. Equal for root nodes.
	Prompt         string `gorm:"type:text"`
	OriginalPrompt string `gorm:"type:text"`

	ParentID *string `gorm:"size:36;index"`

	UploadedImageURL   string `gorm:"size:512"`
	UploadedImagePath  string `gorm:"size:512"`
	GeneratedImageURL  string `gorm:"size:512;not null"`
	GeneratedImagePath string `gorm:"size:512"`

	ModelImageURL        *string  `gorm:"size:512"`
	UploadedOrnamentURLs []string `gorm:"serializer:json"`

	UserID       string  `gorm:"size:128;not null;index"`
	ProjectID    *string `gorm:"size:36;index"`
	CollectionID *string `gorm:"size:36;index"`

	Metadata map[string]string `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (GenerationNode) TableName() string {
	return "generation_nodes"
}

// IsRoot reports whether the node starts a lineage chain.
func (n *GenerationNode) IsRoot() bool {
	return n.ParentID == nil
}

package model

import (
	"errors"
	"time"
)

// ModelRef identifies the model image used for a generation: an AI-generated
// model or a real uploaded one.
type ModelRef struct {
	Type  string `json:"type"` // "ai" or "real"
	Local string `json:"local"`
	Cloud string `json:"cloud"`
	Name  string `json:"name,omitempty"`
}

// RegeneratedImageEntry records one regeneration of a generated product image.
// Regenerations always attach to the parent GeneratedImageEntry, so the
// project-workflow lineage is at most two levels deep.
type RegeneratedImageEntry struct {
	Prompt           string    `json:"prompt"`
	OriginalPrompt   string    `json:"originalPrompt"`
	CombinedPrompt   string    `json:"combinedPrompt"`
	Type             string    `json:"type"`
	LocalPath        string    `json:"localPath"`
	CloudURL         string    `json:"cloudUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	ProductImagePath string    `json:"productImagePath"`
	ModelUsed        ModelRef  `json:"modelUsed"`
}

// GeneratedImageEntry records one generated version of a product image.
type GeneratedImageEntry struct {
	Type              string                  `json:"type"`
	Prompt            string                  `json:"prompt"`
	LocalPath         string                  `json:"localPath"`
	CloudURL          string                  `json:"cloudUrl"`
	CreatedAt         time.Time               `json:"createdAt"`
	ModelUsed         ModelRef                `json:"modelUsed"`
	RegeneratedImages []RegeneratedImageEntry `json:"regeneratedImages,omitempty"`
}

// ProductImage is one uploaded product plus its generated versions.
type ProductImage struct {
	UploadedImageURL  string                `json:"uploadedImageUrl"`
	UploadedImagePath string                `json:"uploadedImagePath"`
	GeneratedImages   []GeneratedImageEntry `json:"generatedImages,omitempty"`
	UploadedAt        time.Time             `json:"uploadedAt"`
}

// CollectionItem holds the campaign setup and product images of a collection.
type CollectionItem struct {
	SelectedThemes      []string          `json:"selectedThemes,omitempty"`
	SelectedBackgrounds []string          `json:"selectedBackgrounds,omitempty"`
	SelectedPoses       []string          `json:"selectedPoses,omitempty"`
	SelectedLocations   []string          `json:"selectedLocations,omitempty"`
	SelectedColors      []string          `json:"selectedColors,omitempty"`
	PickedColors        []string          `json:"pickedColors,omitempty"`
	GlobalInstructions  string            `json:"globalInstructions,omitempty"`
	GeneratedPrompts    map[string]string `json:"generatedPrompts,omitempty"`
	SelectedModel       *ModelRef         `json:"selectedModel,omitempty"`
	ProductImages       []ProductImage    `json:"productImages,omitempty"`
}

type Collection struct {
	ID             string           `gorm:"primaryKey;size:36"`
	ProjectID      string           `gorm:"size:36;not null;index"`
	Description    string           `gorm:"type:text"`
	TargetAudience string           `gorm:"size:200"`
	CampaignSeason string           `gorm:"size:200"`
	Items          []CollectionItem `gorm:"serializer:json"`

	// Version guards whole-document read-modify-write cycles. Saves go
	// through a compare-and-swap on this counter.
	Version int64 `gorm:"not null;default:0"`

	CreatedBy string    `gorm:"size:128"`
	UpdatedBy string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Collection) TableName() string {
	return "collections"
}

// NewRegeneratedImageEntry validates required fields at construction time.
func NewRegeneratedImageEntry(prompt, originalPrompt, combinedPrompt, imgType, localPath, cloudURL, productImagePath string, modelUsed ModelRef) (RegeneratedImageEntry, error) {
	if combinedPrompt == "" {
		return RegeneratedImageEntry{}, errors.New("combined prompt is required")
	}
	if cloudURL == "" {
		return RegeneratedImageEntry{}, errors.New("cloud url is required")
	}
	if imgType == "" {
		return RegeneratedImageEntry{}, errors.New("type is required")
	}
	return RegeneratedImageEntry{
		Prompt:           prompt,
		OriginalPrompt:   originalPrompt,
		CombinedPrompt:   combinedPrompt,
		Type:             imgType,
		LocalPath:        localPath,
		CloudURL:         cloudURL,
		CreatedAt:        time.Now().UTC(),
		ProductImagePath: productImagePath,
		ModelUsed:        modelUsed,
	}, nil
}

package model

import "time"

// ProjectMember ties a user to a project with a single role. Exactly one
// membership exists per (project, user) pair.
type ProjectMember struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Project struct {
	ID        string          `gorm:"primaryKey;size:36"`
	Name      string          `gorm:"size:200;not null"`
	About     string          `gorm:"type:text"`
	Status    string          `gorm:"size:40;not null;default:'progress'"`
	Members   []ProjectMember `gorm:"serializer:json"`
	CreatedBy string          `gorm:"size:128"`
	UpdatedBy string          `gorm:"size:128"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// Member returns the membership entry for uid, or nil.
func (p *Project) Member(uid string) *ProjectMember {
	for i := range p.Members {
		if p.Members[i].UserID == uid {
			return &p.Members[i]
		}
	}
	return nil
}

package access

import (
	"testing"
	"time"

	"github.com/ornastudio/ornament-backend/internal/model"
)

func TestAllowedMatrix(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleOwner, ActionGenerate, true},
		{RoleEditor, ActionGenerate, false},
		{RoleViewer, ActionGenerate, false},
		{RoleOwner, ActionRegenerate, true},
		{RoleEditor, ActionRegenerate, false},
		{RoleOwner, ActionUpload, true},
		{RoleEditor, ActionUpload, true},
		{RoleViewer, ActionUpload, false},
		{RoleOwner, ActionSelect, true},
		{RoleEditor, ActionSelect, true},
		{RoleViewer, ActionSelect, false},
		{RoleOwner, ActionView, true},
		{RoleEditor, ActionView, true},
		{RoleViewer, ActionView, true},
		{RoleOwner, ActionManageMembers, true},
		{RoleEditor, ActionManageMembers, false},
		{RoleViewer, ActionManageMembers, false},
		{Role("stranger"), ActionView, false},
		{RoleOwner, Action("unknown"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.action), func(t *testing.T) {
			if got := Allowed(tt.role, tt.action); got != tt.want {
				t.Fatalf("Allowed(%s, %s)=%v want=%v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	tests := []struct {
		name       string
		actorID    string
		actorRole  Role
		targetID   string
		targetRole Role
		wantErr    bool
	}{
		{"owner changes editor", "u1", RoleOwner, "u2", RoleEditor, false},
		{"owner changes viewer", "u1", RoleOwner, "u2", RoleViewer, false},
		{"editor cannot manage", "u1", RoleEditor, "u2", RoleViewer, true},
		{"no self change", "u1", RoleOwner, "u1", RoleOwner, true},
		{"cannot change another owner", "u1", RoleOwner, "u2", RoleOwner, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanChangeRole(tt.actorID, tt.actorRole, tt.targetID, tt.targetRole)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleOfAndRequireMember(t *testing.T) {
	p := &model.Project{
		ID: "p1",
		Members: []model.ProjectMember{
			{UserID: "owner", Role: string(RoleOwner), JoinedAt: time.Now()},
			{UserID: "viewer", Role: string(RoleViewer), JoinedAt: time.Now()},
		},
	}

	if got := RoleOf(p, "owner"); got != RoleOwner {
		t.Fatalf("RoleOf owner=%q", got)
	}
	if got := RoleOf(p, "nobody"); got != "" {
		t.Fatalf("RoleOf non-member=%q", got)
	}
	if err := RequireMember(p, "viewer", ActionView); err != nil {
		t.Fatalf("viewer should view: %v", err)
	}
	if err := RequireMember(p, "viewer", ActionGenerate); err == nil {
		t.Fatalf("viewer should not generate")
	}
	if err := RequireMember(p, "nobody", ActionView); err == nil {
		t.Fatalf("non-member should be denied")
	}
	if err := RequireMember(nil, "owner", ActionView); err == nil {
		t.Fatalf("nil project should be denied")
	}
}

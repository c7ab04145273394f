package access

import "github.com/ornastudio/ornament-backend/internal/model"

// RoleOf returns uid's role in the project, or "" for non-members.
func RoleOf(p *model.Project, uid string) Role {
	if p == nil {
		return ""
	}
	if m := p.Member(uid); m != nil {
		return Role(m.Role)
	}
	return ""
}

// RequireMember checks that uid is a member of p allowed to perform action.
func RequireMember(p *model.Project, uid string, action Action) error {
	role := RoleOf(p, uid)
	if role == "" {
		return ErrDenied
	}
	return Require(role, action)
}

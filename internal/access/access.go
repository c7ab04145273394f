package access

import "errors"

// Role is a member's role within a project or collection.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Action is something a member can attempt against a project's resources.
type Action string

const (
	ActionGenerate      Action = "generate"
	ActionRegenerate    Action = "regenerate"
	ActionUpload        Action = "upload"
	ActionSelect        Action = "select"
	ActionView          Action = "view"
	ActionManageMembers Action = "manage_members"
)

var ErrDenied = errors.New("access denied")

// rules maps each action to the roles allowed to perform it. Generation and
// member management stay with the owner; editors can shape inputs; everyone
// on the project can view.
var rules = map[Action][]Role{
	ActionGenerate:      {RoleOwner},
	ActionRegenerate:    {RoleOwner},
	ActionUpload:        {RoleOwner, RoleEditor},
	ActionSelect:        {RoleOwner, RoleEditor},
	ActionView:          {RoleOwner, RoleEditor, RoleViewer},
	ActionManageMembers: {RoleOwner},
}

// Valid reports whether r is a known role.
func Valid(r Role) bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Allowed reports whether a member with the given role may perform action.
// Unknown actions are denied.
func Allowed(role Role, action Action) bool {
	for _, r := range rules[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Require returns ErrDenied when role may not perform action.
func Require(role Role, action Action) error {
	if !Allowed(role, action) {
		return ErrDenied
	}
	return nil
}

// CanChangeRole checks a role update of target by actor. Only owners manage
// members, nobody edits their own role, and one owner cannot change another
// owner's role.
func CanChangeRole(actorID string, actorRole Role, targetID string, targetRole Role) error {
	if actorRole != RoleOwner {
		return ErrDenied
	}
	if actorID == targetID {
		return ErrDenied
	}
	if targetRole == RoleOwner {
		return ErrDenied
	}
	return nil
}

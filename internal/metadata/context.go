package metadata

// UserContext represents the authenticated user, set by auth middleware.
type UserContext struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// HasRole checks whether the user has a specific role.
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks whether the user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u.HasRole("admin")
}

// ValidationContext carries the record under validation. Record is the
// candidate data; OldRecord is the prior version and is only present for
// updates. Extra is an open bag for host-specific metadata. Evaluators
// treat the whole context as read-only.
type ValidationContext struct {
	Record    map[string]any `json:"record"`
	OldRecord map[string]any `json:"old_record,omitempty"`
	User      *UserContext   `json:"user,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

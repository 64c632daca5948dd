package auth

// Actor is the authenticated caller of a service operation. Every
// lifecycle operation takes one explicitly; there is no ambient
// request-scoped identity below the handler layer.
type Actor struct {
	UserID   int
	Username string
	Role     string
}

// HasRole reports whether the actor holds any of the given roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

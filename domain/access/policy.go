// Package access holds the authorization rules shared by task and account modules.
package access

// Requester identifies the authenticated user a request is made on behalf of.
type Requester struct {
	UserID      string `json:"user_id"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Anonymous reports whether r carries no identity.
func (r Requester) Anonymous() bool {
	return r.UserID == ""
}

// CanAccess reports whether requester may view, edit or delete resources owned by
// targetOwnerID. Superusers may access everything; everyone else only their own.
func CanAccess(requester Requester, targetOwnerID string) bool {
	if requester.IsSuperuser {
		return true
	}
	return !requester.Anonymous() && requester.UserID == targetOwnerID
}

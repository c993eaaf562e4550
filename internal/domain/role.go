package domain

// Role is the closed set of actor roles supplied by the identity provider.
type Role string

const (
	RoleMember   Role = "member"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// Privileged roles submit straight to the admin tier and may act at the
// reviewer tier; reviewer authority does not extend upward.
func (r Role) Privileged() bool {
	return r == RoleReviewer || r == RoleAdmin
}

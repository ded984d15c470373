// Package policy is the single table of who may do what. Controllers call
// Authorize before touching any member-owned data.
package policy

import (
	"bookgalaxy/model"
	"bookgalaxy/util/apperr"
)

// Subject is the authenticated caller.
type Subject struct {
	ID   int64
	Role model.Role
}

func (s Subject) Anonymous() bool { return s.ID == 0 || !s.Role.Valid() }

type Action string

const (
	ManageBooks         Action = "books:manage"
	UseCart             Action = "cart:use"
	Checkout            Action = "orders:checkout"
	ViewOrder           Action = "orders:view"
	CancelOrder         Action = "orders:cancel"
	WriteReview         Action = "reviews:write"
	EditReview          Action = "reviews:edit"
	UseBookmarks        Action = "bookmarks:use"
	FulfillOrders       Action = "fulfillments:process"
	CreateStaff         Action = "staff:create"
	ManageMembers       Action = "members:manage"
	ManageAnnouncements Action = "announcements:manage"
)

// Resource describes what is being acted on. OwnerID is the member who owns
// it, or zero when ownership does not apply.
type Resource struct {
	OwnerID int64
}

// Any is the resource for actions that are not tied to an owned record.
var Any = Resource{}

type rule func(s Subject, r Resource) bool

func roleIn(roles ...model.Role) rule {
	return func(s Subject, _ Resource) bool {
		for _, role := range roles {
			if s.Role == role {
				return true
			}
		}
		return false
	}
}

func owningMember(s Subject, r Resource) bool {
	return s.Role == model.RoleMember && r.OwnerID != 0 && r.OwnerID == s.ID
}

var rules = map[Action]rule{
	ManageBooks:         roleIn(model.RoleStaff, model.RoleAdmin),
	UseCart:             roleIn(model.RoleMember),
	Checkout:            roleIn(model.RoleMember),
	ViewOrder:           owningMember,
	CancelOrder:         owningMember,
	WriteReview:         roleIn(model.RoleMember),
	UseBookmarks:        roleIn(model.RoleMember),
	FulfillOrders:       roleIn(model.RoleStaff),
	CreateStaff:         roleIn(model.RoleAdmin),
	ManageMembers:       roleIn(model.RoleAdmin),
	ManageAnnouncements: roleIn(model.RoleAdmin),
	EditReview: func(s Subject, r Resource) bool {
		return s.Role == model.RoleAdmin || owningMember(s, r)
	},
}

// Authorize returns nil when s may perform a on r, UNAUTHORIZED for an
// anonymous subject and FORBIDDEN otherwise. Unknown actions are denied.
func Authorize(s Subject, a Action, r Resource) error {
	if s.Anonymous() {
		return apperr.New(apperr.ErrUnauthorized, "authentication required")
	}
	allow, ok := rules[a]
	if !ok || !allow(s, r) {
		return apperr.New(apperr.ErrForbidden, "not allowed")
	}
	return nil
}

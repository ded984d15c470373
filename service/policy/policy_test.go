package policy

import (
	"testing"

	"bookgalaxy/model"
	"bookgalaxy/util/apperr"

	"github.com/stretchr/testify/require"
)

var (
	member = Subject{ID: 1, Role: model.RoleMember}
	other  = Subject{ID: 2, Role: model.RoleMember}
	staff  = Subject{ID: 1, Role: model.RoleStaff}
	admin  = Subject{ID: 1, Role: model.RoleAdmin}
)

func TestAuthorize_Anonymous(t *testing.T) {
	err := Authorize(Subject{}, UseCart, Any)
	require.Equal(t, apperr.ErrUnauthorized, apperr.Code(err))

	err = Authorize(Subject{ID: 3, Role: "guest"}, UseCart, Any)
	require.Equal(t, apperr.ErrUnauthorized, apperr.Code(err))
}

func TestAuthorize_Table(t *testing.T) {
	cases := []struct {
		name  string
		s     Subject
		a     Action
		r     Resource
		allow bool
	}{
		{"member checkout", member, Checkout, Any, true},
		{"staff cannot checkout", staff, Checkout, Any, false},
		{"staff manages books", staff, ManageBooks, Any, true},
		{"admin manages books", admin, ManageBooks, Any, true},
		{"member cannot manage books", member, ManageBooks, Any, false},
		{"owner views order", member, ViewOrder, Resource{OwnerID: 1}, true},
		{"other member cannot view order", other, ViewOrder, Resource{OwnerID: 1}, false},
		{"admin cannot cancel member order", admin, CancelOrder, Resource{OwnerID: 1}, false},
		{"owner edits review", member, EditReview, Resource{OwnerID: 1}, true},
		{"other member cannot edit review", other, EditReview, Resource{OwnerID: 1}, false},
		{"admin overrides review", admin, EditReview, Resource{OwnerID: 1}, true},
		{"staff fulfils", staff, FulfillOrders, Any, true},
		{"admin does not fulfil", admin, FulfillOrders, Any, false},
		{"admin creates staff", admin, CreateStaff, Any, true},
		{"staff cannot create staff", staff, CreateStaff, Any, false},
		{"unknown action", admin, Action("nope"), Any, false},
		{"ownerless resource never matches", member, ViewOrder, Any, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.s, tc.a, tc.r)
			if tc.allow {
				require.NoError(t, err)
				return
			}
			require.Equal(t, apperr.ErrForbidden, apperr.Code(err))
		})
	}
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

func TestAuthorizeMatrix(t *testing.T) {
	const owner = uint(10)

	student := Actor{UserID: owner, Role: models.RoleStudent}
	otherStudent := Actor{UserID: 11, Role: models.RoleStudent}
	mentor := Actor{UserID: 20, Role: models.RoleMentor}
	admin := Actor{UserID: 30, Role: models.RoleAdmin}

	cases := []struct {
		name    string
		actor   Actor
		action  Action
		target  uint
		allowed bool
	}{
		{"student reads own profile", student, ActionReadProfile, owner, true},
		{"student updates own identity", student, ActionUpdateIdentity, owner, true},
		{"student reads own academics", student, ActionReadAcademics, owner, true},
		{"student cannot write own academics", student, ActionWriteAcademics, owner, false},
		{"student cannot read another profile", otherStudent, ActionReadProfile, owner, false},
		{"student cannot read another academics", otherStudent, ActionReadAcademics, owner, false},
		{"student cannot read overview", student, ActionReadOverview, 0, false},
		{"student cannot manage lifecycle", student, ActionManageLifecycle, owner, false},

		{"mentor reads any profile", mentor, ActionReadProfile, owner, true},
		{"mentor writes any academics", mentor, ActionWriteAcademics, owner, true},
		{"mentor reads overview", mentor, ActionReadOverview, 0, true},
		{"mentor cannot update identity", mentor, ActionUpdateIdentity, owner, false},
		{"mentor cannot manage lifecycle", mentor, ActionManageLifecycle, owner, false},

		{"admin updates identity", admin, ActionUpdateIdentity, owner, true},
		{"admin manages lifecycle", admin, ActionManageLifecycle, owner, true},
		{"admin reads overview", admin, ActionReadOverview, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, tc.target)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

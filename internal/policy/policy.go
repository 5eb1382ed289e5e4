// Package policy holds the capability matrix that decides which actor may
// perform which operation on a student aggregate. It is pure: services call
// Authorize before touching the repository.
package policy

import (
	"errors"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

// ErrForbidden is returned whenever the matrix denies an operation.
var ErrForbidden = errors.New("insufficient permissions")

// Action enumerates the guarded operations.
type Action string

const (
	// ActionReadProfile covers identity, parent and contact fields.
	ActionReadProfile Action = "profile.read"
	// ActionUpdateIdentity covers writes to identity/contact fields.
	ActionUpdateIdentity Action = "profile.update"
	// ActionReadAcademics covers subjects, attendance, blackmarks, feedback.
	ActionReadAcademics Action = "academics.read"
	// ActionWriteAcademics covers mutations of those collections.
	ActionWriteAcademics Action = "academics.write"
	// ActionManageLifecycle covers profile/account creation and deletion.
	ActionManageLifecycle Action = "lifecycle.manage"
	// ActionReadOverview covers aggregate-wide statistics.
	ActionReadOverview Action = "overview.read"
)

// Actor is the authenticated principal attached to a request.
type Actor struct {
	UserID uint
	Role   models.Role
}

// Authorize applies the capability matrix. ownerUserID is the account owning
// the targeted student profile; zero means the operation has no single
// target (aggregate-wide queries).
//
// Students only ever touch their own profile: identity read/write plus
// read-only academics. Mentors read and write academics for any student but
// never identity fields. Admins may do everything.
func Authorize(actor Actor, action Action, ownerUserID uint) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}

	self := ownerUserID != 0 && actor.UserID == ownerUserID

	switch actor.Role {
	case models.RoleStudent:
		switch action {
		case ActionReadProfile, ActionUpdateIdentity, ActionReadAcademics:
			if self {
				return nil
			}
		}
	case models.RoleMentor:
		switch action {
		case ActionReadProfile, ActionReadAcademics, ActionWriteAcademics, ActionReadOverview:
			return nil
		}
	}

	return ErrForbidden
}

// Package policy holds the authorization rules for jobs, applications and
// résumés. Every function is pure: the answer depends only on the arguments.
package policy

import (
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

// Actor is the identity performing an operation. The zero value is the
// anonymous actor.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil || a.Role == ""
}

func CanViewAllApplications(role user.Role) bool {
	return role == user.RoleAdmin
}

// CanViewOwnPublishedApplications covers applications on jobs the actor
// published.
func CanViewOwnPublishedApplications(role user.Role) bool {
	return role == user.RoleRecruiter
}

func CanManageApplication(actor Actor, publisherID uuid.UUID) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.Role == user.RoleAdmin {
		return true
	}
	return actor.Role == user.RoleRecruiter && actor.ID == publisherID
}

// CanTransitionApplicationStatus is independent of the actor: decided
// applications never move again.
func CanTransitionApplicationStatus(current application.Status) bool {
	return current == application.StatusPending
}

func CanManageJob(actor Actor, publisherID uuid.UUID) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.Role == user.RoleAdmin || actor.ID == publisherID
}

func CanCreateJob(role user.Role) bool {
	return role == user.RoleRecruiter
}

func CanSubmitApplications(role user.Role) bool {
	return role == user.RoleApplicant
}

func CanApplyToJob(role user.Role, status job.Status) bool {
	return CanSubmitApplications(role) && status == job.StatusOpen
}

// CanViewClosedJobs decides whether CLOSED jobs show up in listings and
// detail pages for the role.
func CanViewClosedJobs(role user.Role) bool {
	return role == user.RoleAdmin || role == user.RoleRecruiter
}

// CanDownloadResume denies applicants unconditionally, including the
// author of the application.
func CanDownloadResume(actor Actor, publisherID uuid.UUID) bool {
	if actor.IsAnonymous() {
		return false
	}
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleRecruiter:
		return actor.ID == publisherID
	default:
		return false
	}
}

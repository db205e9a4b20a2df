package auth

import (
	"github.com/fitstack/gymtracker/internal/httpapi"
)

type Resource string

const (
	ResourceMemberProfile   Resource = "member_profile"
	ResourceExerciseCatalog Resource = "exercise_catalog"
	ResourceWorkoutSession  Resource = "workout_session"
	ResourceWorkoutLog      Resource = "workout_log"
	ResourceBodyMeasurement Resource = "body_measurement"
	ResourceAnalytics       Resource = "analytics"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type access int

const (
	adminOnly access = iota
	ownerOrAdmin
	anyAuthenticated
)

// policy is the single ownership table for the whole API: resource type and
// operation address one access rule. A new resource type is one new row here,
// not scattered conditionals in handlers.
var policy = map[Resource]map[Operation]access{
	ResourceMemberProfile: {
		OpCreate: adminOnly,
		OpRead:   ownerOrAdmin,
		OpList:   adminOnly,
		OpUpdate: ownerOrAdmin,
		OpDelete: adminOnly,
	},
	ResourceExerciseCatalog: {
		OpCreate: adminOnly,
		OpRead:   anyAuthenticated,
		OpUpdate: adminOnly,
		OpDelete: adminOnly,
	},
	ResourceWorkoutSession: {
		OpCreate: ownerOrAdmin,
		OpRead:   ownerOrAdmin,
		OpUpdate: ownerOrAdmin,
		OpDelete: ownerOrAdmin,
	},
	ResourceWorkoutLog: {
		OpCreate: ownerOrAdmin,
		OpRead:   ownerOrAdmin,
		OpUpdate: ownerOrAdmin,
		OpDelete: ownerOrAdmin,
	},
	ResourceBodyMeasurement: {
		OpCreate: ownerOrAdmin,
		OpRead:   ownerOrAdmin,
		OpUpdate: ownerOrAdmin,
		OpDelete: ownerOrAdmin,
	},
	ResourceAnalytics: {
		OpRead: ownerOrAdmin,
	},
}

// Authorize decides whether caller may perform op on the given resource type.
// ownerID is the id of the member the concrete resource belongs to, directly
// (member_id field) or transitively (via its parent session); it is ignored
// for rules that do not depend on ownership. Denials are always reported as
// forbidden, never as not-found, so existence is not leaked. For indirectly
// owned resources the caller must establish existence of the parent BEFORE
// calling Authorize.
func Authorize(caller Caller, resource Resource, op Operation, ownerID int) error {
	rule, ok := policy[resource][op]
	if !ok {
		return httpapi.Forbidden("operation not permitted")
	}

	switch rule {
	case anyAuthenticated:
		return nil
	case adminOnly:
		if caller.IsAdmin() {
			return nil
		}
		return httpapi.Forbidden("admin required")
	case ownerOrAdmin:
		if caller.IsAdmin() || caller.ID == ownerID {
			return nil
		}
		return httpapi.Forbidden("not authorized")
	}

	return httpapi.Forbidden("operation not permitted")
}

package security

import (
	"fmt"
	"log/slog"
)

// Role represents a user role
type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

// Permission represents an action permission
type Permission string

const (
	PermSwipeAsJobseeker Permission = "swipe_as_jobseeker"
	PermSwipeAsEmployer  Permission = "swipe_as_employer"
	PermViewFeed         Permission = "view_feed"
	PermShareJobs        Permission = "share_jobs"
	PermExpressInterest  Permission = "express_job_interest"
	PermScheduleMeeting  Permission = "schedule_interview"
	PermListMatches      Permission = "list_matches"
	PermStreamEvents     Permission = "stream_match_events"
)

// RolePermissions maps roles to their permissions. Swiping and the two
// escalation actions are side-specific; everything match-level is shared.
var RolePermissions = map[Role][]Permission{
	RoleJobseeker: {
		PermSwipeAsJobseeker,
		PermViewFeed,
		PermExpressInterest,
		PermScheduleMeeting,
		PermListMatches,
		PermStreamEvents,
	},
	RoleEmployer: {
		PermSwipeAsEmployer,
		PermViewFeed,
		PermShareJobs,
		PermScheduleMeeting,
		PermListMatches,
		PermStreamEvents,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role Role) []Permission {
	return RolePermissions[role]
}

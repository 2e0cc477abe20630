package authz

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"projecthub/models"
)

// AccessError is returned when a caller's effective role does not meet an
// operation's minimum requirement. Callers detect it with errors.As and map
// it to a 403; the message is user-facing.
type AccessError struct {
	msg string
}

func (e *AccessError) Error() string { return e.msg }

func accessDenied(format string, args ...interface{}) *AccessError {
	return &AccessError{msg: "Access denied: " + fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when the entity an authorization check hangs off
// does not exist. Callers map it to a 404.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// Access is the result of resolving a (project, user) pair.
type Access struct {
	HasAccess bool
	Role      Role
}

// ResolveAccess merges the two ownership tiers into an effective role: the
// stored owner short-circuits to OWNER without touching the membership table,
// everyone else falls back to their membership row. This is the only place
// that merges the tiers; no other component re-implements the owner check.
func ResolveAccess(db *gorm.DB, projectID, userID uint) (Access, error) {
	var project models.Project
	err := db.Select("owner_id").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Access{}, nil
	}
	if err != nil {
		return Access{}, err
	}

	if project.OwnerID == userID {
		return Access{HasAccess: true, Role: RoleOwner}, nil
	}

	var membership models.ProjectMember
	err = db.Select("role").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Access{}, nil
	}
	if err != nil {
		return Access{}, err
	}

	return Access{HasAccess: true, Role: Role(membership.Role)}, nil
}

// RequireRole is the single enforcement chokepoint: it resolves the caller's
// effective role and fails with an AccessError unless it meets the minimum.
func RequireRole(db *gorm.DB, projectID, userID uint, required Role) (Role, error) {
	access, err := ResolveAccess(db, projectID, userID)
	if err != nil {
		return "", err
	}

	if !access.HasAccess {
		return "", accessDenied("you are not a member of this project")
	}

	if !HasRole(access.Role, required) {
		return "", accessDenied("%s role or higher is required", required)
	}

	return access.Role, nil
}

// RequireAccess admits any recognized member or the owner.
func RequireAccess(db *gorm.DB, projectID, userID uint) (Role, error) {
	return RequireRole(db, projectID, userID, RoleViewer)
}

// Package authz resolves effective project roles and enforces minimum role
// requirements. Every mutation path goes through RequireRole or one of its
// task/comment specializations before writing.
//
// This file is persistence-free on purpose: the predicates here are the same
// ones UI layers use for gating, so they take plain ids and roles and never
// touch the database.
package authz

import "projecthub/models"

// Role is a total-ordered capability tier scoped to one project.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

var roleRank = map[Role]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleMember: 2,
	RoleViewer: 1,
}

// Rank returns the role's position in the hierarchy, 0 for unknown roles.
func Rank(r Role) int {
	return roleRank[r]
}

// HasRole reports whether actual meets or exceeds required.
func HasRole(actual, required Role) bool {
	return roleRank[actual] >= roleRank[required]
}

func CanViewProject(r Role) bool {
	return HasRole(r, RoleViewer)
}

func CanCreateTasks(r Role) bool {
	return HasRole(r, RoleMember)
}

func CanEditTasks(r Role) bool {
	return HasRole(r, RoleMember)
}

func CanManageMembers(r Role) bool {
	return HasRole(r, RoleAdmin)
}

func CanEditProject(r Role) bool {
	return HasRole(r, RoleAdmin)
}

// CanDeleteProject is owner-exact: ADMIN outranks MEMBER everywhere else but
// still cannot delete a project.
func CanDeleteProject(r Role) bool {
	return r == RoleOwner
}

func CanPromoteToAdmin(actor Role) bool {
	return actor == RoleOwner
}

func CanDemoteFromAdmin(actor Role) bool {
	return actor == RoleOwner
}

// CanEditTaskComment: author only. Owners and admins cannot edit someone
// else's comment text.
func CanEditTaskComment(comment *models.TaskComment, userID uint) bool {
	return comment.AuthorID == userID
}

// CanDeleteTaskComment: the author, or an OWNER/ADMIN moderating the thread.
func CanDeleteTaskComment(comment *models.TaskComment, userID uint, userRole Role) bool {
	isAuthor := comment.AuthorID == userID
	isPrivileged := userRole == RoleOwner || userRole == RoleAdmin
	return isAuthor || isPrivileged
}

package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/authz"
	"projecthub/models"
	"projecthub/utils"
)

type MemberController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMemberController(db *gorm.DB, logger *log.Logger) *MemberController {
	return &MemberController{
		DB:     db,
		Logger: logger,
	}
}

type memberResponse struct {
	ID        uint               `json:"id"`
	ProjectID uint               `json:"project_id"`
	UserID    uint               `json:"user_id"`
	Role      string             `json:"role"`
	JoinedAt  string             `json:"joined_at"`
	User      models.UserSummary `json:"user"`
}

func mapMember(m *models.ProjectMember, u *models.User) memberResponse {
	return memberResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Role:      m.Role,
		JoinedAt:  m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		User:      u.Summary(),
	}
}

// GetMembers lists the delegated members of a project, oldest first. The
// owner is not in this list; callers read ownership off the project itself.
func (mc *MemberController) GetMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	if _, err := authz.RequireAccess(mc.DB, projectID, user.ID); err != nil {
		return respondActionError(c, "member_list_failed", "Failed to load members. Please try again.", err)
	}

	var members []models.ProjectMember
	err := mc.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return respondActionError(c, "member_list_failed", "Failed to load members. Please try again.", err)
	}

	responses := make([]memberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, mapMember(&members[i], &members[i].User))
	}
	return c.JSON(utils.SuccessResponse(responses))
}

// AddMemberByEmail grants a registered user delegated access to the project.
// Requires ADMIN or higher; granting ADMIN is owner-only. The owner can never
// be a target: ownership is not a membership row.
func (mc *MemberController) AddMemberByEmail(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var input struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", nil)
	}

	requesterRole, err := authz.RequireRole(mc.DB, projectID, user.ID, authz.RoleAdmin)
	if err != nil {
		return respondActionError(c, "member_add_failed", "Failed to add member. Please try again.", err)
	}
	if !authz.CanManageMembers(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you cannot add members to this project", nil)
	}
	if authz.Role(input.Role) == authz.RoleAdmin && !authz.CanPromoteToAdmin(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: only owners can add admins", nil)
	}

	var project models.Project
	if err := mc.DB.Select("owner_id").First(&project, projectID).Error; err != nil {
		return respondActionError(c, "member_add_failed", "Failed to add member. Please try again.", err)
	}

	var targetUser models.User
	err = mc.DB.Where("email = ?", email).First(&targetUser).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound,
			"User with this email not found. They must sign up first.", nil)
	}
	if err != nil {
		return respondActionError(c, "member_add_failed", "Failed to add member. Please try again.", err)
	}

	if project.OwnerID == targetUser.ID {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Project owner is already a member", nil)
	}

	var existing models.ProjectMember
	err = mc.DB.Where("project_id = ? AND user_id = ?", projectID, targetUser.ID).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already a member of this project", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondActionError(c, "member_add_failed", "Failed to add member. Please try again.", err)
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    targetUser.ID,
		Role:      input.Role,
	}
	// The composite unique index backstops concurrent duplicate invites
	if err := mc.DB.Create(&member).Error; err != nil {
		return respondActionError(c, "member_add_failed", "Failed to add member. Please try again.", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(mapMember(&member, &targetUser)))
}

// UpdateMemberRole changes a member's role. Promoting to or demoting from
// ADMIN is owner-only, and actors can never retarget themselves.
func (mc *MemberController) UpdateMemberRole(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))
	targetUserID := utils.ParseUint(c.Params("userId"))

	var input struct {
		Role string `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	requesterRole, err := authz.RequireRole(mc.DB, projectID, user.ID, authz.RoleAdmin)
	if err != nil {
		return respondActionError(c, "member_role_failed", "Failed to update member role. Please try again.", err)
	}
	if !authz.CanManageMembers(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you cannot update member roles", nil)
	}
	if targetUserID == user.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You cannot change your own role", nil)
	}

	// The owner never has a membership row, so targeting the owner lands
	// here as member-not-found.
	var member models.ProjectMember
	err = mc.DB.Preload("User").
		Where("project_id = ? AND user_id = ?", projectID, targetUserID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
	}
	if err != nil {
		return respondActionError(c, "member_role_failed", "Failed to update member role. Please try again.", err)
	}

	if authz.Role(input.Role) == authz.RoleAdmin && !authz.CanPromoteToAdmin(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: only owners can promote to admin", nil)
	}
	if authz.Role(member.Role) == authz.RoleAdmin && !authz.CanDemoteFromAdmin(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: only owners can demote admins", nil)
	}

	if err := mc.DB.Model(&member).Update("role", input.Role).Error; err != nil {
		return respondActionError(c, "member_role_failed", "Failed to update member role. Please try again.", err)
	}
	member.Role = input.Role

	return c.JSON(utils.SuccessResponse(mapMember(&member, &member.User)))
}

// RemoveMember revokes a member's delegated access. Removing an ADMIN is
// owner-only; actors cannot remove themselves.
func (mc *MemberController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))
	targetUserID := utils.ParseUint(c.Params("userId"))

	requesterRole, err := authz.RequireRole(mc.DB, projectID, user.ID, authz.RoleAdmin)
	if err != nil {
		return respondActionError(c, "member_remove_failed", "Failed to remove member. Please try again.", err)
	}
	if !authz.CanManageMembers(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you cannot remove members", nil)
	}
	if targetUserID == user.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"You cannot remove yourself from the project", nil)
	}

	var member models.ProjectMember
	err = mc.DB.Where("project_id = ? AND user_id = ?", projectID, targetUserID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
	}
	if err != nil {
		return respondActionError(c, "member_remove_failed", "Failed to remove member. Please try again.", err)
	}

	if authz.Role(member.Role) == authz.RoleAdmin && !authz.CanDemoteFromAdmin(requesterRole) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: only owners can remove admins", nil)
	}

	if err := mc.DB.Delete(&member).Error; err != nil {
		return respondActionError(c, "member_remove_failed", "Failed to remove member. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"removed": true}))
}

package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/authz"
	"projecthub/models"
)

func TestCreateTask(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	admin := createUser(t, db, "admin")
	member := createUser(t, db, "member")
	viewer := createUser(t, db, "viewer")
	project := createProject(t, db, owner)
	addMember(t, db, project, admin, authz.RoleAdmin)
	addMember(t, db, project, member, authz.RoleMember)
	addMember(t, db, project, viewer, authz.RoleViewer)

	path := fmt.Sprintf("/api/v1/projects/%d/tasks", project.ID)

	t.Run("admin creates with assignee notification", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, path, admin, map[string]interface{}{
			"title":       "Draft the rollout checklist",
			"priority":    models.TaskPriorityHigh,
			"assignee_id": member.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Draft the rollout checklist", data["title"])
		assert.Equal(t, models.TaskStatusTodo, data["status"])
		assert.Equal(t, member.Email, data["assignee"].(map[string]interface{})["email"])

		var notification models.Notification
		require.NoError(t, db.Where("user_id = ? AND type = ?", member.ID, models.NotificationTaskAssigned).
			First(&notification).Error)
		assert.Contains(t, notification.Message, "Draft the rollout checklist")
	})

	t.Run("member is denied", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, path, member, map[string]string{"title": "Nope"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("viewer is denied", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, path, viewer, map[string]string{"title": "Nope"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("assignee outside the project is rejected", func(t *testing.T) {
		outsider := createUser(t, db, "outsider")
		resp := doRequest(t, app, http.MethodPost, path, owner, map[string]interface{}{
			"title":       "Orphan assignment",
			"assignee_id": outsider.ID,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Assignee must be a member of the project", body["error"])
	})

	t.Run("project owner is a valid assignee", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, path, admin, map[string]interface{}{
			"title":       "Owner handles this one",
			"assignee_id": owner.ID,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestGetProjectTasksFilters(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	project := createProject(t, db, owner)

	createTask(t, db, project, owner) // stays TODO
	done := createTask(t, db, project, owner)
	require.NoError(t, db.Model(done).Updates(map[string]interface{}{
		"status":   models.TaskStatusDone,
		"priority": models.TaskPriorityHigh,
	}).Error)

	resp := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/projects/%d/tasks?status=DONE", project.ID), owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	tasks := body["data"].([]interface{})
	require.Len(t, tasks, 1)
	assert.Equal(t, float64(done.ID), tasks[0].(map[string]interface{})["ID"])
}

func TestGetMyTasks(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	colleague := createUser(t, db, "colleague")
	project := createProject(t, db, owner)
	addMember(t, db, project, colleague, authz.RoleMember)

	createTask(t, db, project, owner)
	assigned := createTask(t, db, project, colleague)
	require.NoError(t, db.Model(assigned).Update("assignee_id", owner.ID).Error)
	createTask(t, db, project, colleague) // not owner's

	resp := doRequest(t, app, http.MethodGet, "/api/v1/tasks/", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["data"].([]interface{}), 2)
}

func TestUpdateTaskCompletionNotifiesCreatorOnce(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	admin := createUser(t, db, "admin")
	project := createProject(t, db, owner)
	addMember(t, db, project, admin, authz.RoleAdmin)
	task := createTask(t, db, project, owner)

	path := fmt.Sprintf("/api/v1/tasks/%d", task.ID)
	countDoneNotifications := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND entity_id = ?",
				owner.ID, models.NotificationStatusChange, task.ID).
			Count(&n).Error)
		return n
	}

	// Moving into DONE notifies the creator exactly once.
	resp := doRequest(t, app, http.MethodPut, path, admin,
		map[string]string{"status": models.TaskStatusDone})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), countDoneNotifications())

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", owner.ID, models.NotificationStatusChange).
		First(&notification).Error)
	assert.Contains(t, notification.Message, "marked as DONE")

	// Re-saving an already-DONE task stays silent.
	resp = doRequest(t, app, http.MethodPut, path, admin,
		map[string]string{"status": models.TaskStatusDone, "priority": models.TaskPriorityLow})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), countDoneNotifications())

	// Reopening and completing again notifies again.
	resp = doRequest(t, app, http.MethodPut, path, admin,
		map[string]string{"status": models.TaskStatusTodo})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodPut, path, admin,
		map[string]string{"status": models.TaskStatusDone})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), countDoneNotifications())
}

func TestUpdateTaskReassignmentNotifiesNewAssignee(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, owner)
	addMember(t, db, project, member, authz.RoleMember)
	task := createTask(t, db, project, owner)

	resp := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", task.ID), owner,
		map[string]interface{}{"assignee_id": member.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var n int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", member.ID, models.NotificationTaskAssigned).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// Re-sending the same assignee does not re-notify.
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", task.ID), owner,
		map[string]interface{}{"assignee_id": member.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", member.ID, models.NotificationTaskAssigned).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdateTaskClearAssignee(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, owner)
	addMember(t, db, project, member, authz.RoleMember)
	task := createTask(t, db, project, owner)
	require.NoError(t, db.Model(task).Update("assignee_id", member.ID).Error)

	resp := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", task.ID), owner,
		map[string]interface{}{"clear_assignee": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	assert.Nil(t, reloaded.AssigneeID)
}

func TestDeleteTask(t *testing.T) {
	app, db := newTestServer(t)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, owner)
	addMember(t, db, project, member, authz.RoleMember)
	task := createTask(t, db, project, owner)
	require.NoError(t, db.Create(&models.ExecutionItem{TaskID: task.ID, Content: "step one"}).Error)
	comment := models.TaskComment{TaskID: task.ID, AuthorID: member.ID, Content: "looks good"}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Create(&models.TaskCommentReaction{CommentID: comment.ID, UserID: owner.ID, Emoji: "👍"}).Error)

	t.Run("member is denied", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", task.ID), member, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner deletes with full cascade", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", task.ID), owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var taskCount, itemCount, commentCount, reactionCount int64
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&taskCount).Error)
		require.NoError(t, db.Model(&models.ExecutionItem{}).Where("task_id = ?", task.ID).Count(&itemCount).Error)
		require.NoError(t, db.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&commentCount).Error)
		require.NoError(t, db.Model(&models.TaskCommentReaction{}).Where("comment_id = ?", comment.ID).Count(&reactionCount).Error)
		assert.Zero(t, taskCount)
		assert.Zero(t, itemCount)
		assert.Zero(t, commentCount)
		assert.Zero(t, reactionCount)
	})

	t.Run("missing task", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/api/v1/tasks/99999", owner, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/authz"
	"projecthub/models"
)

func TestGetDashboardStats(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")
	other := createUser(t, db, "other")

	owned := createProject(t, db, user)
	shared := createProject(t, db, other)
	addMember(t, db, shared, user, authz.RoleMember)

	createTask(t, db, owned, user) // TODO
	inProgress := createTask(t, db, owned, user)
	require.NoError(t, db.Model(inProgress).Update("status", models.TaskStatusInProgress).Error)

	assigned := createTask(t, db, shared, other)
	require.NoError(t, db.Model(assigned).Update("assignee_id", user.ID).Error)

	doneAssigned := createTask(t, db, shared, other)
	require.NoError(t, db.Model(doneAssigned).Updates(map[string]interface{}{
		"assignee_id": user.ID,
		"status":      models.TaskStatusDone,
	}).Error)

	seedNotification(t, db, user, false)
	seedNotification(t, db, user, true)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/dashboard/stats", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})

	assert.Equal(t, float64(1), data["owned_projects"])
	assert.Equal(t, float64(1), data["member_projects"])
	assert.Equal(t, float64(1), data["assigned_open_tasks"])
	assert.Equal(t, float64(1), data["unread_notifications"])

	byStatus := data["tasks_by_status"].(map[string]interface{})
	assert.Equal(t, float64(2), byStatus[models.TaskStatusTodo], "own TODO plus the open assigned task")
	assert.Equal(t, float64(1), byStatus[models.TaskStatusInProgress])
	assert.Equal(t, float64(1), byStatus[models.TaskStatusDone])
}

func TestGetDashboardStatsEmpty(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")

	resp := doRequest(t, app, http.MethodGet, "/api/v1/dashboard/stats", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["owned_projects"])

	// Zero buckets are still present so the UI never sees missing keys.
	byStatus := data["tasks_by_status"].(map[string]interface{})
	assert.Contains(t, byStatus, models.TaskStatusTodo)
	assert.Contains(t, byStatus, models.TaskStatusInProgress)
	assert.Contains(t, byStatus, models.TaskStatusDone)
}

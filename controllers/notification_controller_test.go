package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/models"
)

func seedNotification(t *testing.T, db *gorm.DB, user *models.User, read bool) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		UserID:   user.ID,
		Type:     models.NotificationStatusChange,
		EntityID: 1,
		Message:  "Alert: Project status updated to ACTIVE.",
		Read:     read,
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestGetNotifications(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")
	other := createUser(t, db, "other")

	seedNotification(t, db, user, false)
	seedNotification(t, db, user, true)
	seedNotification(t, db, other, false)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notifications/", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["data"].([]interface{}), 2, "other users' notifications must not leak")
}

func TestGetUnreadNotifications(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")

	unread := seedNotification(t, db, user, false)
	seedNotification(t, db, user, true)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notifications/unread", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, float64(unread.ID), entries[0].(map[string]interface{})["ID"])
}

func TestMarkNotificationRead(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")
	other := createUser(t, db, "other")
	notification := seedNotification(t, db, user, false)

	path := fmt.Sprintf("/api/v1/notifications/%d/read", notification.ID)

	t.Run("not addressed to the caller", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, path, other, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("addressee marks read", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, path, user, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reloaded models.Notification
		require.NoError(t, db.First(&reloaded, notification.ID).Error)
		assert.True(t, reloaded.Read)
	})

	t.Run("missing notification", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, "/api/v1/notifications/99999/read", user, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

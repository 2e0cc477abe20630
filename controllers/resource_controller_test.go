package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
)

func TestCreateResource(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")

	t.Run("creates a link by default", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/v1/resources/", user, map[string]string{
			"title": "Deployment Guide",
			"url":   "https://docs.example.com/deploy",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, models.ResourceTypeLink, body["type"])
		assert.Equal(t, float64(user.ID), body["creator_id"])
	})

	t.Run("missing fields yield the plain-text body", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/v1/resources/", user, map[string]string{
			"title": "No URL here",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "MISSING_REQUIRED_FIELDS", readBody(t, resp))
	})
}

func TestGetResourcesTypeFilter(t *testing.T) {
	app, db := newTestServer(t)
	user := createUser(t, db, "user")

	require.NoError(t, db.Create(&models.Resource{
		Title: "Guide", URL: "https://example.com/a", Type: models.ResourceTypeLink, CreatorID: user.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Resource{
		Title: "Logo", URL: "https://example.com/b", Type: models.ResourceTypeImage, CreatorID: user.ID,
	}).Error)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/resources/?type=IMAGE", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "Logo", entries[0].(map[string]interface{})["title"])
}

func TestUpdateResourceCreatorOnly(t *testing.T) {
	app, db := newTestServer(t)
	creator := createUser(t, db, "creator")
	other := createUser(t, db, "other")

	resource := &models.Resource{
		Title: "Checklist", URL: "https://example.com/c", Type: models.ResourceTypeFile, CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(resource).Error)

	path := fmt.Sprintf("/api/v1/resources/%d", resource.ID)

	t.Run("non-creator is denied", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPatch, path, other,
			map[string]string{"title": "Taken over"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED_ACCESS", readBody(t, resp))
	})

	t.Run("creator updates", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPatch, path, creator,
			map[string]string{"title": "Release Checklist"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reloaded models.Resource
		require.NoError(t, db.First(&reloaded, resource.ID).Error)
		assert.Equal(t, "Release Checklist", reloaded.Title)
	})
}

func TestDeleteResource(t *testing.T) {
	app, db := newTestServer(t)
	creator := createUser(t, db, "creator")
	other := createUser(t, db, "other")

	resource := &models.Resource{
		Title: "Old asset", URL: "https://example.com/d", CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(resource).Error)

	path := fmt.Sprintf("/api/v1/resources/%d", resource.ID)

	t.Run("non-creator is denied", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, path, other, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("creator deletes", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, path, creator, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.Resource{}).Where("id = ?", resource.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("missing resource", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/api/v1/resources/99999", creator, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "RESOURCE_NOT_FOUND", readBody(t, resp))
	})
}

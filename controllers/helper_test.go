package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"projecthub/authz"
	"projecthub/config"
	"projecthub/models"
	"projecthub/routes"
	"projecthub/utils"
)

const testSigningSecret = "test-signing-secret"

// stubUploader records uploads instead of hitting the storage provider.
type stubUploader struct {
	lastFilename string
}

func (s *stubUploader) Upload(filename, contentType string, body io.Reader, size int64) (string, error) {
	s.lastFilename = filename
	return "https://storage.test/" + filename, nil
}

func newTestServer(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig.ProviderJWTSecret = testSigningSecret
	config.AppConfig.RateLimitUpload = 100
	config.AppConfig.Redis.Enabled = false

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))

	app := fiber.New(fiber.Config{BodyLimit: 32 << 20})
	routes.SetupRoutes(app, db, utils.NewNotifier(db), &stubUploader{})
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, tag string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID: "ext_" + tag,
		Email:      fmt.Sprintf("%s@example.com", tag),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProject(t *testing.T, db *gorm.DB, owner *models.User) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:    "Launch Plan",
		Status:  models.ProjectStatusActive,
		OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func addMember(t *testing.T, db *gorm.DB, project *models.Project, user *models.User, role authz.Role) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      string(role),
	}).Error)
}

func createTask(t *testing.T, db *gorm.DB, project *models.Project, creator *models.User) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:     "Ship the release",
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: project.ID,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// signToken issues the kind of session token the identity provider would.
func signToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := utils.IdentityClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ExternalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path string, user *models.User, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, user))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

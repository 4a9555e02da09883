package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/checkin-api/internal/cache"
	"github.com/yukikurage/checkin-api/internal/database"
	"github.com/yukikurage/checkin-api/internal/dto"
	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/repository"
	"github.com/yukikurage/checkin-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CheckInHandlerTestSuite defines the test suite for CheckInHandler
type CheckInHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *CheckInHandler
}

// SetupTest runs before each test
func (suite *CheckInHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.CheckIn{},
		&models.ProjectJoinRequest{},
		&models.ProjectInvitation{},
		&models.DailyStat{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	clock := func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}

	checkInService := services.NewCheckInService(repository.NewCheckInRepository(suite.db), cache.NewMemorySnapshotStore())
	checkInService.SetClock(clock)
	projectService := services.NewProjectService(repository.NewProjectRepository(suite.db), cache.NewMemorySnapshotStore())
	projectService.SetClock(clock)
	suite.handler = NewCheckInHandler(checkInService, projectService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *CheckInHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *CheckInHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *CheckInHandlerTestSuite) createTestProject(name string, ownerID uint64) *models.Project {
	project := &models.Project{
		Name:           name,
		InviteCode:     name + "-CODE",
		VisibilityType: models.VisibilityPublic,
		CreatedBy:      ownerID,
	}
	suite.db.Create(project)
	suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      models.RoleOwner,
		JoinedAt:  time.Now(),
	})
	return project
}

// Helper function to create authenticated context
func (suite *CheckInHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

// Helper function to set project context (simulates RequireProjectAccess middleware)
func (suite *CheckInHandlerTestSuite) setProjectContext(c *gin.Context, project models.Project, userID uint64, role models.ProjectRole) {
	c.Set("project", project)
	c.Set("project_member", models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      role,
	})
}

// TestCreateCheckIn_Success tests recording today's check-in
func (suite *CheckInHandlerTestSuite) TestCreateCheckIn_Success() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	requestBody := map[string]interface{}{
		"condition": 8,
		"note":      "ready to go",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CreateCheckIn(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.CheckInDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2026-03-10", response.Date)
	assert.Equal(suite.T(), 8, response.Condition)
}

// TestCreateCheckIn_ZeroCondition tests that condition 0 passes required binding
func (suite *CheckInHandlerTestSuite) TestCreateCheckIn_ZeroCondition() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	requestBody := map[string]interface{}{
		"condition": 0,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CreateCheckIn(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

// TestCreateCheckIn_ConditionOutOfRange tests rejecting an out-of-range condition
func (suite *CheckInHandlerTestSuite) TestCreateCheckIn_ConditionOutOfRange() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	requestBody := map[string]interface{}{
		"condition": 11,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CreateCheckIn(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateCheckIn_DuplicateDay tests that a second same-day submission conflicts
func (suite *CheckInHandlerTestSuite) TestCreateCheckIn_DuplicateDay() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	requestBody := map[string]interface{}{
		"condition": 8,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)
	suite.handler.CreateCheckIn(c)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	c, w = suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)
	suite.handler.CreateCheckIn(c)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestCreateCheckIn_ArchivedProject tests that an archived project rejects check-ins
func (suite *CheckInHandlerTestSuite) TestCreateCheckIn_ArchivedProject() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)
	archivedAt := time.Now()
	project.ArchivedAt = &archivedAt
	suite.db.Save(project)

	requestBody := map[string]interface{}{
		"condition": 8,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects/1/checkins", body, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CreateCheckIn(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestCancelTodayCheckIn_Success tests cancelling today's check-in
func (suite *CheckInHandlerTestSuite) TestCancelTodayCheckIn_Success() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	suite.db.Create(&models.CheckIn{
		ProjectID: project.ID,
		UserID:    user.ID,
		Date:      "2026-03-10",
		Condition: 5,
	})

	c, w := suite.createAuthContext("DELETE", "/api/projects/1/checkins/today", nil, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CancelTodayCheckIn(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// The row is soft deleted
	var count int64
	suite.db.Model(&models.CheckIn{}).
		Where("project_id = ? AND user_id = ? AND date = ?", project.ID, user.ID, "2026-03-10").
		Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestCancelTodayCheckIn_NothingToCancel tests cancelling with no check-in today
func (suite *CheckInHandlerTestSuite) TestCancelTodayCheckIn_NothingToCancel() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1/checkins/today", nil, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.CancelTodayCheckIn(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestListCheckIns_Success tests the paginated listing
func (suite *CheckInHandlerTestSuite) TestListCheckIns_Success() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	for _, date := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		suite.db.Create(&models.CheckIn{
			ProjectID: project.ID,
			UserID:    user.ID,
			Date:      date,
			Condition: 6,
		})
	}

	c, w := suite.createAuthContext("GET", "/api/projects/1/checkins", nil, user.ID)
	c.Request.URL.RawQuery = "page=1&limit=2"
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.ListCheckIns(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.CheckInListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), response.TotalCount)
	assert.Len(suite.T(), response.CheckIns, 2)
}

// TestGetStreak tests the streak endpoint over a consecutive run
func (suite *CheckInHandlerTestSuite) TestGetStreak() {
	user := suite.createTestUser("checker")
	project := suite.createTestProject("Team", user.ID)

	for _, date := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		suite.db.Create(&models.CheckIn{
			ProjectID: project.ID,
			UserID:    user.ID,
			Date:      date,
			Condition: 6,
		})
	}

	c, w := suite.createAuthContext("GET", "/api/projects/1/streak", nil, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.GetStreak(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(3), response["streak"])
}

// TestMaterializeDailyStat tests persisting today's snapshot row
func (suite *CheckInHandlerTestSuite) TestMaterializeDailyStat() {
	user := suite.createTestUser("checker")
	other := suite.createTestUser("other")
	project := suite.createTestProject("Team", user.ID)
	suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    other.ID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	})

	suite.db.Create(&models.CheckIn{
		ProjectID: project.ID,
		UserID:    user.ID,
		Date:      "2026-03-10",
		Condition: 8,
	})

	c, w := suite.createAuthContext("POST", "/api/projects/1/stats/snapshot", nil, user.ID)
	suite.setProjectContext(c, *project, user.ID, models.RoleOwner)

	suite.handler.MaterializeDailyStat(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.DailyStat
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, response.MemberCount)
	assert.Equal(suite.T(), 1, response.CheckInCount)
	assert.Equal(suite.T(), 8.0, response.AvgCondition)
	assert.Equal(suite.T(), 50, response.ParticipationRate)
}

// TestSuite runs the test suite
func TestCheckInHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CheckInHandlerTestSuite))
}

package handlers

import (
	"context"
	"net/http"

	"marketplace/internal/models"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpUser  *models.User
	signUpToken string
	signUpErr   error

	signInUser  *models.User
	signInToken string
	signInErr   error

	parseID  int
	parseErr error

	authUser *models.User
	authErr  error

	changeErr error
	deleteErr error

	lastSignUpEmail    string
	lastSignUpPassword string
	lastSignInEmail    string
	lastAuthToken      string
	lastChangeUserID   int
	lastDeleteUserID   int
}

func (m *mockAuth) SignUp(ctx context.Context, email, password string) (*models.User, string, error) {
	m.lastSignUpEmail = email
	m.lastSignUpPassword = password
	return m.signUpUser, m.signUpToken, m.signUpErr
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	m.lastSignInEmail = email
	return m.signInUser, m.signInToken, m.signInErr
}

func (m *mockAuth) ParseToken(accessToken string) (int, error) {
	return m.parseID, m.parseErr
}

func (m *mockAuth) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	m.lastAuthToken = accessToken
	return m.authUser, m.authErr
}

func (m *mockAuth) ChangePassword(ctx context.Context, userID int, current, next string) error {
	m.lastChangeUserID = userID
	return m.changeErr
}

func (m *mockAuth) DeleteAccount(ctx context.Context, userID int) error {
	m.lastDeleteUserID = userID
	return m.deleteErr
}

type mockItems struct {
	createItem models.Item
	createErr  error
	listItems  []models.Item
	listErr    error
	browseResp []models.Item
	browseErr  error
	getItem    models.Item
	getErr     error
	updateItem models.Item
	updateErr  error
	deleteErr  error

	lastCreateOwner  int
	lastCreateFields map[string]any
	lastListOwner    int
	lastBrowseFilter service.BrowseFilter
	lastGetID        string
	lastUpdateID     string
	lastUpdateFields map[string]any
	lastDeleteID     string
}

func (m *mockItems) Create(ctx context.Context, ownerID int, fields map[string]any) (models.Item, error) {
	m.lastCreateOwner = ownerID
	m.lastCreateFields = fields
	return m.createItem, m.createErr
}

func (m *mockItems) List(ctx context.Context, ownerID int) ([]models.Item, error) {
	m.lastListOwner = ownerID
	return m.listItems, m.listErr
}

func (m *mockItems) Browse(ctx context.Context, f service.BrowseFilter) ([]models.Item, error) {
	m.lastBrowseFilter = f
	return m.browseResp, m.browseErr
}

func (m *mockItems) Get(ctx context.Context, id string) (models.Item, error) {
	m.lastGetID = id
	return m.getItem, m.getErr
}

func (m *mockItems) Update(ctx context.Context, id string, fields map[string]any) (models.Item, error) {
	m.lastUpdateID = id
	m.lastUpdateFields = fields
	return m.updateItem, m.updateErr
}

func (m *mockItems) Delete(ctx context.Context, id string) error {
	m.lastDeleteID = id
	return m.deleteErr
}

type mockEventLog struct {
	resp       []models.Event
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockFeed struct {
	published []models.Event
}

func (m *mockFeed) Publish(e models.Event) { m.published = append(m.published, e) }

func (m *mockFeed) Subscribe() (<-chan models.Event, func()) {
	ch := make(chan models.Event)
	return ch, func() { close(ch) }
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/api"
	"github.com/heavenboards/user-service/internal/app"
	iauth "github.com/heavenboards/user-service/internal/auth"
	sharedtestutil "github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/pkg/response"
)

const jwtSecret = "test-suite-super-secret-key-32-bytes!!"

// Env encapsulates a fully-wired API instance backed by an in-memory database
// and a stub Project service for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *iauth.JWTService
	Projects *ProjectService
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         jwtSecret,
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	projectSvc := NewProjectService(t)
	client, err := projects.NewClient(projects.Config{BaseURL: projectSvc.URL(), Timeout: 2 * time.Second})
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT:      app.JWTSettings{Secret: jwtSecret, Issuer: "test-suite", TTL: time.Hour},
			Password: app.PasswordSettings{BcryptCost: 4},
		},
		Server: app.ServerConfig{
			RateLimit: app.RateLimitConfig{Requests: 1000, Window: time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}

	router, err := api.NewRouter(db, jwtSvc, client, cfg)
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Projects: projectSvc,
	}
}

// AuthResult mirrors the register/authenticate response body.
type AuthResult struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
	Token  string `json:"token"`
	Errors []struct {
		ErrorCode string `json:"errorCode"`
	} `json:"errors"`
}

// InvitationResult mirrors the create/accept/reject response body.
type InvitationResult struct {
	Status       string `json:"status"`
	InvitationID string `json:"invitationId"`
	Errors       []struct {
		FailedInvitationID string `json:"failedInvitationId"`
		ErrorCode          string `json:"errorCode"`
	} `json:"errors"`
}

// Register creates an account through the API and returns the result.
func (e *Env) Register(username, password string) AuthResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":  username,
		"password":  password,
		"firstName": strings.ToUpper(username[:1]) + username[1:],
		"lastName":  "Tester",
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var result AuthResult
	DecodeJSON(e.T, w, &result)
	require.Equal(e.T, "OK", result.Status, w.Body.String())
	require.NotEmpty(e.T, result.Token)
	return result
}

// APIResponse represents the envelope used for health and error responses.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the envelope from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeJSON unmarshals the response body into dest.
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// ProjectService is an in-memory stand-in for the remote Project service.
type ProjectService struct {
	server *httptest.Server

	mu          sync.Mutex
	projects    map[string]projects.Project
	failUpdates bool
	authHeaders []string
	updates     int
}

// NewProjectService starts the stub; it is shut down via t.Cleanup.
func NewProjectService(t *testing.T) *ProjectService {
	t.Helper()
	s := &ProjectService{projects: make(map[string]projects.Project)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/project/", s.handleFind)
	mux.HandleFunc("/api/v1/project", s.handleUpdate)
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

// URL is the stub's base URL.
func (s *ProjectService) URL() string {
	return s.server.URL
}

// Put stores a project.
func (s *ProjectService) Put(p projects.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// Get returns the stored project.
func (s *ProjectService) Get(id string) (projects.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	return p, ok
}

// FailUpdates makes every subsequent update answer 500.
func (s *ProjectService) FailUpdates(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdates = fail
}

// Updates reports how many successful updates were received.
func (s *ProjectService) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// AuthHeaders returns the Authorization headers received so far.
func (s *ProjectService) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

func (s *ProjectService) handleFind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/project/")

	s.mu.Lock()
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	p, ok := s.projects[id]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func (s *ProjectService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var p projects.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	if s.failUpdates {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.projects[p.ID] = p
	s.updates++
	w.WriteHeader(http.StatusOK)
}

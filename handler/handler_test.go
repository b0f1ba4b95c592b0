package handler

import (
	"bytes"
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/auth"
	"clearpath-signals/pkg/broadcast"
	"clearpath-signals/pkg/testdb"
	"clearpath-signals/pkg/throttle"
	"clearpath-signals/repository"
	"clearpath-signals/service"
	"context"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type nopStore struct{}

func (nopStore) Put(context.Context, string, io.Reader, int64, string) error { return nil }

func (nopStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://minio.local/" + key, nil
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, dto.VideoDispatch) error { return nil }

type testServer struct {
	repo   repository.Repository
	hub    *broadcast.Hub
	ingest service.IngestService
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewRepo(testdb.Open(t))
	hub := broadcast.NewHub()
	t.Cleanup(hub.Close)

	ingest := service.NewIngestService(repo, throttle.New(3*time.Second, time.Minute, 100), hub, service.WithInlineSnapshots())
	services := Services{
		Ingest:     ingest,
		Upload:     service.NewUploadService(repo, nopStore{}, nopDispatcher{}, ingest, 1<<20, time.Hour),
		Simulation: service.NewSimulationService(repo),
		Logs:       service.NewLogService(repo),
		Auth:       service.NewAuthService(repo, auth.NewTokenManager("test-secret", time.Hour)),
	}

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	New(services, hub, 1<<20).Routes(r)

	return &testServer{repo: repo, hub: hub, ingest: ingest, router: r}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedSession(t *testing.T, sessionID string, owner *entities.User) {
	t.Helper()
	session := &entities.Session{
		SessionID: sessionID,
		Status:    constant.SessionStatusProcessing,
		StartedAt: time.Now().UTC(),
	}
	if owner != nil {
		session.UserID = &owner.ID
	}
	if err := s.repo.CreateSession(context.Background(), session); err != nil {
		t.Fatal(err)
	}
}

// register creates a user through the API and returns it with its token.
func (s *testServer) register(t *testing.T, email string) (*entities.User, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Name: "Operator", Email: email, Password: "hunter22"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	var resp dto.AuthResponse
	decodeBody(t, rec, &resp)
	return resp.User, resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body)
	}
}

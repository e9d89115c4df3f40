// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github-activity-service/internal/errors"
	"github-activity-service/internal/model"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) UpsertProfile(ctx context.Context, profile model.Profile, syncedAt time.Time) error {
	args := m.Called(ctx, profile, syncedAt)
	return args.Error(0)
}
func (m *MockQuerier) GetProfile(ctx context.Context) (model.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Profile), args.Error(1)
}
func (m *MockQuerier) UpsertRepository(ctx context.Context, repo model.Repository, syncedAt time.Time) error {
	args := m.Called(ctx, repo, syncedAt)
	return args.Error(0)
}
func (m *MockQuerier) DeleteRepositoriesNotIn(ctx context.Context, githubIDs []int64) (int64, error) {
	args := m.Called(ctx, githubIDs)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Repository), args.Error(1)
}
func (m *MockQuerier) ListRepositoryIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockQuerier) UpsertEvent(ctx context.Context, event model.Event, syncedAt time.Time) error {
	args := m.Called(ctx, event, syncedAt)
	return args.Error(0)
}
func (m *MockQuerier) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) ListRecentEvents(ctx context.Context, limit int32) ([]model.Event, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Event), args.Error(1)
}
func (m *MockQuerier) ReplaceStats(ctx context.Context, stats model.Stats, syncedAt time.Time) error {
	args := m.Called(ctx, stats, syncedAt)
	return args.Error(0)
}
func (m *MockQuerier) GetStats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

type fakeLanguageFetcher struct {
	langs map[string]int
	err   error
}

func (f *fakeLanguageFetcher) GetLanguages(ctx context.Context, username, repo string) (map[string]int, error) {
	return f.langs, f.err
}

type fakeSyncTrigger struct {
	err error
}

func (f *fakeSyncTrigger) SyncNow(ctx context.Context) error { return f.err }

func testRouter(db *MockQuerier, gh LanguageFetcher, syncer SyncTrigger) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRouter(db, gh, syncer, "octo", logger)
}

func doRequest(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetProfile(t *testing.T) {
	t.Run("returns the synced profile", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetProfile", mock.Anything).Return(model.Profile{Login: "octo"}, nil).Once()
		router := testRouter(mockQ, nil, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/profile")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Success bool          `json:"success"`
			Data    model.Profile `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "octo", body.Data.Login)
		mockQ.AssertExpectations(t)
	})

	t.Run("404 before the first successful sync", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetProfile", mock.Anything).Return(model.Profile{}, pgx.ErrNoRows).Once()
		router := testRouter(mockQ, nil, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/profile")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_GetRepos(t *testing.T) {
	mockQ := new(MockQuerier)
	mockQ.On("ListRepositories", mock.Anything).Return([]model.Repository{
		{GithubID: 2, Name: "newer"},
		{GithubID: 1, Name: "older"},
	}, nil).Once()
	router := testRouter(mockQ, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/v1/github/repos")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool               `json:"success"`
		Count   int                `json:"count"`
		Data    []model.Repository `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "newer", body.Data[0].Name)
}

func TestHandler_GetStats(t *testing.T) {
	t.Run("404 before the first successful sync", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetStats", mock.Anything).Return(model.Stats{}, pgx.ErrNoRows).Once()
		router := testRouter(mockQ, nil, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/stats")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("map fields serialize as plain objects", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetStats", mock.Anything).Return(model.Stats{
			TotalStars:           5,
			LanguageDistribution: map[string]int{"Go": 3},
			CommitsByMonth:       map[string]int{"Jun": 12},
		}, nil).Once()
		router := testRouter(mockQ, nil, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/stats")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data map[string]json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.JSONEq(t, `{"Go": 3}`, string(body.Data["languageDistribution"]))
		assert.JSONEq(t, `{"Jun": 12}`, string(body.Data["commitsByMonth"]))
	})
}

func TestHandler_GetEvents(t *testing.T) {
	mockQ := new(MockQuerier)
	mockQ.On("ListRecentEvents", mock.Anything, int32(100)).Return([]model.Event{
		{GithubID: "e2", Type: model.EventTypePush},
	}, nil).Once()
	router := testRouter(mockQ, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/v1/github/events")

	assert.Equal(t, http.StatusOK, rec.Code)
	mockQ.AssertExpectations(t)
}

func TestHandler_GetLanguages(t *testing.T) {
	t.Run("proxies the breakdown", func(t *testing.T) {
		gh := &fakeLanguageFetcher{langs: map[string]int{"Go": 900}}
		router := testRouter(new(MockQuerier), gh, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/repos/web/languages")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"Go":900`)
	})

	t.Run("unknown repo maps to 404", func(t *testing.T) {
		gh := &fakeLanguageFetcher{err: &apperrors.FetchError{StatusCode: 404, Status: "404 Not Found"}}
		router := testRouter(new(MockQuerier), gh, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/repos/nope/languages")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upstream outage maps to 502", func(t *testing.T) {
		gh := &fakeLanguageFetcher{err: &apperrors.FetchError{StatusCode: 503, Status: "503 Service Unavailable"}}
		router := testRouter(new(MockQuerier), gh, nil)

		rec := doRequest(t, router, http.MethodGet, "/v1/github/repos/web/languages")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_TriggerSync(t *testing.T) {
	t.Run("reports success", func(t *testing.T) {
		router := testRouter(new(MockQuerier), nil, &fakeSyncTrigger{})

		rec := doRequest(t, router, http.MethodPost, "/v1/github/sync")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "synced successfully")
	})

	t.Run("fetch failure surfaces as 502", func(t *testing.T) {
		trigger := &fakeSyncTrigger{err: &apperrors.FetchError{StatusCode: 500, Status: "500 Internal Server Error"}}
		router := testRouter(new(MockQuerier), nil, trigger)

		rec := doRequest(t, router, http.MethodPost, "/v1/github/sync")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("storage failure surfaces as 500", func(t *testing.T) {
		trigger := &fakeSyncTrigger{err: errors.New("begin sync transaction: pool closed")}
		router := testRouter(new(MockQuerier), nil, trigger)

		rec := doRequest(t, router, http.MethodPost, "/v1/github/sync")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_Health(t *testing.T) {
	router := testRouter(new(MockQuerier), nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

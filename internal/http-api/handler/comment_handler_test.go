package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"animehub/internal/http-api/dto"
	"animehub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommentService is a mock implementation of service.CommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) GetAnimeComments(animeID int64, page, limit int) (*dto.PaginatedCommentsResponse, error) {
	args := m.Called(animeID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedCommentsResponse), args.Error(1)
}

func (m *MockCommentService) CreateComment(userID string, animeID int64, content string) (*dto.CommentResponse, error) {
	args := m.Called(userID, animeID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) UpdateComment(commentID, userID, content string) (*dto.CommentResponse, error) {
	args := m.Called(commentID, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) DeleteComment(commentID, userID, role string) error {
	args := m.Called(commentID, userID, role)
	return args.Error(0)
}

func (m *MockCommentService) ToggleLike(commentID, userID string) (*dto.CommentResponse, error) {
	args := m.Called(commentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

// mockAuthMiddleware injects the identity the real middleware would extract
// from the bearer token.
func mockAuthMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("username", "testuser")
		c.Set("role", role)
		c.Next()
	}
}

func setupCommentRouter(svc service.CommentService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewCommentHandler(svc)
	public := router.Group("/api")
	authed := router.Group("/api", mockAuthMiddleware(userID, role))
	admin := router.Group("/api/admin", mockAuthMiddleware(userID, role))
	h.RegisterRoutes(public, authed, admin)
	return router
}

func pageOfComments(n int, page, limit int, totalItems int64) *dto.PaginatedCommentsResponse {
	comments := make([]dto.CommentResponse, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, dto.CommentResponse{
			ID:        fmt.Sprintf("cm-%d", i),
			UserID:    "user-1",
			Username:  "testuser",
			AnimeID:   12,
			Content:   "comment body",
			CreatedAt: time.Now(),
		})
	}
	return dto.NewPaginatedCommentsResponse(comments, totalItems, page, limit)
}

func TestListByAnime(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	// 15 comments, page 1 of 2
	mockService.On("GetAnimeComments", int64(12), 1, 10).Return(pageOfComments(10, 1, 10, 15), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/anime/12/comments?page=1&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Comments   []dto.CommentResponse `json:"comments"`
		Pagination dto.Pagination        `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Comments, 10)
	assert.Equal(t, 1, resp.Pagination.Current)
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, int64(15), resp.Pagination.TotalItems)
	mockService.AssertExpectations(t)
}

func TestListByAnimeDefaultsAndClamps(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	// no query params -> page 1, limit 10
	mockService.On("GetAnimeComments", int64(12), 1, 10).Return(pageOfComments(3, 1, 10, 3), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anime/12/comments", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// absurd limit falls back to the default
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anime/12/comments?page=0&limit=5000", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.AssertNumberOfCalls(t, "GetAnimeComments", 2)
}

func TestListByAnimeUnknownAnime(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	mockService.On("GetAnimeComments", int64(404), 1, 10).Return(nil, service.ErrAnimeNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anime/404/comments", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListByAnimeInvalidID(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anime/not-a-number/comments", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetAnimeComments")
}

func TestCreateComment(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	created := &dto.CommentResponse{ID: "cm-1", UserID: "user-1", AnimeID: 12, Content: "first!"}
	mockService.On("CreateComment", "user-1", int64(12), "first!").Return(created, nil)

	body, _ := json.Marshal(dto.CreateCommentDTO{Content: "first!"})
	req := httptest.NewRequest(http.MethodPost, "/api/anime/12/comments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cm-1", resp.ID)
	assert.Equal(t, "first!", resp.Content)
	mockService.AssertExpectations(t)
}

func TestCreateCommentPaddedTextReachesService(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	// raw body is over 1000 characters but trims under the limit; binding must
	// not reject it before the service can trim
	padded := "   " + strings.Repeat("x", 999) + "   "
	created := &dto.CommentResponse{ID: "cm-1", UserID: "user-1", AnimeID: 12}
	mockService.On("CreateComment", "user-1", int64(12), padded).Return(created, nil)

	body, _ := json.Marshal(dto.CreateCommentDTO{Content: padded})
	req := httptest.NewRequest(http.MethodPost, "/api/anime/12/comments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateCommentTooLong(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	long := strings.Repeat("x", 1001)
	mockService.On("CreateComment", "user-1", int64(12), long).Return(nil, service.ErrCommentTooLong)

	body, _ := json.Marshal(dto.CreateCommentDTO{Content: long})
	req := httptest.NewRequest(http.MethodPost, "/api/anime/12/comments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCommentMissingText(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/anime/12/comments", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateComment")
}

func TestCreateCommentRateLimited(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	mockService.On("CreateComment", "user-1", int64(12), "spam").Return(nil, service.ErrTooManyComments)

	body, _ := json.Marshal(dto.CreateCommentDTO{Content: "spam"})
	req := httptest.NewRequest(http.MethodPost, "/api/anime/12/comments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestUpdateComment(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	updated := &dto.CommentResponse{ID: "cm-1", UserID: "user-1", Content: "edited"}
	mockService.On("UpdateComment", "cm-1", "user-1", "edited").Return(updated, nil)

	body, _ := json.Marshal(dto.UpdateCommentDTO{Content: "edited"})
	req := httptest.NewRequest(http.MethodPut, "/api/comments/cm-1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "edited", resp.Content)
}

func TestUpdateCommentForbidden(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "intruder", "user")

	mockService.On("UpdateComment", "cm-1", "intruder", "hijacked").Return(nil, service.ErrNotCommentAuthor)

	body, _ := json.Marshal(dto.UpdateCommentDTO{Content: "hijacked"})
	req := httptest.NewRequest(http.MethodPut, "/api/comments/cm-1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateCommentNotFound(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	mockService.On("UpdateComment", "missing", "user-1", "text").Return(nil, service.ErrCommentNotFound)

	body, _ := json.Marshal(dto.UpdateCommentDTO{Content: "text"})
	req := httptest.NewRequest(http.MethodPut, "/api/comments/missing", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteComment(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-1", "user")

	mockService.On("DeleteComment", "cm-1", "user-1", "user").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/comments/cm-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestDeleteCommentForbidden(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "intruder", "user")

	mockService.On("DeleteComment", "cm-1", "intruder", "user").Return(service.ErrNotCommentAuthor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/comments/cm-1", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDeleteBypassesOwnership(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "admin-1", "admin")

	mockService.On("DeleteComment", "cm-1", "admin-1", "admin").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/comments/cm-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestToggleLike(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-2", "user")

	liked := &dto.CommentResponse{ID: "cm-1", LikeCount: 1, LikedBy: []string{"user-2"}}
	mockService.On("ToggleLike", "cm-1", "user-2").Return(liked, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/comments/cm-1/like", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.LikeCount)
	assert.Equal(t, []string{"user-2"}, resp.LikedBy)
}

func TestToggleLikeNotFound(t *testing.T) {
	mockService := new(MockCommentService)
	router := setupCommentRouter(mockService, "user-2", "user")

	mockService.On("ToggleLike", "missing", "user-2").Return(nil, service.ErrCommentNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/comments/missing/like", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

package commentfeed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// REST client for the comment API.

// API is the slice of the REST surface the feed consumes. RestClient is the
// real implementation; tests substitute a fake.
type API interface {
	ListComments(animeID int64, page, limit int) (*Page, error)
	CreateComment(animeID int64, text string) (*Comment, error)
	UpdateComment(commentID, text string) (*Comment, error)
	DeleteComment(commentID string) error
	ToggleLike(commentID string) (*Comment, error)
}

// APIError carries the status and error message of a failed request
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// defines the HTTP client structure and methods
type RestClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// constructor for REST client
func NewRestClient(baseURL, token string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token: token,
	}
}

func (c *RestClient) ListComments(animeID int64, page, limit int) (*Page, error) {
	var out Page
	path := fmt.Sprintf("/api/anime/%d/comments?page=%d&limit=%d", animeID, page, limit)
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestClient) CreateComment(animeID int64, text string) (*Comment, error) {
	var out Comment
	path := fmt.Sprintf("/api/anime/%d/comments", animeID)
	if err := c.do(http.MethodPost, path, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestClient) UpdateComment(commentID, text string) (*Comment, error) {
	var out Comment
	path := fmt.Sprintf("/api/comments/%s", commentID)
	if err := c.do(http.MethodPut, path, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestClient) DeleteComment(commentID string) error {
	path := fmt.Sprintf("/api/comments/%s", commentID)
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *RestClient) ToggleLike(commentID string) (*Comment, error) {
	var out Comment
	path := fmt.Sprintf("/api/comments/%s/like", commentID)
	if err := c.do(http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request and decodes the JSON response into out (if non-nil).
// Non-2xx responses are surfaced as *APIError with the server's message.
func (c *RestClient) do(method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

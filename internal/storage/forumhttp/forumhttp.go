// Package forumhttp implements forum.Store against a remote forum service
// speaking the generic thread/post REST API. Used when the store backend is
// configured as "http" instead of the embedded Postgres store.
package forumhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/logger"
)

type Client struct {
	BaseURL    string
	HttpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// wire representations; the remote service stores the attribute bag verbatim
type threadPayload struct {
	Id        string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	OwnerId   string      `json:"owner_id"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
	Tags      []string    `json:"tags"`
	Attrs     forum.Attrs `json:"attrs"`
}

type postPayload struct {
	Id           string      `json:"id,omitempty"`
	ThreadId     string      `json:"thread_id"`
	OwnerId      string      `json:"owner_id"`
	Body         string      `json:"body"`
	CreatedAt    time.Time   `json:"created_at,omitempty"`
	HelpfulCount int         `json:"helpful_count,omitempty"`
	Tags         []string    `json:"tags"`
	Attrs        forum.Attrs `json:"attrs"`
}

func toThread(p threadPayload) forum.Thread {
	return forum.Thread{Id: p.Id, Title: p.Title, Body: p.Body, OwnerId: p.OwnerId, CreatedAt: p.CreatedAt, Tags: p.Tags, Attrs: p.Attrs}
}

func fromThread(t forum.Thread) threadPayload {
	return threadPayload{Id: t.Id, Title: t.Title, Body: t.Body, OwnerId: t.OwnerId, CreatedAt: t.CreatedAt, Tags: t.Tags, Attrs: t.Attrs}
}

func toPost(p postPayload) forum.Post {
	return forum.Post{Id: p.Id, ThreadId: p.ThreadId, OwnerId: p.OwnerId, Body: p.Body, CreatedAt: p.CreatedAt, HelpfulCount: p.HelpfulCount, Tags: p.Tags, Attrs: p.Attrs}
}

func fromPost(p forum.Post) postPayload {
	return postPayload{Id: p.Id, ThreadId: p.ThreadId, OwnerId: p.OwnerId, Body: p.Body, CreatedAt: p.CreatedAt, Tags: p.Tags, Attrs: p.Attrs}
}

// do is the single helper for talking to the forum service. Non-2xx
// responses are mapped here: 404 stays a NotFound, anything else is an
// upstream failure whose body is logged but never surfaced.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create forum request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		logger.Log.Error("forum service unreachable", "method", method, "path", path, "err", err)
		return internal_errors.Upstream("forum service")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return internal_errors.NotFoundError("Resource")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Log.Error("forum service error", "method", method, "path", path, "status", resp.StatusCode, "body", string(bodyBytes))
		return internal_errors.Upstream("forum service")
	}

	if out == nil {
		return nil
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		logger.Log.Error("forum service returned malformed body", "method", method, "path", path, "err", err)
		return internal_errors.Upstream("forum service")
	}
	return nil
}

func (c *Client) CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error) {
	var created threadPayload
	if err := c.do(ctx, "POST", "/v1/threads", fromThread(t), &created); err != nil {
		return forum.Thread{}, err
	}
	return toThread(created), nil
}

func (c *Client) GetThread(ctx context.Context, id string) (forum.Thread, error) {
	var payload threadPayload
	if err := c.do(ctx, "GET", "/v1/threads/"+url.PathEscape(id), nil, &payload); err != nil {
		return forum.Thread{}, err
	}
	return toThread(payload), nil
}

func (c *Client) UpdateThread(ctx context.Context, t forum.Thread) error {
	return c.do(ctx, "PUT", "/v1/threads/"+url.PathEscape(t.Id), fromThread(t), nil)
}

func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/threads/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.OwnerId != "" {
		params.Set("owner_id", q.OwnerId)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	path := "/v1/threads"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var payloads []threadPayload
	if err := c.do(ctx, "GET", path, nil, &payloads); err != nil {
		return nil, err
	}
	threads := make([]forum.Thread, 0, len(payloads))
	for _, p := range payloads {
		threads = append(threads, toThread(p))
	}
	return threads, nil
}

func (c *Client) CreatePost(ctx context.Context, p forum.Post) (forum.Post, error) {
	var created postPayload
	if err := c.do(ctx, "POST", "/v1/posts", fromPost(p), &created); err != nil {
		return forum.Post{}, err
	}
	return toPost(created), nil
}

func (c *Client) GetPost(ctx context.Context, id string) (forum.Post, error) {
	var payload postPayload
	if err := c.do(ctx, "GET", "/v1/posts/"+url.PathEscape(id), nil, &payload); err != nil {
		return forum.Post{}, err
	}
	return toPost(payload), nil
}

func (c *Client) UpdatePost(ctx context.Context, p forum.Post) error {
	return c.do(ctx, "PUT", "/v1/posts/"+url.PathEscape(p.Id), fromPost(p), nil)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error) {
	params := url.Values{}
	if q.ThreadId != "" {
		params.Set("thread_id", q.ThreadId)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.OwnerId != "" {
		params.Set("owner_id", q.OwnerId)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	path := "/v1/posts"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var payloads []postPayload
	if err := c.do(ctx, "GET", path, nil, &payloads); err != nil {
		return nil, err
	}
	posts := make([]forum.Post, 0, len(payloads))
	for _, p := range payloads {
		posts = append(posts, toPost(p))
	}
	return posts, nil
}

func (c *Client) AddReaction(ctx context.Context, postId, userId string) (bool, error) {
	var response struct {
		Added bool `json:"added"`
	}
	path := "/v1/posts/" + url.PathEscape(postId) + "/reactions/" + url.PathEscape(userId)
	if err := c.do(ctx, "PUT", path, nil, &response); err != nil {
		return false, err
	}
	return response.Added, nil
}

func (c *Client) RemoveReaction(ctx context.Context, postId, userId string) (bool, error) {
	var response struct {
		Removed bool `json:"removed"`
	}
	path := "/v1/posts/" + url.PathEscape(postId) + "/reactions/" + url.PathEscape(userId)
	if err := c.do(ctx, "DELETE", path, nil, &response); err != nil {
		return false, err
	}
	return response.Removed, nil
}

func (c *Client) AddParticipant(ctx context.Context, threadId, userId string) error {
	path := "/v1/threads/" + url.PathEscape(threadId) + "/participants/" + url.PathEscape(userId)
	return c.do(ctx, "PUT", path, nil, nil)
}

func (c *Client) Search(ctx context.Context, query string) (forum.SearchResult, error) {
	var payload struct {
		Threads []threadPayload `json:"threads"`
		Posts   []postPayload   `json:"posts"`
	}
	if err := c.do(ctx, "GET", "/v1/search?q="+url.QueryEscape(query), nil, &payload); err != nil {
		return forum.SearchResult{}, err
	}
	var result forum.SearchResult
	for _, t := range payload.Threads {
		result.Threads = append(result.Threads, toThread(t))
	}
	for _, p := range payload.Posts {
		result.Posts = append(result.Posts, toPost(p))
	}
	return result, nil
}

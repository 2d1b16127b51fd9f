package playcore

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// LeaderboardService exposes the leaderboard endpoints.
type LeaderboardService struct {
	c *Client
}

// Submit posts a score to the named board.
func (s *LeaderboardService) Submit(ctx context.Context, board string, score int64) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodPost,
		Path:   s.c.endpoint(EndpointLeaderboardScore, map[string]string{"board": url.PathEscape(board)}),
		Body:   map[string]any{"score": score},
	})
}

// Top fetches the board's best entries. limit <= 0 lets the backend pick its
// default page size.
func (s *LeaderboardService) Top(ctx context.Context, board string, limit int) Result {
	path := s.c.endpoint(EndpointLeaderboardTop, map[string]string{"board": url.PathEscape(board)})
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return s.c.Request(ctx, Request{Method: http.MethodGet, Path: path})
}

// Around fetches the entries surrounding a user's rank on the board.
func (s *LeaderboardService) Around(ctx context.Context, board, userID string) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodGet,
		Path: s.c.endpoint(EndpointLeaderboardNear, map[string]string{
			"board": url.PathEscape(board),
			"user":  url.PathEscape(userID),
		}),
	})
}

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/session"
)

// Client talks to the form platform that owns form definitions and
// final submissions. The gateway never stores forms itself; everything
// authoritative lives behind this client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates an upstream client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "upstream_client").Logger(),
	}
}

// FetchForm retrieves a form definition. A 401 or 403 maps to
// ErrForbidden so the session falls back to AWAITING_AUTH; a 404 maps
// to ErrNotFound.
func (c *Client) FetchForm(ctx context.Context, formName, token string) (*model.QuestionSet, error) {
	url := c.baseURL + "/form/" + formName
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build form request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch form %s: %w", formName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read form %s: %w", formName, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		qs, err := model.ParseQuestionSet(body)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", formName, err)
		}
		if qs.FormName == "" {
			qs.FormName = formName
		}
		return qs, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, model.ErrForbidden
	case http.StatusNotFound:
		return nil, model.ErrNotFound
	default:
		c.log.Warn().Int("status", resp.StatusCode).Str("form", formName).Msg("Unexpected status fetching form")
		return nil, fmt.Errorf("fetch form %s: unexpected status %d", formName, resp.StatusCode)
	}
}

const maxBodyBytes = 4 << 20

type submitPayload struct {
	FormName   string               `json:"form_name"`
	UserName   string               `json:"user_name"`
	UserEmail  string               `json:"user_email"`
	Answers    map[string]string    `json:"answers"`
	Proctoring model.ProctorMetrics `json:"proctoring"`
}

type submitResponse struct {
	TotalMarks *int   `json:"total_marks"`
	Detail     string `json:"detail"`
}

// Submit delivers a completed (or force-closed) answer sheet. A
// duplicate rejection from upstream maps to ErrAlreadySubmitted, which
// the session treats as a benign completion. Transport and server
// failures wrap ErrSubmission and leave the session retryable.
func (c *Client) Submit(ctx context.Context, sr *session.SubmitRequest, token string) (*session.SubmitOutcome, error) {
	payload := submitPayload{
		FormName:   sr.FormName,
		UserName:   sr.Respondent.Name,
		UserEmail:  sr.Respondent.Email,
		Answers:    sr.Answers,
		Proctoring: sr.Metrics,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSubmission, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", model.ErrSubmission, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var sres submitResponse
		if err := json.Unmarshal(body, &sres); err != nil {
			// The submission landed; a garbled body only costs us the
			// authoritative score.
			c.log.Warn().Err(err).Str("form", sr.FormName).Msg("Unparseable submit response")
			return &session.SubmitOutcome{}, nil
		}
		out := &session.SubmitOutcome{}
		if sres.TotalMarks != nil {
			out.MarksEarned = *sres.TotalMarks
			out.HasMarks = true
		}
		return out, nil
	case resp.StatusCode == http.StatusConflict:
		return nil, model.ErrAlreadySubmitted
	case resp.StatusCode == http.StatusBadRequest && isDuplicateDetail(body):
		return nil, model.ErrAlreadySubmitted
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, model.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.ErrNotFound
	default:
		c.log.Warn().Int("status", resp.StatusCode).Str("form", sr.FormName).Msg("Submission rejected upstream")
		return nil, fmt.Errorf("%w: status %d", model.ErrSubmission, resp.StatusCode)
	}
}

// isDuplicateDetail detects upstream "already submitted" rejections
// delivered as a plain 400.
func isDuplicateDetail(body []byte) bool {
	var sres submitResponse
	if err := json.Unmarshal(body, &sres); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(sres.Detail), "already submitted")
}

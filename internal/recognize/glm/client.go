package glm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize"
)

// Extract implements recognize.Recognizer against the GLM-4V vision API.
// Transient faults (timeouts, connection resets, 5xx, 429) are retried with
// backoff up to cfg.MaxRetries; anything else surfaces immediately as
// recognize.ErrExtractionFailed. The reply is decoded leniently, so a
// malformed-but-present answer degrades to a partial result instead of an
// error.
func (c *Client) Extract(ctx context.Context, img normalize.CanonicalImage) (recognize.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("recognize.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"png_bytes", len(img.PNG),
		"width", img.Width,
		"height", img.Height,
	)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)
	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
					{"type": "text", "text": recognize.BuildExtractionPrompt()},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.postWithRetry(ctx, rid, endpoint, body)
	if err != nil {
		c.logger.Error("recognize.extract.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recognize.Result{Status: recognize.StatusFailed}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("recognize.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recognize.Result{Status: recognize.StatusFailed},
			fmt.Errorf("decode glm response: %v: %w", err, recognize.ErrExtractionFailed)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("recognize.extract.no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return recognize.Result{Status: recognize.StatusFailed},
			fmt.Errorf("no choices in glm response: %w", recognize.ErrExtractionFailed)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	res := recognize.DecodeResponse(content, c.logger)

	// schema validation is a cross-check on the sanitized fields: a failure
	// here means the sanitizer let something odd through, so degrade rather
	// than fail.
	if doc, err := json.Marshal(res.Fields); err == nil {
		if vErr := recognize.ValidateJSONAgainstSchema(recognize.BuildCertificateJSONSchema(), doc); vErr != nil {
			c.logger.Warn("recognize.extract.schema_mismatch", "req_id", rid, "error", vErr)
			if res.Status == recognize.StatusOK {
				res.Status = recognize.StatusPartial
			}
			if res.Notes != "" {
				res.Notes += "; "
			}
			res.Notes += "schema mismatch: " + vErr.Error()
		}
	}

	c.logger.Info("recognize.extract.ok",
		"req_id", rid,
		"status", string(res.Status),
		"missing", len(res.Fields.Missing()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// postWithRetry sends the request, retrying transient failures with
// exponential backoff. Context cancellation aborts between attempts.
func (c *Client) postWithRetry(ctx context.Context, rid, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("recognize.http.retry",
				"req_id", rid, "attempt", attempt, "backoff_ms", backoff.Milliseconds(),
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		raw, status, err := c.post(ctx, url, b)
		switch {
		case err == nil && status/100 == 2:
			return raw, nil
		case err == nil && !transientStatus(status):
			// authentication rejected, malformed request and friends:
			// retrying cannot help
			return nil, fmt.Errorf("glm status %d: %s: %w",
				status, truncate(string(raw), 512), recognize.ErrExtractionFailed)
		case err == nil:
			lastErr = fmt.Errorf("glm status %d", status)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			lastErr = err
		}
	}
	return nil, fmt.Errorf("retries exhausted: %v: %w", lastErr, recognize.ErrExtractionFailed)
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("glm http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.logger.Warn("glm response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, nil
}

// transientStatus reports whether the HTTP status is worth retrying.
func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status/100 == 5
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

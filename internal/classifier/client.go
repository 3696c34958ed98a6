// Package classifier calls the external spam classifier over HTTP.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "smsguard/internal/errors"
	"smsguard/internal/model"
)

const (
	predictPath     = "/predict"
	maxErrorBodyLen = 4 << 10
	maxBodyLen      = 1 << 20
)

// Result is the classifier verdict for one message.
type Result struct {
	Message         string
	Transformed     string
	Prediction      int
	Verdict         model.Verdict
	Probabilities   model.Probabilities
	SpamProbability decimal.Decimal
}

// Classifier classifies message text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

// Client talks to the classifier's /predict endpoint.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

var _ Classifier = (*Client)(nil)

// NewClient creates a classifier client. timeout bounds every call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type predictRequest struct {
	Message string `json:"message"`
}

type predictResponse struct {
	Message       string            `json:"message"`
	Transformed   string            `json:"transformed"`
	Prediction    *int              `json:"prediction"`
	Result        string            `json:"result"`
	Probabilities map[string]string `json:"probabilities"`
}

// Classify sends text to the classifier. The call is not cancelled when ctx
// is; it runs until the classifier answers or the client timeout elapses.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(predictRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.UpstreamError{Kind: apperrors.ErrUpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &apperrors.UpstreamError{
			Kind:       apperrors.ErrUpstreamRejected,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var out predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyLen)).Decode(&out); err != nil {
		return nil, &apperrors.UpstreamError{
			Kind:       apperrors.ErrUpstreamRejected,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode predict response: %w", err),
		}
	}

	return toResult(text, out, resp.StatusCode)
}

func toResult(text string, out predictResponse, status int) (*Result, error) {
	verdict, prediction, ok := normalizeVerdict(out.Result, out.Prediction)
	if !ok {
		return nil, &apperrors.UpstreamError{
			Kind:       apperrors.ErrUpstreamRejected,
			StatusCode: status,
			Err:        fmt.Errorf("unrecognized verdict %q", out.Result),
		}
	}

	message := out.Message
	if message == "" {
		message = text
	}

	return &Result{
		Message:         message,
		Transformed:     out.Transformed,
		Prediction:      prediction,
		Verdict:         verdict,
		Probabilities:   model.Probabilities(out.Probabilities),
		SpamProbability: parsePercent(lookup(out.Probabilities, "Spam")),
	}, nil
}

// normalizeVerdict prefers the textual result and falls back to the numeric
// label. A prediction sent by the classifier is kept as is; it is derived from
// the verdict only when absent.
func normalizeVerdict(result string, prediction *int) (model.Verdict, int, bool) {
	var verdict model.Verdict
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "spam":
		verdict = model.VerdictSpam
	case "not spam", "ham":
		verdict = model.VerdictHam
	case "":
		if prediction == nil {
			return "", 0, false
		}
		switch *prediction {
		case 1:
			return model.VerdictSpam, 1, true
		case 0:
			return model.VerdictHam, 0, true
		}
		return "", 0, false
	default:
		return "", 0, false
	}

	if prediction != nil {
		return verdict, *prediction, true
	}
	if verdict == model.VerdictSpam {
		return verdict, 1, true
	}
	return verdict, 0, true
}

func lookup(m map[string]string, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// parsePercent turns "97.31%" into 97.31. Unparseable input yields zero.
func parsePercent(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

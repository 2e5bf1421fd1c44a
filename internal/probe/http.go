package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// maxBodyBytes caps how much of a response body is read for JSON matching.
const maxBodyBytes = 1 << 20

// StatusError is returned for responses outside 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status suggests the server may recover:
// 5xx, 408 Request Timeout and 429 Too Many Requests.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests
}

// ErrUnexpectedBody is returned when the JSON path check does not match.
var ErrUnexpectedBody = errors.New("unexpected response body")

// HTTPProbe issues GET requests until the endpoint answers 2xx and, when
// JSONPath is set, the body value at that gjson path matches Expect.
type HTTPProbe struct {
	URL      string
	JSONPath string
	// Expect is compared with the string form of the value at JSONPath.
	// Empty means the path only has to exist.
	Expect string

	client *http.Client
}

// NewHTTPProbe validates rawURL and creates the probe.
func NewHTTPProbe(rawURL, jsonPath, expect string) (*HTTPProbe, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &retrier.ConfigError{Field: "url", Value: rawURL, Reason: "must be an absolute http(s) URL"}
	}
	if expect != "" && jsonPath == "" {
		return nil, &retrier.ConfigError{Field: "expect", Value: expect, Reason: "requires --json-path"}
	}

	return &HTTPProbe{
		URL:      rawURL,
		JSONPath: jsonPath,
		Expect:   expect,
		client:   &http.Client{},
	}, nil
}

func (p *HTTPProbe) Name() string {
	return p.URL
}

func (p *HTTPProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return retrier.Permanent(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", retrier.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: preview(string(body))}
	}

	if p.JSONPath == "" {
		return nil
	}
	return p.matchBody(body)
}

func (p *HTTPProbe) matchBody(body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: not valid JSON", ErrUnexpectedBody)
	}

	result := gjson.GetBytes(body, p.JSONPath)
	if !result.Exists() {
		return fmt.Errorf("%w: path %q not found", ErrUnexpectedBody, p.JSONPath)
	}
	if p.Expect != "" && result.String() != p.Expect {
		return fmt.Errorf("%w: %s = %q, want %q", ErrUnexpectedBody, p.JSONPath, result.String(), p.Expect)
	}
	return nil
}

// Classifier retries transport failures the network classifier accepts,
// transient statuses and body mismatches. Other 4xx responses are final.
func (p *HTTPProbe) Classifier() retrier.ErrorClassifier {
	network := retry.NewNetworkErrorClassifier()
	return retry.ClassifierFunc(func(err error) bool {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return statusErr.Transient()
		}
		if errors.Is(err, ErrUnexpectedBody) {
			return true
		}
		return network.IsTransient(err)
	})
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= retrier.MaxErrorPreviewLength {
		return s
	}

	cut := retrier.MaxErrorPreviewLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

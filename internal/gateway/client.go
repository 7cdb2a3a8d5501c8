package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"notifier/internal/infra"
)

// ErrMissingInstance indicates a send attempted without gateway credentials.
var ErrMissingInstance = errors.New("gateway: instance is required")

// Ack is the gateway's acknowledgement of an accepted message.
type Ack struct {
	MessageID string
	Status    string
}

// SendError is a send failure carrying the gateway's HTTP status and raw
// body. Transient errors (network, 5xx) are retried by the client; the rest
// are permanent for the item.
type SendError struct {
	StatusCode int
	Body       string
	transient  bool
}

func (e *SendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: %s", e.Body)
	}
	return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying.
func (e *SendError) Transient() bool { return e.transient }

// Options configures the messaging gateway client.
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	Retries        int
	SendsPerSec    float64
	HTTPClient     *http.Client
	Logger         *infra.Logger
}

// Client performs text sends against a WhatsApp-compatible HTTP gateway
// (Evolution API shape: POST {base}/message/sendText/{instance}).
type Client struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *infra.Logger
	backoff    time.Duration
}

type sendPayload struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	var limiter *rate.Limiter
	if opts.SendsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SendsPerSec), 1)
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    timeout,
		retries:    retries,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		backoff:    time.Second,
	}
}

// Send delivers one text message, retrying transient failures with linear
// backoff. It never panics past this boundary; the caller always receives an
// Ack or an error.
func (c *Client) Send(ctx context.Context, instance, apiKey, number, text string) (*Ack, error) {
	if strings.TrimSpace(instance) == "" {
		return nil, ErrMissingInstance
	}
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// Linear backoff: attempt number * 1s.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		ack, err := c.attempt(ctx, instance, apiKey, number, text)
		if err == nil {
			return ack, nil
		}
		lastErr = err
		var sendErr *SendError
		if !errors.As(err, &sendErr) || !sendErr.Transient() {
			return nil, err
		}
		c.logger.Warn().
			Int("attempt", attempt+1).
			Str("instance", instance).
			Err(err).
			Msg("gateway: send attempt failed")
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, instance, apiKey, number, text string) (*Ack, error) {
	body, err := json.Marshal(sendPayload{Number: number, Text: text})
	if err != nil {
		return nil, &SendError{Body: fmt.Sprintf("encode request: %v", err)}
	}

	// A hung gateway request must abort rather than stall the job loop.
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/message/sendText/" + instance
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &SendError{Body: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &SendError{Body: err.Error(), transient: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SendError{StatusCode: resp.StatusCode, Body: err.Error(), transient: true}
	}

	if resp.StatusCode >= 500 {
		return nil, &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw)), transient: true}
	}
	if resp.StatusCode >= 300 {
		return nil, &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if ack, ok := ackFromResponse(decoded); ok {
		c.logger.Debug().
			Str("instance", instance).
			Str("message_id", ack.MessageID).
			Msg("gateway: message accepted")
		return ack, nil
	}
	// HTTP 200 with an error payload is still a failure.
	return nil, &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

// ackFromResponse accepts a body containing a message key id or a
// recognized pending/sent status marker.
func ackFromResponse(resp sendResponse) (*Ack, bool) {
	if resp.Error != "" {
		return nil, false
	}
	if resp.Key.ID != "" {
		return &Ack{MessageID: resp.Key.ID, Status: resp.Status}, true
	}
	switch strings.ToUpper(resp.Status) {
	case "PENDING", "SENT", "SUCCESS":
		return &Ack{Status: strings.ToUpper(resp.Status)}, true
	}
	return nil, false
}

package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient/clientcommon"
)

const defaultMaxItems = 2000
const defaultMaxSkippedPages = 2
const maxErrorMessageLength = 200

type PagingMode int

const (
	OffsetPaging PagingMode = iota
	CursorPaging
)

// PageRequest describes one paginated collection to read.
type PageRequest struct {
	Endpoint    string
	Query       map[string]string
	PageSize    int
	MaxItems    int
	Mode        PagingMode
	Critical    bool // central resources abort on any non-retryable status
	RequestType string
}

func (req PageRequest) maxPages() int {
	return req.MaxItems/req.PageSize + 1
}

func (req PageRequest) pageQuery(offset int, cursor string) map[string]string {
	query := make(map[string]string, len(req.Query)+2)

	for key, value := range req.Query {
		query[key] = value
	}

	query["limit"] = strconv.Itoa(req.PageSize)

	switch req.Mode {
	case OffsetPaging:
		query["offset"] = strconv.Itoa(offset)
	case CursorPaging:
		if cursor != "" {
			query["before"] = cursor
		}
	}

	return query
}

type PageResult struct {
	Items        []json.RawMessage
	Requests     int
	SkippedPages int
	Truncated    bool
}

type pageEnvelope struct {
	Items   []json.RawMessage `json:"items"`
	Next    string            `json:"next"`
	Cursors *struct {
		After  string `json:"after"`
		Before string `json:"before"`
	} `json:"cursors"`
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetcher issues every upstream request of one credential. All of them go through the shared limiter,
// and 429, 5xx and transport failures are retried on the same request with the backoff policy.
type Fetcher struct {
	rest            *resty.Client
	limiter         *clientcommon.Limiter
	clock           clientcommon.Clock
	policy          clientcommon.BackoffPolicy
	maxSkippedPages int
	authenticated   bool
}

func NewFetcher(rest *resty.Client, limiter *clientcommon.Limiter, clock clientcommon.Clock,
	policy clientcommon.BackoffPolicy, authenticated bool) *Fetcher {
	if clock == nil {
		clock = clientcommon.RealClock()
	}

	if limiter == nil {
		limiter = clientcommon.NewLimiter(0, 1, clock)
	}

	return &Fetcher{
		rest:            rest,
		limiter:         limiter,
		clock:           clock,
		policy:          policy,
		maxSkippedPages: defaultMaxSkippedPages,
		authenticated:   authenticated,
	}
}

// Get performs a single GET and returns the body of a 2xx answer.
// Non-retryable statuses come back as *clientcommon.UpstreamError, a spent retry budget wraps
// clientcommon.ErrExhaustedRetries together with the last failure.
func (f *Fetcher) Get(ctx context.Context, endpoint string, query map[string]string, requestType string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("spotify client: waiting to call %s: %w", endpoint, err)
		}

		resp, err := f.rest.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(endpoint)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("spotify client: call to %s interrupted: %w", endpoint, ctxErr)
		}

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode()
		}

		var retryAfter time.Duration
		var cause error

		switch {
		case err != nil:
			cause = fmt.Errorf("%w: %v", clientcommon.ErrUpstreamUnavailable, err)

		case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
			clientcommon.SendRequestMetric(requestType, f.authenticated, statusCode, nil)
			return resp.Body(), nil

		case statusCode == http.StatusTooManyRequests:
			retryAfter = clientcommon.ParseRetryAfter(resp.Header().Get("Retry-After"), f.clock.Now())
			cause = upstreamError(endpoint, statusCode, resp.Body())
			clientcommon.SendRateLimitMetric(requestType)

		case statusCode >= http.StatusInternalServerError:
			cause = upstreamError(endpoint, statusCode, resp.Body())

		default:
			upstreamErr := upstreamError(endpoint, statusCode, resp.Body())
			clientcommon.SendRequestMetric(requestType, f.authenticated, statusCode, upstreamErr)
			return nil, upstreamErr
		}

		clientcommon.SendRequestMetric(requestType, f.authenticated, statusCode, cause)

		if f.policy.Exhausted(attempt) {
			logger.WithEndpoint(endpoint).Warningf("Giving up after %d attempts - %v", attempt+1, cause)
			return nil, fmt.Errorf("spotify client: %s failed after %d attempts: %w: %w",
				endpoint, attempt+1, clientcommon.ErrExhaustedRetries, cause)
		}

		delay := f.policy.Delay(attempt, retryAfter)
		clientcommon.SendRetryMetric(requestType, statusCode)

		logger.WithEndpoint(endpoint).Warningf("Attempt %d failed, retrying in %s - %v", attempt+1, delay, cause)

		if statusCode == http.StatusTooManyRequests {
			// every request of this credential waits, not only this one
			f.limiter.Backoff(delay)
			continue
		}

		if err := f.clock.Sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("spotify client: call to %s interrupted: %w", endpoint, err)
		}
	}
}

// FetchAllPages reads pages strictly in sequence until a short or empty page, MaxItems,
// or maxPages requests. On failure the items read so far are returned with the error.
func (f *Fetcher) FetchAllPages(ctx context.Context, req PageRequest) (PageResult, error) {
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.MaxItems <= 0 {
		req.MaxItems = defaultMaxItems
	}

	log := logger.WithEndpoint(req.Endpoint)
	result := PageResult{Items: make([]json.RawMessage, 0)}

	offset := 0
	cursor := ""
	consecutiveSkips := 0
	maxPages := req.maxPages()

	for len(result.Items) < req.MaxItems {
		if result.Requests >= maxPages {
			log.Warningf("Stopping after %d page requests with %d items", result.Requests, len(result.Items))
			result.Truncated = true
			break
		}

		body, err := f.Get(ctx, req.Endpoint, req.pageQuery(offset, cursor), req.RequestType)
		result.Requests++

		if err != nil {
			// only a plain non-retryable answer can be skipped, a spent retry budget is wrapped
			upstreamErr, skippable := err.(*clientcommon.UpstreamError)

			if skippable && !req.Critical && req.Mode == OffsetPaging && !upstreamErr.IsCapabilityAbsent() {
				consecutiveSkips++
				result.SkippedPages++
				log.Warningf("Skipping page at offset %d - %v", offset, err)

				if consecutiveSkips >= f.maxSkippedPages {
					result.Truncated = true
					return result, err
				}

				offset += req.PageSize
				continue
			}

			result.Truncated = true
			return result, err
		}

		consecutiveSkips = 0

		page, err := decodePage(body)

		if err != nil {
			result.Truncated = true
			return result, fmt.Errorf("spotify client: decoding page of %s: %w", req.Endpoint, err)
		}

		items := page.Items
		if remaining := req.MaxItems - len(result.Items); len(items) > remaining {
			items = items[:remaining]
		}
		result.Items = append(result.Items, items...)

		log.Debugf("Page %d has %d items", result.Requests, len(page.Items))

		if len(page.Items) < req.PageSize {
			break
		}

		switch req.Mode {
		case OffsetPaging:
			offset += req.PageSize
		case CursorPaging:
			if page.Next == "" || page.Cursors == nil || page.Cursors.Before == "" {
				return result, nil
			}
			cursor = page.Cursors.Before
		}
	}

	return result, nil
}

func decodePage(body []byte) (pageEnvelope, error) {
	var page pageEnvelope

	if len(bytes.TrimSpace(body)) == 0 {
		return page, nil
	}

	err := json.Unmarshal(body, &page)

	return page, err
}

func upstreamError(endpoint string, statusCode int, body []byte) *clientcommon.UpstreamError {
	message := ""

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	} else if len(body) > 0 {
		message = string(body)
		if len(message) > maxErrorMessageLength {
			message = message[:maxErrorMessageLength]
		}
	}

	return &clientcommon.UpstreamError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

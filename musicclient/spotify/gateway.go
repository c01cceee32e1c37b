package spotify

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient/clientcommon"
)

const DefaultBaseUrl = "https://api.spotify.com/v1"

const defaultPageSize = 100 // upstream max for playlist items
const defaultRequestTimeout = 10 * time.Second
const maxWaitBetweenCalls = 100 * time.Millisecond
const maxListeningItems = 50

type Config struct {
	BaseUrl        string
	RequestTimeout time.Duration
	PageSize       int
	ChunkDelay     time.Duration
	Backoff        clientcommon.BackoffPolicy
}

func DefaultConfig() Config {
	return Config{
		BaseUrl:        DefaultBaseUrl,
		RequestTimeout: defaultRequestTimeout,
		PageSize:       defaultPageSize,
		ChunkDelay:     maxWaitBetweenCalls,
		Backoff:        clientcommon.DefaultBackoffPolicy(),
	}
}

// Gateway exposes the typed catalog reads used by the analysis. One Gateway serves one credential.
type Gateway struct {
	fetcher    *Fetcher
	clock      clientcommon.Clock
	config     Config
	userScoped bool
}

// NewGateway wires the transport for one credential. httpClient is expected to add the
// authorization header, see NewUserHttpClient and NewAppHttpClient.
func NewGateway(httpClient *http.Client, limiter *clientcommon.Limiter, clock clientcommon.Clock,
	config Config, userScoped bool) *Gateway {
	if clock == nil {
		clock = clientcommon.RealClock()
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.BaseUrl == "" {
		config.BaseUrl = DefaultBaseUrl
	}

	// copied so that gateways sharing an application client never write to it
	client := *httpClient
	client.Timeout = config.RequestTimeout

	rest := resty.NewWithClient(&client).
		SetBaseURL(config.BaseUrl).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Logger)

	return &Gateway{
		fetcher:    NewFetcher(rest, limiter, clock, config.Backoff, userScoped),
		clock:      clock,
		config:     config,
		userScoped: userScoped,
	}
}

// UserScoped is true when the credential can read the listening history.
func (g *Gateway) UserScoped() bool {
	return g.userScoped
}

// uniqueIds drops empty and repeated ids, keeping first-seen order.
func uniqueIds(ids []string) []string {
	unique := make([]string, 0, len(ids))
	idSeen := make(map[string]struct{}, len(ids)) // this acts like a set

	for _, id := range ids {
		if id == "" {
			continue
		}

		if _, seen := idSeen[id]; !seen {
			idSeen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	return unique
}

// chunks splits ids into consecutive slices of at most size elements.
func chunks(ids []string, size int) [][]string {
	parts := make([][]string, 0, len(ids)/size+1)

	for i := 0; i < len(ids); i += size {
		upperBound := i + size

		if upperBound > len(ids) {
			upperBound = len(ids)
		}

		parts = append(parts, ids[i:upperBound])
	}

	return parts
}

package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient/clientcommon"
)

const expirationTime = 30 * time.Minute // change the client every 30 mins

var ErrNoGenericClient = errors.New("no generic spotify client configured")

// General clients are spotify clients that can be used at anytime to access catalog info
// they cannot access user info, as all this is linked with another client id and secret
type GenericClient struct {
	ClientId      string
	ClientSecret  string
	TimeCreatedAt time.Time
	Client        *http.Client
	// each application credential has its own rate limit budget upstream
	Limiter *clientcommon.Limiter
}

func (c *GenericClient) getClient(now time.Time) *http.Client {
	// if the the client is older than expiration time or does not exist, change it
	if c.Client == nil {
		c.TimeCreatedAt = now
		c.Client = NewAppHttpClient(context.Background(), c.ClientId, c.ClientSecret)

		logger.Logger.Warningf("Creating spotify generic client with client id %s", c.ClientId)

	} else if now.After(c.TimeCreatedAt.Add(expirationTime)) {
		c.TimeCreatedAt = now
		c.Client = NewAppHttpClient(context.Background(), c.ClientId, c.ClientSecret)

		logger.Logger.Warningf("Refreshing expired spotify generic client with client id %s", c.ClientId)
	}

	return c.Client
}

type Credential struct {
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type ClientsCredentials struct {
	Credentials []Credential `json:"credentials"`
}

// ParseClientsCredentials reads the {"credentials":[{"client_id":..,"client_secret":..}]} document.
func ParseClientsCredentials(document string) ([]Credential, error) {
	if document == "" {
		return nil, nil
	}

	var credentials ClientsCredentials
	if err := json.Unmarshal([]byte(document), &credentials); err != nil {
		return nil, err
	}

	return credentials.Credentials, nil
}

// GenericClientPool hands out application clients in turn to spread the load across credentials.
type GenericClientPool struct {
	mu      sync.Mutex
	clients []*GenericClient
	next    int
	clock   clientcommon.Clock
}

func NewGenericClientPool(credentials []Credential, requestsPerSecond float64, burst int,
	clock clientcommon.Clock) *GenericClientPool {
	if clock == nil {
		clock = clientcommon.RealClock()
	}

	pool := &GenericClientPool{clock: clock}

	for _, credential := range credentials {
		if credential.ClientId == "" || credential.ClientSecret == "" {
			logger.Logger.Warning("Ignoring spotify generic credential without id or secret")
			continue
		}

		pool.clients = append(pool.clients, &GenericClient{
			ClientId:     credential.ClientId,
			ClientSecret: credential.ClientSecret,
			Limiter:      clientcommon.NewLimiter(requestsPerSecond, burst, clock),
		})
	}

	return pool
}

func (p *GenericClientPool) Size() int {
	return len(p.clients)
}

// Gateway builds a gateway on the next application client of the pool.
func (p *GenericClientPool) Gateway(config Config) (*Gateway, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.clients) == 0 {
		return nil, ErrNoGenericClient
	}

	client := p.clients[p.next%len(p.clients)]
	p.next++

	return NewGateway(client.getClient(p.clock.Now()), client.Limiter, p.clock, config, false), nil
}

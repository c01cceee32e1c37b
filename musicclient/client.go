package musicclient

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/playlist-insights/musicclient/clientcommon"
	spotifyclient "github.com/playlist-insights/musicclient/spotify"
	"github.com/playlist-insights/utils"
)

// The goal of this client is to hand out a catalog gateway for whatever credential a caller comes with,
// so that every request made with the same credential shares one rate limit budget.

const defaultLimiterCacheSize = 1000

type Provider struct {
	config            spotifyclient.Config
	requestsPerSecond float64
	burst             int
	clock             clientcommon.Clock
	generic           *spotifyclient.GenericClientPool

	mu       sync.Mutex
	limiters *lru.Cache
}

type ProviderOptions struct {
	Config            spotifyclient.Config
	RequestsPerSecond float64
	Burst             int
	LimiterCacheSize  int
	Clock             clientcommon.Clock
	// used when a caller comes without a user credential, may be nil
	Generic *spotifyclient.GenericClientPool
}

func NewProvider(options ProviderOptions) (*Provider, error) {
	size := options.LimiterCacheSize
	if size <= 0 {
		size = defaultLimiterCacheSize
	}

	limiters, err := lru.New(size)

	if err != nil {
		return nil, err
	}

	clock := options.Clock
	if clock == nil {
		clock = clientcommon.RealClock()
	}

	return &Provider{
		config:            options.Config,
		requestsPerSecond: options.RequestsPerSecond,
		burst:             options.Burst,
		clock:             clock,
		generic:           options.Generic,
		limiters:          limiters,
	}, nil
}

// Gateway returns the gateway for the credential, falling back to an application client when it is empty.
// The second value namespaces anything cached for this credential.
func (p *Provider) Gateway(ctx context.Context, credential clientcommon.Credential) (*spotifyclient.Gateway, string, error) {
	if credential.IsEmpty() {
		if p.generic == nil || p.generic.Size() == 0 {
			return nil, "", clientcommon.ErrMissingCredential
		}

		gateway, err := p.generic.Gateway(p.config)
		return gateway, "app", err
	}

	namespace := utils.CreateHash(credential.Token)
	httpClient := spotifyclient.NewUserHttpClient(ctx, credential.Token)

	return spotifyclient.NewGateway(httpClient, p.limiterFor(namespace), p.clock, p.config, credential.UserScoped),
		namespace, nil
}

func (p *Provider) limiterFor(namespace string) *clientcommon.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, ok := p.limiters.Get(namespace); ok {
		return limiter.(*clientcommon.Limiter)
	}

	limiter := clientcommon.NewLimiter(p.requestsPerSecond, p.burst, p.clock)
	p.limiters.Add(namespace, limiter)

	return limiter
}

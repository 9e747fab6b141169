package chain

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/nft-checkout/internal/config"
)

const BLOCKHASH_SERVICE = "blockhash-svc"

type cachedBlockhash struct {
	value     Blockhash
	updatedAt time.Time
}

// BlockhashService keeps a fresh blockhash + validity window available so
// purchase assembly does not pay an RPC round trip on the request path.
type BlockhashService struct {
	container.BaseDIInstance

	mu       sync.RWMutex
	current  *cachedBlockhash
	client   Client
	interval time.Duration
	stop     chan struct{}
}

func (svc *BlockhashService) ID() string {
	return BLOCKHASH_SERVICE
}

func (svc *BlockhashService) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	svc.client = NewRPCClient(rpcConfig.RPCUrl, rpcConfig.Commitment)
	svc.interval = rpcConfig.BlockhashRefreshInterval
	svc.stop = make(chan struct{})
	return nil
}

func (svc *BlockhashService) Start() error {
	if err := svc.refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("[BlockhashService] failed to fetch initial blockhash, will retry on first request")
	}

	go func() {
		ticker := time.NewTicker(svc.interval)
		defer ticker.Stop()
		for {
			select {
			case <-svc.stop:
				return
			case <-ticker.C:
				if err := svc.refresh(context.Background()); err != nil {
					log.Warn().Err(err).Msg("[BlockhashService] refresh failed")
				}
			}
		}
	}()
	return nil
}

func (svc *BlockhashService) Stop() error {
	close(svc.stop)
	return nil
}

// Client returns the underlying RPC client so sibling services reuse one
// connection pool.
func (svc *BlockhashService) Client() Client {
	return svc.client
}

// Get returns a blockhash no older than twice the refresh interval, falling
// back to a direct fetch when the cache is stale.
func (svc *BlockhashService) Get(ctx context.Context) (Blockhash, error) {
	svc.mu.RLock()
	cached := svc.current
	svc.mu.RUnlock()

	if cached != nil && time.Since(cached.updatedAt) < 2*svc.interval {
		return cached.value, nil
	}

	if err := svc.refresh(ctx); err != nil {
		if cached != nil {
			return cached.value, nil
		}
		return Blockhash{}, err
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current.value, nil
}

// DirectBlockhash fetches on every call. For one-shot flows with no service
// lifecycle to host the cache.
type DirectBlockhash struct {
	Client Client
}

func (d DirectBlockhash) Get(ctx context.Context) (Blockhash, error) {
	return d.Client.LatestBlockhash(ctx)
}

func (svc *BlockhashService) refresh(ctx context.Context) error {
	value, err := svc.client.LatestBlockhash(ctx)
	if err != nil {
		return err
	}

	svc.mu.Lock()
	svc.current = &cachedBlockhash{value: value, updatedAt: time.Now()}
	svc.mu.Unlock()
	return nil
}

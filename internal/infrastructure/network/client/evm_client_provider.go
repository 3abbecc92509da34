package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"

	"golang.org/x/time/rate"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// EVMNetworkClient fetches the position of an address on one EVM network.
type EVMNetworkClient interface {
	FetchPosition(ctx context.Context, address string) (entity.ChainPosition, error)
}

// EVMClientSource hands out clients per network.
type EVMClientSource interface {
	GetClient(netDef entity.NetworkDefinition) (EVMNetworkClient, error)
}

// EVMClientProvider creates EVM clients lazily and caches them per chain.
// All clients share one limiter since they hit the same provider account.
type EVMClientProvider struct {
	clients           map[entity.Chain]*EVMClient
	mu                sync.Mutex
	tokens            *TokenFilter
	limiter           *rate.Limiter
	retry             utils.RetryPolicy
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(
	tokens *TokenFilter,
	limiter *rate.Limiter,
	retry utils.RetryPolicy,
	rpcCallTimeout time.Duration,
	logger port.Logger,
) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[entity.Chain]*EVMClient),
		tokens:            tokens,
		limiter:           limiter,
		retry:             retry,
		logger:            logger,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient retrieves a client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *EVMClientProvider) GetClient(netDef entity.NetworkDefinition) (EVMNetworkClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.Chain]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name)
	ctx, cancel := context.WithTimeout(context.Background(), p.connectionTimeout)
	defer cancel()

	newClient, err := NewEVMClient(ctx, netDef, p.tokens, p.limiter, p.retry, p.rpcCallTimeout, p.logger)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.Chain] = newClient
	return newClient, nil
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for chain, c := range p.clients {
		c.Close()
		delete(p.clients, chain)
	}
}

package client

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"

	"golang.org/x/sync/errgroup"
)

// EVMAdapter serves ethereum and its L2s. An "ethereum" address is fanned
// out to every network; an L2 address is fetched on its own network only.
type EVMAdapter struct {
	source  EVMClientSource
	netDefs port.NetworkDefinitionProvider
	logger  port.Logger
	now     func() time.Time
}

// NewEVMAdapter creates a new EVMAdapter.
func NewEVMAdapter(source EVMClientSource, netDefs port.NetworkDefinitionProvider, logger port.Logger) *EVMAdapter {
	return &EVMAdapter{source: source, netDefs: netDefs, logger: logger, now: time.Now}
}

// Chains implements port.ChainAdapter.
func (a *EVMAdapter) Chains() []entity.Chain {
	out := make([]entity.Chain, len(entity.EVMChains))
	copy(out, entity.EVMChains)
	return out
}

// ValidateAddress implements port.ChainAdapter.
func (a *EVMAdapter) ValidateAddress(chain entity.Chain, _ string, address string) error {
	if !chain.IsEVM() {
		return apperrors.New(apperrors.CodeInvalidInput, "EVMAdapter.ValidateAddress", fmt.Sprintf("unsupported chain %q", chain))
	}
	_, err := NormalizeEVMAddress(address)
	return err
}

// FetchPositions implements port.ChainAdapter.
func (a *EVMAdapter) FetchPositions(ctx context.Context, chain entity.Chain, _ string, address string) ([]entity.ChainPosition, error) {
	normalized, err := NormalizeEVMAddress(address)
	if err != nil {
		return nil, err
	}
	if chain != entity.ChainEthereum {
		pos, err := a.fetchNetwork(ctx, chain, normalized)
		if err != nil {
			return nil, err
		}
		return []entity.ChainPosition{pos}, nil
	}
	return a.fetchAllNetworks(ctx, normalized)
}

func (a *EVMAdapter) fetchNetwork(ctx context.Context, chain entity.Chain, address string) (entity.ChainPosition, error) {
	netDef, ok := a.netDefs.GetNetworkDefinition(chain)
	if !ok {
		return entity.ChainPosition{}, apperrors.New(apperrors.CodeInvalidInput, "EVMAdapter.fetchNetwork", fmt.Sprintf("unsupported chain %q", chain))
	}
	if netDef.RPCURL == "" {
		return entity.ChainPosition{}, notConfigured("EVMAdapter.fetchNetwork", chain.Info().Label)
	}
	client, err := a.source.GetClient(netDef)
	if err != nil {
		return entity.ChainPosition{}, err
	}
	return client.FetchPosition(ctx, address)
}

// fetchAllNetworks queries every network concurrently. A failed network is
// reported as a zeroed placeholder; the call fails only when all of them do.
func (a *EVMAdapter) fetchAllNetworks(ctx context.Context, address string) ([]entity.ChainPosition, error) {
	defs := a.netDefs.GetAllNetworkDefinitions()
	configured := false
	for _, def := range defs {
		configured = configured || def.RPCURL != ""
	}
	if !configured {
		return nil, notConfigured("EVMAdapter.FetchPositions", "Alchemy")
	}

	positions := make([]entity.ChainPosition, len(defs))
	errs := make([]error, len(defs))

	var g errgroup.Group
	for i, def := range defs {
		g.Go(func() error {
			pos, err := a.fetchNetwork(ctx, def.Chain, address)
			if err != nil {
				a.logger.Warn("Failed to fetch network", "network", def.Name, "address", address, "error", err)
				errs[i] = err
				positions[i] = placeholderPosition(def.Chain, err, a.now())
				return nil
			}
			positions[i] = pos
			return nil
		})
	}
	_ = g.Wait()

	if err := allNetworksFailed(errs); err != nil {
		return nil, err
	}
	return positions, nil
}

func placeholderPosition(chain entity.Chain, err error, now time.Time) entity.ChainPosition {
	return entity.ChainPosition{
		Chain:            chain,
		Tokens:           []entity.TokenBalance{},
		LastTransactions: []entity.Transaction{},
		LastUpdated:      now,
		Error:            true,
		ErrorMessage:     apperrors.MessageOf(err),
	}
}

// allNetworksFailed returns nil unless every entry of errs is set. When all
// failures were rate limits the result is a rate-limit error.
func allNetworksFailed(errs []error) error {
	const op = "EVMAdapter.FetchPositions"
	if len(errs) == 0 {
		return nil
	}
	rateLimited := 0
	var retryAfter time.Duration
	for _, err := range errs {
		if err == nil {
			return nil
		}
		if apperrors.Is(err, apperrors.CodeRateLimited) {
			rateLimited++
			if ra := apperrors.RetryAfterOf(err); ra > retryAfter {
				retryAfter = ra
			}
		}
	}
	if rateLimited == len(errs) {
		return apperrors.RateLimited(op, "Rate limit exceeded on every Ethereum network. Please wait before refreshing again.", retryAfter)
	}
	return &apperrors.AppError{
		Code:    apperrors.CodePartialFailure,
		Op:      op,
		Message: "Failed to fetch data from any Ethereum network. Please try again later.",
		Err:     errs[0],
	}
}

package client

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/metrics"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	solanaDecimals         = 9
	solanaSignatureLimit   = 10
	solanaFeeOnlyDelta     = 0.001
	solanaDefaultFee       = 0.000005
	solanaMinReportedValue = 0.000001
	solanaProvider         = "solana"
)

var ( //nolint:gochecknoglobals
	solanaAddressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	jsonAPI              = jsoniter.ConfigCompatibleWithStandardLibrary
)

// SolanaRPC is the subset of the Solana JSON-RPC client the adapter uses.
type SolanaRPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
}

// SolanaClient reads SOL balances, supported SPL tokens and recent
// transactions over Solana JSON-RPC.
type SolanaClient struct {
	rpc            SolanaRPC
	mints          map[string]entity.TokenInfo
	limiter        *rate.Limiter
	retry          utils.RetryPolicy
	rpcCallTimeout time.Duration
	logger         port.Logger
	now            func() time.Time
}

// NewSolanaClient creates a new SolanaClient. A nil client marks the
// provider as not configured.
func NewSolanaClient(client SolanaRPC, mints []entity.TokenInfo, limiter *rate.Limiter, retry utils.RetryPolicy, rpcCallTimeout time.Duration, logger port.Logger) *SolanaClient {
	byMint := make(map[string]entity.TokenInfo, len(mints))
	for _, m := range mints {
		byMint[m.Address] = m
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &SolanaClient{
		rpc:            client,
		mints:          byMint,
		limiter:        limiter,
		retry:          retry,
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// NewSolanaRPC dials endpoint. An empty endpoint yields nil.
func NewSolanaRPC(endpoint string) SolanaRPC {
	if endpoint == "" {
		return nil
	}
	return rpc.New(endpoint)
}

// Chains implements port.ChainAdapter.
func (c *SolanaClient) Chains() []entity.Chain {
	return []entity.Chain{entity.ChainSolana}
}

// ParseSolanaAddress checks the base58 alphabet and length and decodes the key.
func ParseSolanaAddress(address string) (solana.PublicKey, error) {
	const op = "ParseSolanaAddress"
	clean := strings.TrimSpace(address)
	if !solanaAddressPattern.MatchString(clean) {
		return solana.PublicKey{}, apperrors.New(apperrors.CodeInvalidInput, op, "Invalid Solana address format")
	}
	pk, err := solana.PublicKeyFromBase58(clean)
	if err != nil {
		return solana.PublicKey{}, &apperrors.AppError{
			Code:    apperrors.CodeInvalidInput,
			Op:      op,
			Message: "Invalid Solana public key format",
			Err:     err,
		}
	}
	return pk, nil
}

// ValidateAddress implements port.ChainAdapter.
func (c *SolanaClient) ValidateAddress(_ entity.Chain, _ string, address string) error {
	_, err := ParseSolanaAddress(address)
	return err
}

// FetchPositions implements port.ChainAdapter.
func (c *SolanaClient) FetchPositions(ctx context.Context, _ entity.Chain, _ string, address string) ([]entity.ChainPosition, error) {
	pk, err := ParseSolanaAddress(address)
	if err != nil {
		return nil, err
	}
	if c.rpc == nil {
		return nil, notConfigured("SolanaClient.FetchPositions", "Solana")
	}

	var lamports uint64
	err = c.call(ctx, "SolanaClient.balance", func(ctx context.Context) error {
		out, err := c.rpc.GetBalance(ctx, pk, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		lamports = out.Value
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := c.tokenBalances(ctx, pk)
	if err != nil {
		return nil, err
	}

	txs, err := c.recentTransactions(ctx, pk)
	if err != nil {
		c.logger.Warn("Solana transaction history unavailable", "address", pk.String(), "error", err)
		txs = []entity.Transaction{}
	}

	return []entity.ChainPosition{{
		Chain:            entity.ChainSolana,
		Balance:          utils.FormatUint64Units(lamports, solanaDecimals),
		Tokens:           tokens,
		LastTransactions: txs,
		LastUpdated:      c.now(),
	}}, nil
}

func (c *SolanaClient) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return utils.Retry(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return classifySolanaError(op, err)
		}
		callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()

		err := fn(callCtx)
		status := 200
		switch {
		case err == nil:
		case isRateLimitText(err.Error()):
			status = 429
		case errors.Is(err, rpc.ErrNotFound):
		default:
			status = 0
		}
		metrics.UpstreamRequests.WithLabelValues(solanaProvider, metrics.StatusClass(status)).Inc()
		return classifySolanaError(op, err)
	})
}

func classifySolanaError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isRateLimitText(err.Error()) {
		return &apperrors.AppError{
			Code:    apperrors.CodeRateLimited,
			Op:      op,
			Status:  429,
			Message: "Rate limit exceeded for Solana. Please wait before refreshing again.",
			Err:     err,
		}
	}
	return &apperrors.AppError{
		Code:    apperrors.CodeUnavailable,
		Op:      op,
		Message: "Failed to fetch Solana balance. Please try again later.",
		Err:     err,
	}
}

func (c *SolanaClient) tokenBalances(ctx context.Context, owner solana.PublicKey) ([]entity.TokenBalance, error) {
	var accounts []*rpc.TokenAccount
	err := c.call(ctx, "SolanaClient.tokenAccounts", func(ctx context.Context) error {
		programID := solana.TokenProgramID
		out, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
			&rpc.GetTokenAccountsConfig{ProgramId: &programID},
			&rpc.GetTokenAccountsOpts{Commitment: rpc.CommitmentConfirmed, Encoding: solana.EncodingJSONParsed})
		if err != nil {
			return err
		}
		accounts = out.Value
		return nil
	})
	if err != nil {
		return nil, err
	}

	parsed := make([]ParsedTokenAccount, 0, len(accounts))
	for _, acc := range accounts {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		pa, ok := ParseTokenAccount(acc.Account.Data.GetRawJSON())
		if !ok {
			continue
		}
		parsed = append(parsed, pa)
	}
	return SumTokenAccounts(parsed, c.mints), nil
}

func (c *SolanaClient) recentTransactions(ctx context.Context, owner solana.PublicKey) ([]entity.Transaction, error) {
	var sigs []*rpc.TransactionSignature
	err := c.call(ctx, "SolanaClient.signatures", func(ctx context.Context) error {
		limit := solanaSignatureLimit
		out, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		})
		sigs = out
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(sigs) > recentTransferCount {
		sigs = sigs[:recentTransferCount]
	}

	txs := make([]entity.Transaction, 0, len(sigs))
	maxVersion := uint64(0)
	for _, sig := range sigs {
		if sig == nil {
			continue
		}
		var result *rpc.GetTransactionResult
		err := c.call(ctx, "SolanaClient.transaction", func(ctx context.Context) error {
			out, err := c.rpc.GetTransaction(ctx, sig.Signature, &rpc.GetTransactionOpts{
				Encoding:                       solana.EncodingBase64,
				Commitment:                     rpc.CommitmentConfirmed,
				MaxSupportedTransactionVersion: &maxVersion,
			})
			result = out
			return err
		})
		if err != nil {
			if apperrors.Is(err, apperrors.CodeRateLimited) {
				c.logger.Warn("Solana transaction lookups rate limited", "fetched", len(txs), "error", err)
				break
			}
			c.logger.Debug("Skipping Solana transaction", "signature", sig.Signature.String(), "error", err)
			continue
		}
		if result == nil || result.Meta == nil || result.Meta.Err != nil || result.Transaction == nil {
			continue
		}
		decoded, err := result.Transaction.GetTransaction()
		if err != nil || decoded == nil {
			continue
		}

		keys := make([]solana.PublicKey, 0, len(decoded.Message.AccountKeys)+len(result.Meta.LoadedAddresses.Writable)+len(result.Meta.LoadedAddresses.ReadOnly))
		keys = append(keys, decoded.Message.AccountKeys...)
		keys = append(keys, result.Meta.LoadedAddresses.Writable...)
		keys = append(keys, result.Meta.LoadedAddresses.ReadOnly...)
		index := -1
		for i, k := range keys {
			if k.Equals(owner) {
				index = i
				break
			}
		}
		if index < 0 {
			continue
		}

		var blockTime int64
		if sig.BlockTime != nil {
			blockTime = int64(*sig.BlockTime)
		} else if result.BlockTime != nil {
			blockTime = int64(*result.BlockTime)
		}
		tx, ok := ClassifySolanaTx(sig.Signature.String(), result.Meta.PreBalances, result.Meta.PostBalances, index, result.Meta.Fee, blockTime, c.now())
		if ok {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

// ClassifySolanaTx derives a transaction from the tracked account's lamport
// delta. Deltas under 0.001 SOL are treated as fee-only outgoing
// transactions valued at the fee. ok is false for negligible values.
func ClassifySolanaTx(signature string, pre, post []uint64, index int, fee uint64, blockTime int64, now time.Time) (entity.Transaction, bool) {
	var preBal, postBal uint64
	if index < len(pre) {
		preBal = pre[index]
	}
	if index < len(post) {
		postBal = post[index]
	}
	delta := (float64(postBal) - float64(preBal)) / math.Pow10(solanaDecimals)

	value := math.Abs(delta)
	direction := entity.DirectionSent
	if delta > 0 {
		direction = entity.DirectionReceived
	}
	if math.Abs(delta) < solanaFeeOnlyDelta {
		direction = entity.DirectionSent
		value = solanaDefaultFee
		if fee > 0 {
			value = float64(fee) / math.Pow10(solanaDecimals)
		}
	}
	if value <= solanaMinReportedValue {
		return entity.Transaction{}, false
	}

	ts := now.UnixMilli()
	if blockTime > 0 {
		ts = blockTime * 1000
	}
	return entity.Transaction{
		Hash:      signature,
		Timestamp: ts,
		Value:     value,
		Type:      direction,
		Asset:     entity.ChainSolana.NativeSymbol(),
	}, true
}

// ParsedTokenAccount is the part of a jsonParsed SPL token account the adapter reads.
type ParsedTokenAccount struct {
	Mint     string
	Amount   string
	Decimals uint8
}

type jsonParsedAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount         string `json:"amount"`
				Decimals       uint8  `json:"decimals"`
				UIAmountString string `json:"uiAmountString"`
			} `json:"tokenAmount"`
		} `json:"info"`
		Type string `json:"type"`
	} `json:"parsed"`
}

// ParseTokenAccount decodes the jsonParsed data of a token account.
func ParseTokenAccount(raw []byte) (ParsedTokenAccount, bool) {
	var acc jsonParsedAccount
	if len(raw) == 0 || jsonAPI.Unmarshal(raw, &acc) != nil {
		return ParsedTokenAccount{}, false
	}
	info := acc.Parsed.Info
	if info.Mint == "" {
		return ParsedTokenAccount{}, false
	}
	return ParsedTokenAccount{
		Mint:     info.Mint,
		Amount:   info.TokenAmount.UIAmountString,
		Decimals: info.TokenAmount.Decimals,
	}, true
}

// SumTokenAccounts keeps accounts of supported mints with a positive
// balance and sums accounts sharing a mint. Output follows first-seen order.
func SumTokenAccounts(accounts []ParsedTokenAccount, mints map[string]entity.TokenInfo) []entity.TokenBalance {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	decimalsOf := make(map[string]uint8)
	for _, acc := range accounts {
		if _, ok := mints[acc.Mint]; !ok {
			continue
		}
		amount, err := decimal.NewFromString(acc.Amount)
		if err != nil || !amount.IsPositive() {
			continue
		}
		if _, seen := totals[acc.Mint]; !seen {
			order = append(order, acc.Mint)
			decimalsOf[acc.Mint] = acc.Decimals
		}
		totals[acc.Mint] = totals[acc.Mint].Add(amount)
	}

	out := make([]entity.TokenBalance, 0, len(order))
	for _, mint := range order {
		info := mints[mint]
		decimals := info.Decimals
		if decimals == 0 {
			decimals = decimalsOf[mint]
		}
		out = append(out, entity.TokenBalance{
			ContractAddress: mint,
			Symbol:          info.Symbol,
			Name:            info.Name,
			Balance:         totals[mint].Round(utils.DisplayPrecision).String(),
			Decimals:        decimals,
		})
	}
	return out
}

package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"monad-tipbot-go/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Gas limit of a plain value transfer.
const transferGasLimit = 21000

// Compile-time check: *EVMClient must satisfy Client.
var _ Client = (*EVMClient)(nil)

// EVMClient talks to a Monad RPC node through go-ethereum's client.
type EVMClient struct {
	eth     *ethclient.Client
	chainId *big.Int
	cfg     models.ChainConfig
}

func NewEVMClient(ctx context.Context, cfg models.ChainConfig) (*EVMClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL cannot be empty")
	}

	httpClient, err := createCustomHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to dial RPC node: %w", err)
	}

	client := ethclient.NewClient(rpcClient)

	chainId, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to query chain id: %w", err)
	}
	if cfg.ChainId != 0 && chainId.Int64() != cfg.ChainId {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: node reports %d, configured %d", chainId.Int64(), cfg.ChainId)
	}

	zap.L().Info("Connected to RPC node",
		zap.String("url", cfg.RPCURL),
		zap.Int64("chain_id", chainId.Int64()))

	return &EVMClient{
		eth:     client,
		chainId: chainId,
		cfg:     cfg,
	}, nil
}

func createCustomHttpClient() (*http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}

func (c *EVMClient) BalanceAt(ctx context.Context, address string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	wei, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to query balance of %s: %w", address, err)
	}
	return FromWei(wei), nil
}

func (c *EVMClient) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	nonce, err := c.eth.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("unable to query pending nonce of %s: %w", address, err)
	}
	return nonce, nil
}

func (c *EVMClient) LatestNonceAt(ctx context.Context, address string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	nonce, err := c.eth.NonceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("unable to query latest nonce of %s: %w", address, err)
	}
	return nonce, nil
}

func (c *EVMClient) EstimateTransferFee(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to suggest gas price: %w", err)
	}

	fee := new(big.Int).Mul(gasPrice, big.NewInt(transferGasLimit))
	return FromWei(fee), nil
}

func (c *EVMClient) Submit(ctx context.Context, intent TransferIntent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	key, err := crypto.HexToECDSA(strings.TrimPrefix(intent.Wallet.PrivateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid private key material for %s: %w", intent.Wallet.Identity, err)
	}

	if !common.IsHexAddress(intent.To) {
		return "", fmt.Errorf("invalid destination address: %s", intent.To)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to suggest gas price: %w", err)
	}

	to := common.HexToAddress(intent.To)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    intent.Nonce,
		GasPrice: gasPrice,
		Gas:      transferGasLimit,
		To:       &to,
		Value:    ToWei(intent.Amount),
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainId), key)
	if err != nil {
		return "", fmt.Errorf("unable to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", ClassifySubmitError(err)
	}

	zap.L().Info("Transaction submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("from", intent.Wallet.Address),
		zap.String("to", intent.To),
		zap.String("amount", intent.Amount.String()),
		zap.Uint64("nonce", intent.Nonce))

	return signed.Hash().Hex(), nil
}

func (c *EVMClient) WaitForReceipt(ctx context.Context, txHash string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmationTimeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(c.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return nil
			}
			return fmt.Errorf("transaction %s reverted on-chain", txHash)
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet, keep polling.
		default:
			return fmt.Errorf("%w: receipt query for %s failed: %v", ErrConfirmationAmbiguous, txHash, err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation wait for %s timed out", ErrConfirmationAmbiguous, txHash)
		}
	}
}

func (c *EVMClient) TransactionConfirmed(ctx context.Context, txHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, fmt.Errorf("unable to re-poll transaction %s: %w", txHash, err)
	}
	return receipt.Status == types.ReceiptStatusSuccessful, nil
}

func (c *EVMClient) Close() {
	c.eth.Close()
}

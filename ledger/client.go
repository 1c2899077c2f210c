// Copyright (C) 2025 intentlayer
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/internal/metrics"
)

const (
	defaultGasEstimate = uint64(300000)
	gasBufferNumerator  = 110
	gasBufferDenom      = 100
	receiptPollInterval = 100 * time.Millisecond
	receiptPollTimeout  = 120 * time.Second
	minStakeCacheTTL    = 15 * time.Minute
)

// TransactionError wraps a signing or broadcast failure.
type TransactionError struct {
	Message string
	Cause   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Message, e.Cause)
}

func (e *TransactionError) Unwrap() error { return e.Cause }

// Receipt is the canonical, hex-stringified transaction receipt returned
// to callers, independent of go-ethereum's internal types.
type Receipt struct {
	TransactionHash string   `json:"transactionHash"`
	BlockNumber     uint64   `json:"blockNumber"`
	BlockHash       string   `json:"blockHash"`
	Status          uint64   `json:"status"`
	GasUsed         uint64   `json:"gasUsed"`
	From            string   `json:"from"`
	To              string   `json:"to,omitempty"`
	Logs            []string `json:"logs"`
}

// Client talks to the Ethereum-JSON-RPC-shaped ledger: IntentRecorder
// submission, DIDRegistry resolution/registration, gas estimation, and
// receipt polling.
type Client struct {
	rpc             *ethclient.Client
	chainID         *big.Int
	signer          Signer
	intentRecorder  common.Address
	didRegistry     common.Address
	intentABI       abi.ABI
	registryABI     abi.ABI

	minStakeMu      sync.Mutex
	minStakeWei     *big.Int
	minStakeAt      time.Time
	minStakeForced  bool
}

// NewClient dials rpcURL and wires the configured contract addresses.
func NewClient(ctx context.Context, rpcURL string, signer Signer, intentRecorder, didRegistry common.Address) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", rpcURL, err)
	}
	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: read chain id: %w", err)
	}
	intentABI, err := IntentRecorderABI()
	if err != nil {
		return nil, err
	}
	registryABI, err := DIDRegistryABI()
	if err != nil {
		return nil, err
	}
	return &Client{
		rpc:            rpc,
		chainID:        chainID,
		signer:         signer,
		intentRecorder: intentRecorder,
		didRegistry:    didRegistry,
		intentABI:      intentABI,
		registryABI:    registryABI,
	}, nil
}

// ChainID returns the chain ID observed at dial time.
func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// ResolveDID calls DIDRegistry.resolve(did) -> (owner, active).
func (c *Client) ResolveDID(ctx context.Context, did string) (owner common.Address, active bool, err error) {
	bound := bind.NewBoundContract(c.didRegistry, c.registryABI, c.rpc, c.rpc, c.rpc)
	var out []interface{}
	err = bound.Call(&bind.CallOpts{Context: ctx}, &out, "resolve", did)
	if err != nil {
		return common.Address{}, false, fmt.Errorf("ledger: resolve DID %s: %w", did, err)
	}
	owner = *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	active = *abi.ConvertType(out[1], new(bool)).(*bool)
	return owner, active, nil
}

// MinStakeWei returns IntentRecorder.minStakeWei(), cached for 15
// minutes. override, if non-nil, is always returned and disables the
// cache refresh entirely.
func (c *Client) MinStakeWei(ctx context.Context, override *big.Int) (*big.Int, error) {
	if override != nil {
		c.minStakeMu.Lock()
		c.minStakeWei = new(big.Int).Set(override)
		c.minStakeForced = true
		c.minStakeMu.Unlock()
		return override, nil
	}

	c.minStakeMu.Lock()
	if c.minStakeForced && c.minStakeWei != nil {
		v := new(big.Int).Set(c.minStakeWei)
		c.minStakeMu.Unlock()
		return v, nil
	}
	if c.minStakeWei != nil && time.Since(c.minStakeAt) < minStakeCacheTTL {
		v := new(big.Int).Set(c.minStakeWei)
		c.minStakeMu.Unlock()
		return v, nil
	}
	c.minStakeMu.Unlock()

	bound := bind.NewBoundContract(c.intentRecorder, c.intentABI, c.rpc, c.rpc, c.rpc)
	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, "minStakeWei"); err != nil {
		return nil, fmt.Errorf("ledger: read minStakeWei: %w", err)
	}
	value := *abi.ConvertType(out[0], new(big.Int)).(*big.Int)

	c.minStakeMu.Lock()
	c.minStakeWei = value
	c.minStakeAt = time.Now()
	c.minStakeMu.Unlock()

	return new(big.Int).Set(value), nil
}

// RecordOptions configures RecordIntent.
type RecordOptions struct {
	Gas          uint64
	GasPrice     *big.Int
	PollInterval time.Duration
	WaitReceipt  bool
}

// RecordIntent signs and sends IntentRecorder.recordIntent(envelopeHash,
// cid) with value = stakeWei, estimating gas (falling back to
// defaultGasEstimate + a WARNING log on estimation failure, with a 10%
// buffer otherwise), and optionally polls for the receipt.
func (c *Client) RecordIntent(ctx context.Context, envelopeHash [32]byte, cid []byte, stakeWei *big.Int, opts RecordOptions) (*Receipt, error) {
	data, err := c.intentABI.Pack("recordIntent", envelopeHash, cid)
	if err != nil {
		return nil, fmt.Errorf("ledger: pack recordIntent: %w", err)
	}

	nonce, err := c.rpc.PendingNonceAt(ctx, c.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("ledger: read nonce: %w", err)
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice, err = c.rpc.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("ledger: suggest gas price: %w", err)
		}
	}

	gasLimit := opts.Gas
	if gasLimit == 0 {
		gasLimit, err = c.estimateGas(ctx, c.intentRecorder, stakeWei, data)
		if err != nil {
			logger.GetDefaultLogger().Warn("ledger: gas estimation failed, using fallback", logger.Error(err), logger.Int("fallback_gas", int(defaultGasEstimate)))
			gasLimit = defaultGasEstimate
		} else {
			gasLimit = gasLimit * gasBufferNumerator / gasBufferDenom
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.intentRecorder,
		Value:    stakeWei,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		return nil, &TransactionError{Message: "sign transaction", Cause: err}
	}

	metrics.LedgerGasEstimate.Observe(float64(gasLimit))

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		metrics.LedgerTransactions.WithLabelValues("send_failed").Inc()
		return nil, &TransactionError{Message: "broadcast transaction", Cause: err}
	}

	if !opts.WaitReceipt {
		metrics.LedgerTransactions.WithLabelValues("sent").Inc()
		return &Receipt{TransactionHash: signed.Hash().Hex()}, nil
	}

	poll := opts.PollInterval
	if poll == 0 {
		poll = receiptPollInterval
	}

	start := time.Now()
	receipt, err := c.waitForReceipt(ctx, signed.Hash(), poll)
	metrics.LedgerReceiptWait.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LedgerTransactions.WithLabelValues("no_receipt").Inc()
		return nil, err
	}

	outcome := "success"
	if receipt.Status != uint64(types.ReceiptStatusSuccessful) {
		outcome = "reverted"
	}
	metrics.LedgerTransactions.WithLabelValues(outcome).Inc()

	return canonicalReceipt(receipt, c.signer.Address(), c.intentRecorder), nil
}

func (c *Client) estimateGas(ctx context.Context, to common.Address, value *big.Int, data []byte) (uint64, error) {
	return c.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.signer.Address(),
		To:    &to,
		Value: value,
		Data:  data,
	})
}

func (c *Client) waitForReceipt(ctx context.Context, txHash common.Hash, poll time.Duration) (*types.Receipt, error) {
	deadline := time.Now().Add(receiptPollTimeout)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("ledger: receipt for %s not found within %s", txHash.Hex(), receiptPollTimeout)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// canonicalReceipt builds the SDK's public Receipt from a go-ethereum
// receipt. to is the transaction's own To address, not
// r.ContractAddress: ContractAddress is only populated by go-ethereum
// for contract-creation transactions, and every transaction this
// client sends targets an already-deployed contract.
func canonicalReceipt(r *types.Receipt, from, to common.Address) *Receipt {
	logs := make([]string, 0, len(r.Logs))
	for _, l := range r.Logs {
		logs = append(logs, l.TxHash.Hex())
	}
	return &Receipt{
		TransactionHash: r.TxHash.Hex(),
		BlockNumber:     r.BlockNumber.Uint64(),
		BlockHash:       r.BlockHash.Hex(),
		Status:          r.Status,
		GasUsed:         r.GasUsed,
		From:            from.Hex(),
		To:              to.Hex(),
		Logs:            logs,
	}
}

// NormalizeEnvelopeHash strips an optional "0x" prefix and validates hex
// converts to exactly 32 bytes, per §4.10 step 5.
func NormalizeEnvelopeHash(s string) ([32]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("ledger: envelope hash is not valid hex: %w", err)
	}
	if len(raw) != 32 {
		return [32]byte{}, fmt.Errorf("ledger: envelope hash must be 32 bytes, got %d", len(raw))
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}

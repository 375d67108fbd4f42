package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"datanexus/internal/config"
	"datanexus/internal/ledger"
	"datanexus/internal/model"
)

// registryABI covers the two registry entry points the pipeline uses: the
// metadata commit and the paginated read.
const registryABI = `[
  {
    "type": "function",
    "name": "storeMetadata",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "cid", "type": "string"},
      {"name": "name", "type": "string"},
      {"name": "fileName", "type": "string"},
      {"name": "fileSize", "type": "uint256"},
      {"name": "domain", "type": "string"},
      {"name": "license", "type": "string"},
      {"name": "access", "type": "string"},
      {"name": "visibility", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getAllMetadata",
    "stateMutability": "view",
    "inputs": [
      {"name": "offset", "type": "uint256"},
      {"name": "limit", "type": "uint256"}
    ],
    "outputs": [
      {
        "name": "records",
        "type": "tuple[]",
        "components": [
          {"name": "cid", "type": "string"},
          {"name": "name", "type": "string"},
          {"name": "fileName", "type": "string"},
          {"name": "fileSize", "type": "uint256"},
          {"name": "domain", "type": "string"},
          {"name": "license", "type": "string"},
          {"name": "access", "type": "string"},
          {"name": "visibility", "type": "string"},
          {"name": "createdAt", "type": "uint256"},
          {"name": "updatedAt", "type": "uint256"},
          {"name": "owner", "type": "address"}
        ]
      }
    ]
  }
]`

// registryRecord mirrors the on-chain tuple layout for ABI unpacking.
type registryRecord struct {
	Cid        string
	Name       string
	FileName   string
	FileSize   *big.Int
	Domain     string
	License    string
	Access     string
	Visibility string
	CreatedAt  *big.Int
	UpdatedAt  *big.Int
	Owner      common.Address
}

// Registry is the go-ethereum backed ledger client bound to the fixed
// dataset registry contract. Safe for concurrent use; nonce management is
// serialized by the shared transactor.
type Registry struct {
	client         *ethclient.Client
	contract       *bind.BoundContract
	auth           *bind.TransactOpts
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

var _ ledger.Ledger = (*Registry)(nil)

// NewRegistry dials the RPC endpoint, binds the registry contract, and
// prepares a keyed transactor for the configured chain.
func NewRegistry(cfg config.LedgerConfig) (*Registry, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ledger rpc url is required")
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("registry contract address is required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain id is required")
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	contract := bind.NewBoundContract(common.HexToAddress(cfg.ContractAddress), parsed, client, client, client)

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}

	confirm := time.Duration(cfg.ConfirmTimeoutSec) * time.Second
	if confirm <= 0 {
		confirm = 90 * time.Second
	}
	poll := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = 2 * time.Second
	}

	return &Registry{
		client:         client,
		contract:       contract,
		auth:           auth,
		confirmTimeout: confirm,
		pollInterval:   poll,
	}, nil
}

// SubmitMetadata sends the storeMetadata transaction. Returns once the node
// accepts it; inclusion is a separate await.
func (r *Registry) SubmitMetadata(ctx context.Context, draft model.DatasetRecordDraft, sender string) (ledger.TxHandle, error) {
	// Owner attribution on chain is the transaction signer. Refuse to commit
	// on behalf of a wallet this service cannot sign for.
	if sender != "" && !strings.EqualFold(sender, r.auth.From.Hex()) {
		return ledger.TxHandle{}, fmt.Errorf("sender %s does not match signing account %s", sender, r.auth.From.Hex())
	}

	opts := *r.auth
	opts.Context = ctx

	tx, err := r.contract.Transact(&opts, "storeMetadata",
		draft.CID,
		draft.Name,
		draft.FileName,
		big.NewInt(draft.FileSizeBytes),
		string(draft.Domain),
		string(draft.License),
		string(draft.Access),
		string(draft.Visibility),
	)
	if err != nil {
		return ledger.TxHandle{}, classifySubmitError(err)
	}

	return ledger.TxHandle{
		Hash:   tx.Hash().Hex(),
		Sender: r.auth.From.Hex(),
		Draft:  draft,
	}, nil
}

// AwaitInclusion polls for the receipt under the configured bound. Polling
// by hash (rather than bind.WaitMined on a held *types.Transaction) lets a
// handle recovered from the journal be awaited after a restart.
func (r *Registry) AwaitInclusion(ctx context.Context, h ledger.TxHandle) (*model.DatasetRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.confirmTimeout)
	defer cancel()

	hash := common.HexToHash(h.Hash)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := r.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return r.recordFromReceipt(ctx, h, receipt)
		case err == ethereum.NotFound:
			// Not mined yet; keep polling until the bound elapses.
		default:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ledger.ErrInclusionTimeout, h.Hash)
			}
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ledger.ErrInclusionTimeout, h.Hash)
		case <-ticker.C:
		}
	}
}

// recordFromReceipt materializes the committed record. The ledger sets the
// timestamps, so they come from the including block, not the local clock.
func (r *Registry) recordFromReceipt(ctx context.Context, h ledger.TxHandle, receipt *types.Receipt) (*model.DatasetRecord, error) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s in block %s", ledger.ErrReverted, h.Hash, receipt.BlockNumber)
	}

	header, err := r.client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch block header: %w", err)
	}
	committedAt := int64(header.Time)

	return &model.DatasetRecord{
		CID:           h.Draft.CID,
		Name:          h.Draft.Name,
		FileName:      h.Draft.FileName,
		FileSizeBytes: h.Draft.FileSizeBytes,
		Domain:        h.Draft.Domain,
		License:       h.Draft.License,
		Access:        h.Draft.Access,
		Visibility:    h.Draft.Visibility,
		CreatedAt:     committedAt,
		UpdatedAt:     committedAt,
		Owner:         h.Sender,
	}, nil
}

// ReadMetadataPage calls getAllMetadata(offset, limit). hasMore is inferred
// from a full page; the contract does not expose a total count.
func (r *Registry) ReadMetadataPage(ctx context.Context, offset, limit int) ([]model.DatasetRecord, bool, error) {
	if limit <= 0 {
		return []model.DatasetRecord{}, false, nil
	}

	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAllMetadata", big.NewInt(int64(offset)), big.NewInt(int64(limit)))
	if err != nil {
		return nil, false, fmt.Errorf("read metadata page: %w", err)
	}
	raw := *abi.ConvertType(out[0], new([]registryRecord)).(*[]registryRecord)

	records := make([]model.DatasetRecord, 0, len(raw))
	for _, rec := range raw {
		records = append(records, model.DatasetRecord{
			CID:           rec.Cid,
			Name:          rec.Name,
			FileName:      rec.FileName,
			FileSizeBytes: rec.FileSize.Int64(),
			Domain:        model.Domain(rec.Domain),
			License:       model.License(rec.License),
			Access:        model.Access(rec.Access),
			Visibility:    model.Visibility(rec.Visibility),
			CreatedAt:     rec.CreatedAt.Int64(),
			UpdatedAt:     rec.UpdatedAt.Int64(),
			Owner:         rec.Owner.Hex(),
		})
	}

	return records, len(records) == limit, nil
}

// classifySubmitError maps node-side refusals onto the commit taxonomy.
// Gas estimation replays the call, so duplicate-CID reverts usually surface
// here, before anything reaches the mempool.
func classifySubmitError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already") || strings.Contains(msg, "duplicate") || strings.Contains(msg, "exists"):
		return fmt.Errorf("%w: %v", ledger.ErrDuplicateCID, err)
	case strings.Contains(msg, "execution reverted"):
		return fmt.Errorf("%w: %v", ledger.ErrReverted, err)
	case strings.Contains(msg, "nonce") || strings.Contains(msg, "underpriced") || strings.Contains(msg, "insufficient funds"):
		return fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	default:
		return fmt.Errorf("submit metadata: %w", err)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datanexus/internal/ledger"
	"datanexus/internal/model"
	"datanexus/internal/storage"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// DisplayRecord is a ledger record projected for presentation. Raw values
// ride along so clients can sort or link without re-parsing.
type DisplayRecord struct {
	CID           string `json:"cid"`
	Name          string `json:"name"`
	FileName      string `json:"fileName"`
	FileSize      string `json:"fileSize"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	Domain        string `json:"domain"`
	DomainCode    string `json:"domainCode"`
	License       string `json:"license"`
	Access        string `json:"access"`
	Visibility    string `json:"visibility"`
	CreatedAt     string `json:"createdAt"`
	Owner         string `json:"owner"`
}

type CatalogPage struct {
	Items   []DisplayRecord `json:"data"`
	HasMore bool            `json:"hasMore"`
}

// Filter narrows a catalog page. Zero value means no filtering.
type Filter struct {
	Owner string
}

type StoredFilesResult struct {
	Files []storage.StoredObject `json:"fileList"`
	Total int                    `json:"totalFiles"`
}

// CatalogService is the read side: a stateless projection over the ledger
// and the store. It holds no cache and never writes.
type CatalogService interface {
	ListPage(ctx context.Context, offset, limit int, f Filter) (*CatalogPage, error)
	ListStoredFiles(ctx context.Context) (*StoredFilesResult, error)
}

type catalogService struct {
	ledger ledger.Ledger
	store  storage.Store
}

func NewCatalogService(led ledger.Ledger, store storage.Store) CatalogService {
	return &catalogService{ledger: led, store: store}
}

func (c *catalogService) ListPage(ctx context.Context, offset, limit int, f Filter) (*CatalogPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	records, hasMore, err := c.ledger.ReadMetadataPage(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("read ledger page: %w", err)
	}

	owner := strings.ToLower(f.Owner)
	items := make([]DisplayRecord, 0, len(records))
	for i := range records {
		if owner != "" && strings.ToLower(records[i].Owner) != owner {
			continue
		}
		items = append(items, project(&records[i]))
	}
	return &CatalogPage{Items: items, HasMore: hasMore}, nil
}

func (c *catalogService) ListStoredFiles(ctx context.Context) (*StoredFilesResult, error) {
	files, total, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	return &StoredFilesResult{Files: files, Total: total}, nil
}

func project(r *model.DatasetRecord) DisplayRecord {
	return DisplayRecord{
		CID:           r.CID,
		Name:          r.Name,
		FileName:      r.FileName,
		FileSize:      FormatFileSize(r.FileSizeBytes),
		FileSizeBytes: r.FileSizeBytes,
		Domain:        r.Domain.Label(),
		DomainCode:    string(r.Domain),
		License:       string(r.License),
		Access:        string(r.Access),
		Visibility:    string(r.Visibility),
		CreatedAt:     FormatDate(r.CreatedAt),
		Owner:         r.Owner,
	}
}

// FormatFileSize renders a byte count with binary (1024) unit steps. Bytes
// print as an integer, larger units with two decimals.
func FormatFileSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	}
}

// FormatDate renders a unix timestamp like "Jan 2, 2006" in UTC.
func FormatDate(unixSec int64) string {
	return time.Unix(unixSec, 0).UTC().Format("Jan 2, 2006")
}

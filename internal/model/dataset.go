package model

// Package model contains domain models/data structures shared across layers.
// No business logic and no persistence tags here.

// Domain is the dataset's ML domain code as stored on chain.
// The read side must tolerate codes written by future clients, so unknown
// values are carried verbatim instead of being rejected.
type Domain string

const (
	DomainCV  Domain = "cv"
	DomainNLP Domain = "nlp"
	DomainRL  Domain = "rl"
)

// Label returns the human-readable name for a domain code.
// Unrecognized codes pass through unchanged.
func (d Domain) Label() string {
	switch d {
	case DomainCV:
		return "Computer Vision"
	case DomainNLP:
		return "Natural Language Processing"
	case DomainRL:
		return "Reinforcement Learning"
	default:
		return string(d)
	}
}

// License is the dataset license code.
type License string

const (
	LicenseMIT    License = "mit"
	LicenseApache License = "apache"
	LicenseGPL    License = "gpl"
)

// Access is the dataset access model.
type Access string

const (
	AccessFree Access = "free"
	AccessPaid Access = "paid"
	AccessDAO  Access = "dao"
)

// Visibility controls whether a dataset appears in public discovery.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// DatasetRecord is the on-chain-visible unit: one committed dataset.
// A record exists iff its commit transaction has been included in the
// ledger; an uploaded-but-uncommitted blob is an orphan, not a record.
type DatasetRecord struct {
	CID           string     `json:"cid"`
	Name          string     `json:"name"`
	FileName      string     `json:"fileName"`
	FileSizeBytes int64      `json:"fileSizeBytes"`
	Domain        Domain     `json:"domain"`
	License       License    `json:"license"`
	Access        Access     `json:"access"`
	Visibility    Visibility `json:"visibility"`
	CreatedAt     int64      `json:"createdAt"` // unix seconds, set by the ledger at commit time
	UpdatedAt     int64      `json:"updatedAt"` // unix seconds, set by the ledger
	Owner         string     `json:"owner"`     // wallet address of the committing account
}

// DatasetRecordDraft is the write-side payload for a metadata commit.
// The CID comes from the content store; everything else is
// contributor-supplied.
type DatasetRecordDraft struct {
	CID           string
	Name          string
	FileName      string
	FileSizeBytes int64
	Domain        Domain
	License       License
	Access        Access
	Visibility    Visibility
}

// MetadataDraft is the contributor-supplied portion of a registration
// request, before the upload has produced a CID.
type MetadataDraft struct {
	Name       string
	Provider   string // content store provider choice ("gateway", "s3")
	Domain     Domain
	License    License
	Access     Access
	Visibility Visibility
}

package model

import "time"

// Phase names the registration coordinator's states. The journal persists
// the phase a registration last reached so orphans survive restarts.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseUploading  Phase = "uploading"
	PhaseUploaded   Phase = "uploaded"
	PhaseCommitting Phase = "committing"
	PhaseCommitted  Phase = "committed"

	PhaseValidationFailed Phase = "validation_failed"
	PhaseUploadFailed     Phase = "upload_failed"
	PhaseCommitFailed     Phase = "commit_failed"

	// PhaseOrphaned means the blob was uploaded (CID exists) but no ledger
	// record is confirmed: the commit timed out and must be reconciled.
	PhaseOrphaned Phase = "orphaned"
)

// Terminal reports whether no further transition can occur without an
// explicit reconciliation run.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCommitted, PhaseValidationFailed, PhaseUploadFailed, PhaseCommitFailed, PhaseOrphaned:
		return true
	}
	return false
}

// Registration is a journal row tracking one registration attempt from the
// moment its upload succeeded. The ledger stays the single source of truth
// for committed datasets; the journal only records progress and orphans.
type Registration struct {
	ID            string     `json:"id"`
	CID           string     `json:"cid"`
	Name          string     `json:"name"`
	FileName      string     `json:"file_name"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	Domain        Domain     `json:"domain"`
	License       License    `json:"license"`
	Access        Access     `json:"access"`
	Visibility    Visibility `json:"visibility"`
	Owner         string     `json:"owner"`
	TxHash        string     `json:"tx_hash,omitempty"`
	Phase         Phase      `json:"phase"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Draft rebuilds the commit payload for this journal row. Reconciliation
// re-submits the same CID, never a fresh upload.
func (r *Registration) Draft() DatasetRecordDraft {
	return DatasetRecordDraft{
		CID:           r.CID,
		Name:          r.Name,
		FileName:      r.FileName,
		FileSizeBytes: r.FileSizeBytes,
		Domain:        r.Domain,
		License:       r.License,
		Access:        r.Access,
		Visibility:    r.Visibility,
	}
}

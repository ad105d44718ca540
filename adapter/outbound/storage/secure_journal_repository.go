package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

const journalFileVersion = 1

// EncryptedJournalFile is the on-disk envelope of the journal
type EncryptedJournalFile struct {
	Version  uint32   `json:"version"`
	Nonce    []byte   `json:"nonce"`
	Data     []byte   `json:"data"`
	Checksum [32]byte `json:"checksum"`
}

// SecureJournalRepository persists session reports in an AES-GCM encrypted
// file keyed to the host.
type SecureJournalRepository struct {
	filePath   string
	crypto     outbound.CryptoService
	logger     outbound.Logger
	key        [32]byte
	maxEntries int

	mutex sync.RWMutex
	db    *model.JournalDatabase
}

func NewSecureJournalRepository(
	filePath string,
	maxEntries int,
	crypto outbound.CryptoService,
	machineID outbound.MachineIDService,
	logger outbound.Logger,
) (*SecureJournalRepository, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// machine ID based cypher key
	id, err := machineID.GetMachineID()
	if err != nil {
		return nil, fmt.Errorf("failed to get machine ID: %w", err)
	}

	repo := &SecureJournalRepository{
		filePath:   filePath,
		crypto:     crypto,
		logger:     logger,
		key:        crypto.DeriveKey(id),
		maxEntries: maxEntries,
	}

	if !repo.Exists() {
		logger.Info("Creating new session journal", "path", filePath)
		repo.db = &model.JournalDatabase{}
		return repo, nil
	}

	db, err := repo.Load()
	switch {
	case err == nil:
		logger.Info("Session journal loaded", "path", filePath, "reports", len(db.Reports))
		repo.db = db
	case errors.Is(err, model.ErrJournalNotFound):
		repo.db = &model.JournalDatabase{}
	default:
		// keep the unreadable file for inspection and start over
		aside := filePath + ".corrupt"
		if renameErr := os.Rename(filePath, aside); renameErr != nil {
			return nil, fmt.Errorf("journal unreadable (%v) and could not be moved aside: %w", err, renameErr)
		}
		logger.Warn("Journal unreadable, starting with an empty one", "path", filePath, "moved_to", aside, "error", err)
		repo.db = &model.JournalDatabase{}
	}

	return repo, nil
}

func (r *SecureJournalRepository) Append(ctx context.Context, report *model.SessionReport) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.db.Reports
	r.db.Reports = append(append([]*model.SessionReport(nil), previous...), report.Clone())
	r.db.Trim(r.maxEntries)

	if err := r.save(r.db); err != nil {
		// Rollback
		r.db.Reports = previous
		return fmt.Errorf("failed to persist session report: %w", err)
	}

	r.logger.Debug("Session report persisted", "session", report.ID, "entries", len(r.db.Reports))
	return nil
}

// List returns up to limit reports, newest first (limit <= 0 returns all)
func (r *SecureJournalRepository) List(ctx context.Context, limit int) ([]*model.SessionReport, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	n := len(r.db.Reports)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*model.SessionReport, 0, n)
	for i := len(r.db.Reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.db.Reports[i].Clone())
	}
	return out, nil
}

// Load reads and decrypts the journal file
func (r *SecureJournalRepository) Load() (*model.JournalDatabase, error) {
	fileData, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return nil, model.ErrJournalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var encFile EncryptedJournalFile
	if err := json.Unmarshal(fileData, &encFile); err != nil {
		return nil, model.ErrJournalCorrupted
	}

	if sha256.Sum256(encFile.Data) != encFile.Checksum {
		return nil, model.ErrInvalidChecksum
	}

	decrypted, err := r.crypto.Decrypt(encFile.Data, encFile.Nonce, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrJournalCorrupted, err)
	}

	var db model.JournalDatabase
	if err := json.Unmarshal(decrypted, &db); err != nil {
		return nil, model.ErrJournalCorrupted
	}

	r.logger.Info("Journal loaded", "path", r.filePath, "entries", len(db.Reports))
	return &db, nil
}

// save replaces the journal file atomically through a temp file
func (r *SecureJournalRepository) save(db *model.JournalDatabase) error {
	jsonData, err := json.Marshal(db)
	if err != nil {
		return err
	}

	encrypted, nonce, err := r.crypto.Encrypt(jsonData, r.key)
	if err != nil {
		return err
	}

	fileJSON, err := json.Marshal(EncryptedJournalFile{
		Version:  journalFileVersion,
		Nonce:    nonce,
		Data:     encrypted,
		Checksum: sha256.Sum256(encrypted),
	})
	if err != nil {
		return err
	}

	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, fileJSON, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath)
}

// Exists reports whether the journal file is on disk
func (r *SecureJournalRepository) Exists() bool {
	_, err := os.Stat(r.filePath)
	return !os.IsNotExist(err)
}

var _ outbound.JournalRepository = (*SecureJournalRepository)(nil)

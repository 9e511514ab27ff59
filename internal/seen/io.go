package seen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/sportstx/internal/models"
)

// Read loads a history file. Both a bare JSON array of transactions and a
// saved search result ({"transactions": [...]}) are accepted.
func Read(path string) ([]models.Transaction, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Transaction{}, nil
	}

	var txs []models.Transaction
	if data[0] == '{' {
		var result models.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		txs = result.Transactions
	} else if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if txs == nil {
		return []models.Transaction{}, nil
	}
	return txs, nil
}

// ReadAllowMissing treats a missing file as empty history.
func ReadAllowMissing(path string) ([]models.Transaction, error) {
	txs, err := Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Transaction{}, nil
		}
		return nil, err
	}
	return txs, nil
}

// Write stores transactions as pretty JSON, replacing the file atomically.
func Write(path string, txs []models.Transaction) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".seen-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

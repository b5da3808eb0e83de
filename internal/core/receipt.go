package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	receiptFileName       = "cep.receipt.json"
	currentReceiptVersion = 1
)

// Receipt records what an install run put into a target's config directory.
// Uninstall consults it to remove exactly what the bundle introduced and
// nothing the user added or changed since.
type Receipt struct {
	ReceiptVersion int            `json:"receiptVersion"`
	RunID          string         `json:"runId"`
	Bundle         string         `json:"bundle"`
	Version        string         `json:"version,omitempty"`
	InstalledAt    time.Time      `json:"installedAt"`
	PermissionMode string         `json:"permissionMode"`
	Commands       []string       `json:"commands,omitempty"` // paths relative to the config dir
	Agents         []string       `json:"agents,omitempty"`
	Skills         []string       `json:"skills,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"` // the merged-in fragment
}

// ReceiptPath returns the full path to the receipt file in the given
// config directory.
func ReceiptPath(configDir string) string {
	return filepath.Join(configDir, receiptFileName)
}

// ReadReceipt reads and parses the receipt from the given config directory.
// Returns nil, nil if the file does not exist.
func ReadReceipt(configDir string) (*Receipt, error) {
	data, err := os.ReadFile(ReceiptPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading receipt: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}
	return &r, nil
}

// WriteReceipt writes the receipt atomically. File lists are sorted for
// deterministic output.
func WriteReceipt(configDir string, r *Receipt) error {
	sort.Strings(r.Commands)
	sort.Strings(r.Agents)
	sort.Strings(r.Skills)
	if r.ReceiptVersion == 0 {
		r.ReceiptVersion = currentReceiptVersion
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(ReceiptPath(configDir), data)
}

// RemoveReceipt deletes the receipt file. No-op if it does not exist.
func RemoveReceipt(configDir string) error {
	err := os.Remove(ReceiptPath(configDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing receipt: %w", err)
	}
	return nil
}

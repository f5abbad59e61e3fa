// Package storage keeps each ledger account in its own file.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/codec"
)

// DefaultExt is the file extension used when none is configured.
const DefaultExt = ".json"

// ErrInvalidName is returned for account names that cannot be used as a file name.
var ErrInvalidName = errors.New("invalid account name")

// Dir stores every account as <name><ext> inside one directory.
type Dir struct {
	path string
	ext  string
}

// NewDir returns a Dir rooted at path. The directory is created on the first write.
func NewDir(path, ext string) *Dir {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Dir{path: path, ext: ext}
}

// Path returns the storage directory.
func (d *Dir) Path() string { return d.path }

// File returns the path of the file holding account.
func (d *Dir) File(account string) string {
	return filepath.Join(d.path, account+d.ext)
}

// List returns the names of all stored accounts, sorted. A missing directory
// holds no accounts.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading storage dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), d.ext)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Read decodes the stored transactions of account.
func (d *Dir) Read(account string) ([]bank.Transaction, error) {
	if err := checkName(account); err != nil {
		return nil, err
	}
	f, err := os.Open(d.File(account))
	if err != nil {
		return nil, fmt.Errorf("opening account %q: %w", account, err)
	}
	defer f.Close()

	txs, err := codec.DecodeAccount(f)
	if err != nil {
		return nil, fmt.Errorf("decoding account %q: %w", account, err)
	}
	return txs, nil
}

// Write replaces the file of account with txs. The content is written to a
// temporary file first and renamed over the old one.
func (d *Dir) Write(account string, txs []bank.Transaction) error {
	if err := checkName(account); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codec.EncodeAccount(&buf, txs); err != nil {
		return fmt.Errorf("encoding account %q: %w", account, err)
	}

	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("creating storage dir: %w", err)
	}

	path := d.File(account)
	tmp := path + ".tmp"
	if err := writeFile(tmp, buf.Bytes()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing account %q: %w", account, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing account %q: %w", account, err)
	}
	return nil
}

// Remove deletes the file of account. A missing file is not an error.
func (d *Dir) Remove(account string) error {
	if err := checkName(account); err != nil {
		return err
	}
	if err := os.Remove(d.File(account)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing account %q: %w", account, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkName(account string) error {
	switch {
	case strings.TrimSpace(account) == "", account == ".", account == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, account)
	case strings.ContainsAny(account, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, account)
	}
	return nil
}

// Nop keeps nothing. A ledger using it lives in memory only.
type Nop struct{}

func (Nop) List() ([]string, error) { return nil, nil }

func (Nop) Read(string) ([]bank.Transaction, error) { return nil, nil }

func (Nop) Write(string, []bank.Transaction) error { return nil }

func (Nop) Remove(string) error { return nil }

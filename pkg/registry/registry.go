// pkg/registry/registry.go - the persisted registry of installed packages.
//
// The registry is a single JSON file mapping the absolute path of the
// original package file to its metadata record. The file is re-read on
// every operation and rewritten whole on every mutation; the registry is
// bounded by the number of installed desktop applications, so
// simplicity wins over performance here. Concurrent invocations are not
// coordinated: two racing processes interleave read-modify-write cycles
// and the last writer wins.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/linuxadmins/appman/pkg/appname"
	"github.com/linuxadmins/appman/pkg/logging"
)

// Record is one tracked installed package. SourcePath is the primary
// key: the absolute path of the original file the user opened.
// ManagedExecPath is the copy inside managed storage that is actually
// launched.
type Record struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Description     string   `json:"description"`
	IconReference   string   `json:"icon_reference"`
	DesktopFilePath string   `json:"desktop_file_path"`
	SourcePath      string   `json:"source_path"`
	ManagedExecPath string   `json:"managed_exec_path"`
	Categories      []string `json:"categories"`
	MimeTypes       []string `json:"mime_types"`
	Checksum        string   `json:"checksum,omitempty"`
	InstalledAt     string   `json:"installed_at"`
}

// Registry provides access to the registry file.
type Registry struct {
	path string
}

// New returns a Registry backed by the given file path.
func New(path string) *Registry {
	return &Registry{path: path}
}

// load reads the whole registry file. Raw messages keep one corrupt
// entry from poisoning the rest. Any read or parse failure yields an
// empty registry.
func (r *Registry) load() map[string]json.RawMessage {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Failed to read registry, starting empty", "path", r.path, "error", err)
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn("Registry file is malformed, starting empty", "path", r.path, "error", err)
		return make(map[string]json.RawMessage)
	}
	return entries
}

// save rewrites the whole registry file, pretty-printed so the file
// stays human-diffable.
func (r *Registry) save(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("writing registry file: %w", err)
	}
	return nil
}

// decode parses a single registry entry. Corrupt entries are treated as
// absent, not fatal.
func decode(raw json.RawMessage) *Record {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	return &rec
}

// IsRegistered reports whether the given package path is a registry key.
func (r *Registry) IsRegistered(path string) bool {
	abs := absPath(path)
	_, ok := r.load()[abs]
	return ok
}

// Get returns the record for a package path, or nil when absent or
// unreadable.
func (r *Registry) Get(path string) *Record {
	abs := absPath(path)
	raw, ok := r.load()[abs]
	if !ok {
		return nil
	}
	return decode(raw)
}

// Register upserts a record keyed by its SourcePath and stamps
// InstalledAt with the current time. A failed write means the record is
// not durably registered; the caller's copy is not rolled back.
func (r *Registry) Register(rec *Record) error {
	rec.SourcePath = absPath(rec.SourcePath)
	rec.InstalledAt = time.Now().Format(time.RFC3339)

	entries := r.load()
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializing record: %w", err)
	}
	entries[rec.SourcePath] = raw

	if err := r.save(entries); err != nil {
		return err
	}
	logging.Info("Registered package", "name", rec.Name, "version", rec.Version, "path", rec.SourcePath)
	return nil
}

// Unregister removes the entry for a package path. Removing an absent
// key is not an error.
func (r *Registry) Unregister(path string) error {
	abs := absPath(path)
	entries := r.load()
	if _, ok := entries[abs]; !ok {
		return nil
	}
	delete(entries, abs)
	if err := r.save(entries); err != nil {
		return err
	}
	logging.Info("Unregistered package", "path", abs)
	return nil
}

// FindInstalledVersion scans the registry for an entry tracking the
// same logical application as the candidate, matched by normalized
// name. The first match in map-iteration order wins when several
// entries match.
func (r *Registry) FindInstalledVersion(candidate *Record) *Record {
	for _, raw := range r.load() {
		rec := decode(raw)
		if rec == nil {
			continue
		}
		if appname.Same(rec.Name, candidate.Name) {
			return rec
		}
	}
	return nil
}

// List returns all readable records sorted by name, for the management
// view.
func (r *Registry) List() []*Record {
	var records []*Record
	for _, raw := range r.load() {
		if rec := decode(raw); rec != nil {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

package chromemdb

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const metadataFile = "00000000"

// Collection directory states reported by Inspect.
const (
	StateHealthy = "healthy"
	StateCorrupt = "corrupt"
	StateEmpty   = "empty"

	// Report statuses. StatusDegraded marks a report with at least one
	// corrupt live collection.
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// CollectionDir describes one collection directory on disk.
type CollectionDir struct {
	Dir       string `json:"dir"`
	Name      string `json:"name,omitempty"`
	Documents int    `json:"documents"`
	State     string `json:"state"`
}

// StoreReport summarizes a persistent store. Status is "degraded" when any
// live collection directory is missing its metadata file.
type StoreReport struct {
	Path        string          `json:"path"`
	Status      string          `json:"status"`
	Collections []CollectionDir `json:"collections"`
	Quarantined []CollectionDir `json:"quarantined"`
}

// persistedCollection mirrors the metadata record chromem-go writes.
type persistedCollection struct {
	Name     string
	Metadata map[string]string
}

// CollectionDirName returns the directory chromem-go stores collection name in.
func CollectionDirName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:4])
}

func persistentLocation(params ClientParams) (location, error) {
	loc, err := parseLocation(params.URL)
	if err != nil {
		return location{}, err
	}
	if loc.InMemory() {
		return location{}, ErrNotPersistent
	}
	return loc, nil
}

func (l location) ext() string {
	if l.Compress {
		return ".gob.gz"
	}
	return ".gob"
}

// Inspect scans the store directory without opening it.
func Inspect(params ClientParams) (*StoreReport, error) {
	loc, err := persistentLocation(params)
	if err != nil {
		return nil, err
	}

	report := &StoreReport{
		Path:        loc.Path,
		Status:      StatusHealthy,
		Collections: []CollectionDir{},
		Quarantined: []CollectionDir{},
	}

	report.Collections, err = scanDirs(loc, loc.Path)
	if err != nil {
		return nil, err
	}
	for _, c := range report.Collections {
		if c.State == StateCorrupt {
			report.Status = StatusDegraded
		}
	}

	quarantined, err := scanDirs(loc, filepath.Join(loc.Path, quarantineDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if quarantined != nil {
		report.Quarantined = quarantined
	}
	return report, nil
}

func scanDirs(loc location, root string) ([]CollectionDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	dirs := []CollectionDir{}
	for _, entry := range entries {
		if !entry.IsDir() || !collectionDirPattern.MatchString(entry.Name()) {
			continue
		}
		dirs = append(dirs, inspectDir(loc, filepath.Join(root, entry.Name())))
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Dir < dirs[j].Dir })
	return dirs, nil
}

func inspectDir(loc location, path string) CollectionDir {
	cd := CollectionDir{Dir: filepath.Base(path), State: StateEmpty}

	files, _ := os.ReadDir(path)
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), loc.ext()) && f.Name() != metadataFile+loc.ext() {
			cd.Documents++
		}
	}

	pc, err := readMetadata(filepath.Join(path, metadataFile+loc.ext()), loc.Compress)
	switch {
	case err == nil:
		cd.Name = pc.Name
		cd.State = StateHealthy
	case cd.Documents > 0:
		cd.State = StateCorrupt
	}
	return cd
}

func readMetadata(path string, compressed bool) (*persistedCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	var pc persistedCollection
	if err := gob.NewDecoder(r).Decode(&pc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &pc, nil
}

func writeMetadata(path string, compressed bool, pc persistedCollection) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var gz *gzip.Writer
	if compressed {
		gz = gzip.NewWriter(f)
		w = gz
	}
	if err := gob.NewEncoder(w).Encode(pc); err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	return f.Sync()
}

// RecoverMetadata writes a fresh metadata file for collection when its
// directory holds documents but lost the file. A quarantined directory is
// repaired in place so it can be restored afterwards. It returns the repaired
// directory path, or "" when the metadata file already existed.
func RecoverMetadata(params ClientParams, collection string) (string, error) {
	if collection == "" {
		return "", ErrEmptyCollectionName
	}
	loc, err := persistentLocation(params)
	if err != nil {
		return "", err
	}

	dir := CollectionDirName(collection)
	candidates := []string{
		filepath.Join(loc.Path, dir),
		filepath.Join(loc.Path, quarantineDir, dir),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		metaPath := filepath.Join(path, metadataFile+loc.ext())
		if _, err := os.Stat(metaPath); err == nil {
			return "", nil
		}
		pc := persistedCollection{Name: collection, Metadata: map[string]string{}}
		if err := writeMetadata(metaPath, loc.Compress, pc); err != nil {
			return "", fmt.Errorf("writing metadata for %s: %w", collection, err)
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: %s (dir %s)", ErrCollectionNotFound, collection, dir)
}

// RestoreQuarantined moves a quarantined collection directory back into the
// store. The directory needs a metadata file again, see RecoverMetadata.
func RestoreQuarantined(params ClientParams, dir string) error {
	if !collectionDirPattern.MatchString(dir) {
		return fmt.Errorf("%w: %q", ErrInvalidCollectionDir, dir)
	}
	loc, err := persistentLocation(params)
	if err != nil {
		return err
	}

	src := filepath.Join(loc.Path, quarantineDir, dir)
	dst := filepath.Join(loc.Path, dir)

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("quarantined collection %s: %w", dir, err)
	}
	if _, err := os.Stat(filepath.Join(src, metadataFile+loc.ext())); err != nil {
		return fmt.Errorf("quarantined collection %s has no metadata file; recover it first", dir)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("collection directory %s already exists", dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("restoring %s: %w", dir, err)
	}
	return nil
}

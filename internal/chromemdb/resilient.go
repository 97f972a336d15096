package chromemdb

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// quarantineDir holds collection directories that could not be loaded.
const quarantineDir = ".quarantine"

// chromem names collection directories by a hex hash prefix of the collection name.
var collectionDirPattern = regexp.MustCompile(`^[a-f0-9]{8}$`)

// openPersistentDB opens a chromem DB rooted at loc.Path. A collection
// directory holding documents but no metadata file makes chromem refuse the
// whole database; such directories are moved to .quarantine and the open is
// retried once so the remaining collections stay reachable.
func openPersistentDB(loc location, logger *zap.Logger) (*chromem.DB, error) {
	db, err := chromem.NewPersistentDB(loc.Path, loc.Compress)
	if err == nil {
		return db, nil
	}

	if !strings.Contains(err.Error(), "collection metadata file not found") {
		return nil, err
	}

	corrupt, findErr := findCorruptCollections(loc, logger)
	if findErr != nil {
		logger.Error("failed to scan for corrupt collections", zap.Error(findErr))
		return nil, err
	}
	if len(corrupt) == 0 {
		return nil, err
	}

	quarantinePath := filepath.Join(loc.Path, quarantineDir)
	if mkErr := os.MkdirAll(quarantinePath, 0o700); mkErr != nil {
		return nil, fmt.Errorf("creating quarantine directory: %w", mkErr)
	}

	for _, dir := range corrupt {
		src := filepath.Join(loc.Path, dir)
		dst := filepath.Join(quarantinePath, dir)

		logger.Warn("quarantining corrupt collection",
			zap.String("collection_dir", dir),
			zap.String("to", dst),
		)

		if mvErr := os.Rename(src, dst); mvErr != nil {
			logger.Error("failed to quarantine collection",
				zap.String("collection_dir", dir),
				zap.Error(mvErr),
			)
			continue
		}
		QuarantinedCollections.Inc()
	}

	db, err = chromem.NewPersistentDB(loc.Path, loc.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening database after quarantine: %w", err)
	}

	logger.Info("opened database after quarantine",
		zap.Int("quarantined", len(corrupt)),
	)
	return db, nil
}

// findCorruptCollections lists collection directories with documents but no metadata file.
func findCorruptCollections(loc location, logger *zap.Logger) ([]string, error) {
	entries, err := os.ReadDir(loc.Path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	ext := loc.ext()

	var corrupt []string
	for _, entry := range entries {
		if !entry.IsDir() || !collectionDirPattern.MatchString(entry.Name()) {
			continue
		}

		dir := filepath.Join(loc.Path, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, metadataFile+ext)); !os.IsNotExist(err) {
			continue
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("failed to read collection directory",
				zap.String("collection_dir", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		for _, f := range files {
			if !f.IsDir() && strings.HasSuffix(f.Name(), ext) {
				corrupt = append(corrupt, entry.Name())
				break
			}
		}
	}

	return corrupt, nil
}

package chromemdb

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ClientParams are the constructor parameters for a Client.
type ClientParams struct {
	// URL selects the backing store.
	//
	//	""                      in-memory database
	//	memory://               in-memory database
	//	file:///var/lib/vectors persistent database rooted at /var/lib/vectors
	//	file://./data           persistent database rooted at ./data
	//	/var/lib/vectors        bare paths are treated like file URLs
	//
	// A compress=true query parameter enables gzip for persisted files.
	URL string
}

// location is the resolved form of ClientParams.URL.
type location struct {
	// Path is empty for in-memory databases.
	Path     string
	Compress bool
}

// InMemory reports whether the location has no persistence directory.
func (l location) InMemory() bool {
	return l.Path == ""
}

// String renders the location for logs.
func (l location) String() string {
	if l.InMemory() {
		return "memory"
	}
	return l.Path
}

// parseLocation resolves a client URL into a storage location.
func parseLocation(raw string) (location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return location{}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return location{}, fmt.Errorf("parsing url: %w", err)
	}

	var loc location
	if v := u.Query().Get("compress"); v != "" {
		loc.Compress, err = strconv.ParseBool(v)
		if err != nil {
			return location{}, fmt.Errorf("parsing compress parameter %q: %w", v, err)
		}
	}

	switch u.Scheme {
	case "memory":
		return location{}, nil
	case "file":
		loc.Path = u.Host + u.Path
	case "":
		loc.Path = u.Path
	default:
		return location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if loc.Path == "" {
		return location{}, fmt.Errorf("%w: file url without a path", ErrInvalidURL)
	}

	loc.Path, err = expandPath(loc.Path)
	if err != nil {
		return location{}, fmt.Errorf("expanding path: %w", err)
	}
	return loc, nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return filepath.Clean(path), nil
}

package chromemdb

import (
	"context"
	"fmt"
	"os"
)

// Health reports whether the client can serve requests. Persistent clients
// also need their database directory to still exist.
func (c *Client) Health(_ context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.loc.InMemory() {
		return nil
	}

	info, err := os.Stat(c.loc.Path)
	if err != nil {
		return fmt.Errorf("database directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("database path %s is not a directory", c.loc.Path)
	}
	return nil
}

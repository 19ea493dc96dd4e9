// ABOUTME: Export snapshots stored in Charm KV for off-machine backups.
// ABOUTME: Each push writes a timestamped key and repoints snapshot:latest.
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/habits/internal/storage"
)

const (
	SnapshotPrefix = "snapshot:"
	LatestKey      = SnapshotPrefix + "latest"
)

// ErrNoSnapshot is returned when no snapshot has been pushed.
var ErrNoSnapshot = errors.New("no snapshot found")

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Key       string
	CreatedAt time.Time
	Size      int
}

// SnapshotKey returns the KV key for a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + t.UTC().Format(time.RFC3339)
}

// PushSnapshot stores an export under its timestamp and as the latest snapshot.
func (c *Client) PushSnapshot(data *storage.ExportData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("push snapshot: nil export")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := SnapshotKey(data.ExportedAt)
	if err := c.setAll(map[string][]byte{key: raw, LatestKey: raw}); err != nil {
		return "", fmt.Errorf("push snapshot: %w", err)
	}
	return key, nil
}

// LatestSnapshot returns the most recently pushed export.
func (c *Client) LatestSnapshot() (*storage.ExportData, error) {
	return c.GetSnapshot(LatestKey)
}

// GetSnapshot returns the export stored under key.
func (c *Client) GetSnapshot(key string) (*storage.ExportData, error) {
	if !strings.HasPrefix(key, SnapshotPrefix) {
		key = SnapshotPrefix + key
	}
	raw, err := c.get(key)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, key)
	}
	data, err := storage.DecodeExport(raw)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return data, nil
}

// ListSnapshots returns timestamped snapshots, newest first.
func (c *Client) ListSnapshots() ([]SnapshotInfo, error) {
	keys, err := c.keysWithPrefix(SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(keys))
	for _, key := range keys {
		if key == LatestKey {
			continue
		}
		created, err := time.Parse(time.RFC3339, strings.TrimPrefix(key, SnapshotPrefix))
		if err != nil {
			continue // Skip foreign keys
		}
		raw, err := c.get(key)
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", key, err)
		}
		infos = append(infos, SnapshotInfo{Key: key, CreatedAt: created, Size: len(raw)})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// PruneSnapshots deletes all but the newest keep snapshots and returns how
// many were removed.
func (c *Client) PruneSnapshots(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	infos, err := c.ListSnapshots()
	if err != nil {
		return 0, err
	}
	if len(infos) <= keep {
		return 0, nil
	}

	removed := 0
	for _, info := range infos[keep:] {
		if err := c.delete(info.Key); err != nil {
			return removed, fmt.Errorf("delete snapshot %s: %w", info.Key, err)
		}
		removed++
	}
	return removed, nil
}

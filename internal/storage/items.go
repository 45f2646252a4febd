package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwebster45206/turn-engine/pkg/item"
)

// Item operations (filesystem-backed)

func (r *RedisStorage) GetItemSpec(ctx context.Context, itemID string) (*item.Spec, error) {
	path := filepath.Join(r.dataDir, "items", itemID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item file: %w", err)
	}

	var spec item.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item spec: %w", err)
	}

	spec.ID = itemID
	if spec.Kind == "" {
		spec.Kind = item.KindWeapon
	}

	return &spec, nil
}

func (r *RedisStorage) ListItems(ctx context.Context) ([]string, error) {
	itemsPath := filepath.Join(r.dataDir, "items")

	entries, err := os.ReadDir(itemsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read items directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, entry.Name()[:len(entry.Name())-5])
		}
	}

	return ids, nil
}

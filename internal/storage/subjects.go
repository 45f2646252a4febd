package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwebster45206/turn-engine/pkg/actor"
)

// Subject operations (filesystem-backed, returns SubjectSpec only)

func (r *RedisStorage) GetSubjectSpec(ctx context.Context, subjectID string) (*actor.SubjectSpec, error) {
	path := filepath.Join(r.dataDir, "subjects", subjectID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject file: %w", err)
	}

	var spec actor.SubjectSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subject spec: %w", err)
	}

	// Ensure ID is set from the parameter
	spec.ID = subjectID

	return &spec, nil
}

func (r *RedisStorage) ListSubjects(ctx context.Context) ([]string, error) {
	subjectsPath := filepath.Join(r.dataDir, "subjects")

	entries, err := os.ReadDir(subjectsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read subjects directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, entry.Name()[:len(entry.Name())-5])
		}
	}

	return ids, nil
}

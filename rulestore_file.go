package growbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileRuleStore persists rules and labels as JSON files under a data
// directory.
type FileRuleStore struct {
	dataDir string
}

// NewFileRuleStore creates a file-based rule store rooted at dataDir,
// defaulting to ~/.growbox when empty.
func NewFileRuleStore(dataDir string) (*FileRuleStore, error) {
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".growbox")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &FileRuleStore{dataDir: dataDir}, nil
}

func (s *FileRuleStore) SaveRules(_ context.Context, rules []string) error {
	return s.writeFile("rules.json", rules)
}

func (s *FileRuleStore) LoadRules(_ context.Context, count int) ([]string, error) {
	rules, err := s.readFile("rules.json")
	if err != nil {
		return nil, err
	}
	return padRules(rules, count), nil
}

func (s *FileRuleStore) SaveLabels(_ context.Context, labels []string) error {
	return s.writeFile("labels.json", labels)
}

func (s *FileRuleStore) LoadLabels(_ context.Context, count int) ([]string, error) {
	labels, err := s.readFile("labels.json")
	if err != nil {
		return nil, err
	}
	return padLabels(labels, count), nil
}

func (s *FileRuleStore) writeFile(name string, values []string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *FileRuleStore) readFile(name string) ([]string, error) {
	path := filepath.Join(s.dataDir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil // nothing persisted yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return values, nil
}

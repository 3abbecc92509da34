package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadStructuredFile decodes a JSON or YAML file into out, picking the codec
// from the file extension.
func LoadStructuredFile(filePath string, out any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
		}
	default:
		return fmt.Errorf("unsupported file type: %s", filePath)
	}
	return nil
}

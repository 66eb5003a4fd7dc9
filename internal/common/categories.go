package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

type CategoriesConfig struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories reads the challenge category allow-list. An empty path or a
// missing file yields nil, which admits any category.
func LoadCategories(categoriesFile string) ([]string, error) {
	if categoriesFile == "" {
		return nil, nil
	}

	var categoriesPath string
	if filepath.IsAbs(categoriesFile) {
		categoriesPath = categoriesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		categoriesPath = filepath.Join(wd, categoriesFile)
	}

	data, err := os.ReadFile(categoriesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read %s: %w", categoriesFile, err)
	}

	var config CategoriesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", categoriesFile, err)
	}

	for i, name := range config.Categories {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("category at index %d is empty", i)
		}
	}

	return config.Categories, nil
}

package source

import (
	"path/filepath"
	"strings"
)

type textLoader struct{}

func (textLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

func (textLoader) Load(path string, _ Options) (string, error) {
	return readText(path)
}

type tsvLoader struct{}

func (tsvLoader) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tsv")
}

// Load rewrites tabs as commas since the ingestor only splits on commas.
func (tsvLoader) Load(path string, _ Options) (string, error) {
	raw, err := readText(path)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(raw, "\t", ","), nil
}

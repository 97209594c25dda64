package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileVar names an explicit dotenv file. When set, it is the only file
// read and it must exist.
const EnvFileVar = "LLMCHAT_ENV_FILE"

// FindProjectRoot walks up from dir to the nearest directory holding go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// EnvFiles lists the dotenv candidates in load order: the working
// directory's .env, then the project root's when that is a different file.
func EnvFiles() ([]string, error) {
	if explicit := os.Getenv(EnvFileVar); explicit != "" {
		return []string{explicit}, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	files := []string{filepath.Join(wd, ".env")}
	if root, err := FindProjectRoot(wd); err == nil && root != wd {
		files = append(files, filepath.Join(root, ".env"))
	}
	return files, nil
}

// LoadEnv loads every candidate that exists and returns the paths it read.
// Variables already set in the environment win. A missing implicit .env is
// fine; a missing LLMCHAT_ENV_FILE is not.
func LoadEnv() ([]string, error) {
	files, err := EnvFiles()
	if err != nil {
		return nil, err
	}
	explicit := os.Getenv(EnvFileVar) != ""

	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return loaded, fmt.Errorf("env file %s: %w", f, err)
		}
		if err := godotenv.Load(f); err != nil {
			return loaded, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}

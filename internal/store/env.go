package store

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env from dir without overriding the environment, then lets
// .env.local override both. Missing files are ignored.
func LoadDotEnv(dir string) error {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := godotenv.Overload(filepath.Join(dir, ".env.local")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

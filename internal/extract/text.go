package extract

import (
	"fmt"
	"os"
)

func fromText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return normalizeNewlines(string(data)), nil
}

package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata dir %s: %w", dir, err)
	}
	return nil
}

func marshalSidecar(artifact *Artifact) ([]byte, error) {
	return yaml.Marshal(artifact)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sidecar %s: %w", path, err)
	}
	return nil
}

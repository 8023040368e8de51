package manifestreaderservice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"golang.org/x/net/context"
)

const manifestFileName = "package.json"

type ManifestReaderService interface {
	ReadManifest(lockfilePath string, ctx context.Context) (analyzermodels.ManifestDeclaration, error)
}

type ManifestReader struct{}

func NewManifestReader() *ManifestReader {
	return &ManifestReader{}
}

// ReadManifest reads the package.json sitting next to the lockfile.
func (r *ManifestReader) ReadManifest(lockfilePath string, ctx context.Context) (analyzermodels.ManifestDeclaration, error) {
	path := filepath.Join(filepath.Dir(lockfilePath), manifestFileName)

	content, err := os.ReadFile(path)
	if err != nil {
		return analyzermodels.ManifestDeclaration{}, fmt.Errorf("error reading manifest %s error: %w", path, err)
	}

	var manifest analyzermodels.ManifestDeclaration
	if err := json.Unmarshal(content, &manifest); err != nil {
		return analyzermodels.ManifestDeclaration{}, fmt.Errorf("error unmarshalling manifest %s error: %w", path, err)
	}

	return manifest, nil
}

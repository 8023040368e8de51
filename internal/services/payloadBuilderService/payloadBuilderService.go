package payloadbuilderservice

import (
	"errors"
	"fmt"

	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"github.com/RobsonDevCode/lockaudit/internal/clients/models"
	yarnmodels "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/models/yarn"
)

var ErrPayloadSchema = errors.New("audit request is missing required fields")

type PayloadBuilderService interface {
	BuildPayload(request yarnmodels.AuditRequest, manifest analyzermodels.ManifestDeclaration,
		skipDevDependencies bool) (models.AuditPayload, analyzermodels.DependencyVersionIndex, error)
}

type PayloadBuilder struct{}

func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{}
}

// BuildPayload merges the recovered audit request with the manifest into the
// shape the advisory service accepts and records the module to resolved
// version index used later to map advisories back onto the lockfile. Pure
// transformation, same inputs always produce the same payload.
func (b *PayloadBuilder) BuildPayload(request yarnmodels.AuditRequest, manifest analyzermodels.ManifestDeclaration,
	skipDevDependencies bool) (models.AuditPayload, analyzermodels.DependencyVersionIndex, error) {

	if request.Dependencies == nil {
		return models.AuditPayload{}, nil, fmt.Errorf("%w: dependencies object is missing", ErrPayloadSchema)
	}

	requires := make(map[string]string, len(manifest.Dependencies))
	for name, versionRange := range manifest.Dependencies {
		requires[name] = versionRange
	}
	if !skipDevDependencies {
		for name, versionRange := range manifest.DevDependencies {
			requires[name] = versionRange
		}
	}
	// anything the manifest doesn't declare keeps the range yarn recorded
	for name, versionRange := range request.Requires {
		if _, ok := requires[name]; !ok {
			requires[name] = versionRange
		}
	}

	index := make(analyzermodels.DependencyVersionIndex, len(request.Dependencies))
	dependencies := make(map[string]yarnmodels.AuditDependency, len(request.Dependencies))
	for name, dependency := range request.Dependencies {
		if skipDevDependencies && dependency.Dev {
			continue
		}
		index[name] = dependency.Version
		dependencies[name] = dependency
	}

	name := manifest.Name
	if name == "" {
		name = request.Name
	}
	version := manifest.Version
	if version == "" {
		version = request.Version
	}

	metadata := request.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	payload := models.AuditPayload{
		Name:                    name,
		Version:                 version,
		Install:                 []string{},
		Remove:                  []string{},
		Metadata:                metadata,
		Requires:                requires,
		Dependencies:            dependencies,
		DevDependenciesExcluded: skipDevDependencies,
	}

	return payload, index, nil
}

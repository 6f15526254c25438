// Package compose validates workload descriptors and executes them against
// the compose-compatible container runtime.
package compose

import (
	"context"
	"fmt"
	"sort"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"
)

const specFilename = "compose.yaml"

// Issue is one validation defect in a workload descriptor. Issues are
// surfaced to the operator before submission; they are not hard errors.
type Issue struct {
	Service string
	Problem string
}

func (i Issue) String() string {
	return fmt.Sprintf("service %q: %s", i.Service, i.Problem)
}

// Validate parses a compose descriptor and reports every service missing
// an image reference or a port mapping. The returned error is non-nil only
// when the descriptor cannot be parsed at all; a parseable descriptor with
// defects yields issues and a nil error.
//
// Completeness matters here: all offending services are reported, not just
// the first, so the operator fixes the descriptor in one pass.
func Validate(ctx context.Context, data []byte) ([]Issue, error) {
	project, err := load(ctx, data)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []Issue
	for _, name := range names {
		svc := project.Services[name]
		if svc.Image == "" {
			issues = append(issues, Issue{Service: name, Problem: "missing image reference"})
		}
		if len(svc.Ports) == 0 {
			issues = append(issues, Issue{Service: name, Problem: "missing port mapping"})
		}
	}
	return issues, nil
}

func load(ctx context.Context, data []byte) (*compose.Project, error) {
	details := compose.ConfigDetails{
		ConfigFiles: []compose.ConfigFile{
			{Filename: specFilename, Content: data},
		},
	}

	project, err := loader.LoadWithContext(ctx, details, func(o *loader.Options) {
		o.SetProjectName("voidnet", true)
		o.SkipConsistencyCheck = true
	})
	if err != nil {
		return nil, fmt.Errorf("parse compose descriptor: %w", err)
	}
	if len(project.Services) == 0 {
		return nil, fmt.Errorf("compose descriptor has no services")
	}
	return project, nil
}

package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/hfmrz/blurbench/inspect"
)

type stubTree struct{}

func (stubTree) FindApplication(ctx context.Context, name string) (inspect.Node, error) {
	return nil, nil
}

func executableTarget(t *testing.T) string {
	t.Helper()
	app := filepath.Join(t.TempDir(), "viewer")
	require.NoError(t, os.WriteFile(app, []byte("#!/bin/sh\n"), 0o755))
	return app
}

func TestRunWithExecutableTarget(t *testing.T) {
	checks, status := Run(executableTarget(t), nil)

	require.NotEmpty(t, checks)
	assert.Equal(t, "target binary", checks[0].Name)
	assert.True(t, checks[0].OK)
	assert.NotEqual(t, Fatal, status)
}

func TestRunMissingTargetIsFatal(t *testing.T) {
	checks, status := Run(filepath.Join(t.TempDir(), "absent"), nil)

	assert.Equal(t, Fatal, status)
	assert.False(t, checks[0].OK)
	assert.NotEmpty(t, checks[0].Detail)
}

func TestRunNonExecutableTargetIsFatal(t *testing.T) {
	app := filepath.Join(t.TempDir(), "viewer")
	require.NoError(t, os.WriteFile(app, []byte("data"), 0o644))

	_, status := Run(app, nil)
	assert.Equal(t, Fatal, status)
}

func TestRunReportsAllCollaborators(t *testing.T) {
	checks, _ := Run(executableTarget(t), nil)

	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"target binary", "memory backend", "image generator", "ui automation"}, names)
}

func TestRunUIAutomationIsOptional(t *testing.T) {
	app := executableTarget(t)

	checks, withoutUI := Run(app, nil)
	last := checks[len(checks)-1]
	assert.Equal(t, "ui automation", last.Name)
	assert.False(t, last.OK)

	checks, withUI := Run(app, stubTree{})
	last = checks[len(checks)-1]
	assert.True(t, last.OK)

	// a missing UI collaborator never changes the gate
	assert.Equal(t, withoutUI, withUI)
}

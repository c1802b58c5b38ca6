// Package testutil runs whole patches through the application for system
// tests and provides the helpers those tests share.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/circles/internal/app"
	"github.com/specialistvlad/circles/internal/hcl"
	"github.com/specialistvlad/circles/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of a patch test run.
type HarnessResult struct {
	LogOutput string
	Report    *app.Report
	Err       error
}

// RunPatchTest provides a standardized harness for one-shot patch runs using
// a default background context.
func RunPatchTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunPatchTestWithContext(context.Background(), t, files, cfg, modules...)
}

// RunPatchTestWithContext writes files below a temporary patch directory,
// runs the app once with a JSON report and decodes the report. Files are
// given by relative path, e.g. "voices/lead.hcl". When cfg.PatchPath is set
// it is resolved inside the patch directory; otherwise the directory itself
// is loaded. If modules is empty the app's core modules are used.
func RunPatchTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	patchDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(patchDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.PatchPath = filepath.Join(patchDir, cfg.PatchPath)
	cfg.LogLevel = "debug"
	cfg.Dump = app.DumpJSON
	cfg.Port = 0
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &app.SafeBuffer{}, &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, logs, appConfig, hcl.NewLoader(), modules...)
	}()

	result := &HarnessResult{}
	if panicErr != nil {
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
	} else if err := testApp.Run(ctx); err != nil {
		result.Err = err
	} else {
		result.Report = &app.Report{}
		require.NoError(t, json.Unmarshal([]byte(out.String()), result.Report), "report is not valid JSON")
	}

	result.LogOutput = logs.String()
	if os.Getenv("CIRCLES_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}

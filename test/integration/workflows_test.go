//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passtools/passtools-go/pkg/passtools"
)

// TestPassWorkflow_ReadUpdatePushDownload exercises an existing pass end to end.
func TestPassWorkflow_ReadUpdatePushDownload(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.PassID == 0 {
		t.Skip("PASSTOOLS_PASS_ID not set, skipping pass workflow")
	}

	client := config.NewClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. Read the pass
	pass, err := client.Passes().BuildFromCurrent(ctx, config.PassID)
	require.NoError(t, err)
	require.True(t, pass.Valid(), "pass payload: %v", pass.RawData())
	assert.Equal(t, config.PassID, pass.ID())

	// 2. Save it unchanged
	result, err := client.Passes().Save(ctx, pass)
	require.NoError(t, err)
	assert.True(t, result.OK(), "save result: %+v", result)

	// 3. Push it
	result, err = client.Passes().Push(ctx, config.PassID)
	require.NoError(t, err)
	assert.True(t, result.OK(), "push result: %+v", result)

	// 4. Download it
	path, err := client.Passes().Download(ctx, config.PassID)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// TestPassWorkflow_CreateAndDelete creates a pass from a template and removes it.
func TestPassWorkflow_CreateAndDelete(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.TemplateID == 0 {
		t.Skip("PASSTOOLS_TEMPLATE_ID not set, skipping create workflow")
	}

	client := config.NewClient(t)
	ctx := context.Background()

	result, err := client.Passes().Create(ctx, config.TemplateID, map[string]interface{}{})
	require.NoError(t, err)
	require.True(t, result.OK(), "create result: %+v", result)

	passes, err := client.Passes().List(ctx)
	require.NoError(t, err)
	assert.False(t, passes.IsError(), "list payload: %v", passes)
}

// TestPassWorkflow_Errors checks how failures surface against a live server.
func TestPassWorkflow_Errors(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := config.NewClient(t)
	ctx := context.Background()

	raw, err := client.Passes().Show(ctx, 1<<40)
	require.NoError(t, err)
	assert.True(t, raw.IsError())

	client.Settings().Configure(passtools.Options{APIKey: passtools.String("")})

	_, err = client.Passes().List(ctx)
	assert.True(t, passtools.IsConfigurationError(err))
}

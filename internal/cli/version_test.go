package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "contractgen ")
	assert.Contains(t, out, runtime.Version())

	out, err = executeCommand(t, "version", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp.Data.Version)
	assert.Equal(t, runtime.Version(), resp.Data.Go)
}

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportRequiresType(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"export"})
	defer rootCmd.SetArgs(nil)

	err := Execute()
	require.ErrorContains(t, err, `required flag(s) "type" not set`)
}

func TestExportFailsWithoutMinIO(t *testing.T) {
	t.Setenv("ENGINE_BACKEND", "memory")
	t.Setenv("MINIO_ENDPOINT", "")
	rootCmd.SetArgs([]string{"export", "--type", "widgets"})
	defer rootCmd.SetArgs(nil)

	err := Execute()
	require.ErrorContains(t, err, "MINIO_ENDPOINT")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("ENGINE_BACKEND", "cassandra")
	rootCmd.SetArgs([]string{"serve"})
	defer rootCmd.SetArgs(nil)

	err := Execute()
	require.ErrorContains(t, err, "unknown ENGINE_BACKEND")
}

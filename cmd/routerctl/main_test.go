package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	out, err := execute(t, "", "score", "--tier", "Premium", "--credit", "820", "--active", "--spend", "9000")
	require.NoError(t, err)

	var result struct {
		Score     int    `json:"score"`
		Bucket    string `json:"bucket"`
		Breakdown struct {
			Tier int `json:"tier"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 20, result.Breakdown.Tier)
	assert.GreaterOrEqual(t, result.Score, 20)
	assert.NotEmpty(t, result.Bucket)

	_, err = execute(t, "", "score", "--opened", "yesterday")
	assert.Error(t, err)
}

func TestRosterCheck(t *testing.T) {
	out, err := execute(t, "", "roster", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "EMP004")
	assert.Contains(t, out, "4 agents OK")

	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  - id: A1\n    role: NOPE\n    domains: []\n"), 0o600))
	_, err = execute(t, "", "roster", "check", path)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "s3cret\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

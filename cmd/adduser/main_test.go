package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"tour-booking/internal/models"
	"tour-booking/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_success.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-email", "Test@Example.com", "-name", "Test User", "-password", "secret", "-db", dbPath}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "User test@example.com created successfully")
	assert.Contains(t, output, "role user")
	assert.Contains(t, output, "(1 users total)")
}

func TestRun_AdminRole(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_admin.db")
	stdout := new(bytes.Buffer)

	args := []string{"-email", "root@example.com", "-name", "Root", "-password", "secret", "-role", "admin", "-db", dbPath}
	require.NoError(t, run(context.Background(), args, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "role admin")

	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	u, err := db.GetUserByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestRun_UnknownRoleFallsBackToUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_clamp.db")
	stdout := new(bytes.Buffer)

	args := []string{"-email", "x@example.com", "-name", "X", "-password", "secret", "-role", "superuser", "-db", dbPath}
	require.NoError(t, run(context.Background(), args, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "role user")
}

func TestRun_DuplicateUser(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-email", "dup@example.com", "-name", "Dup", "-password", "secret", "-db", dbPath}

	// First run
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	// Second run
	stdout.Reset()
	stderr.Reset()
	err = run(context.Background(), args, stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-password", "secret"}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for missing email flag")
	assert.Contains(t, err.Error(), "missing required flags")

	// Usage should be printed
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_interactive.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	// Simulate user typing "interactive_secret" followed by newline
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-email", "interactive@example.com", "-name", "Interactive", "-db", dbPath}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Password: ")
	assert.Contains(t, output, "User interactive@example.com created successfully")
}

func TestRun_InteractivePassword_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_empty.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	// Simulate user typing newline (empty password)
	stdin := bytes.NewBufferString("\n")

	args := []string{"-email", "empty@example.com", "-name", "Empty", "-db", dbPath}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for empty password")
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_SetRole(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_set_role.db")
	ctx := context.Background()

	create := []string{"-email", "promote@example.com", "-name", "Promote", "-password", "secret", "-db", dbPath}
	require.NoError(t, run(ctx, create, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	stdout := new(bytes.Buffer)
	promote := []string{"-set-role", "-email", "PROMOTE@example.com", "-role", "admin", "-db", dbPath}
	require.NoError(t, run(ctx, promote, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "User promote@example.com now has role admin")

	err := run(ctx, []string{"-set-role", "-email", "promote@example.com", "-role", "root", "-db", dbPath},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	assert.ErrorContains(t, err, "invalid role")

	err = run(ctx, []string{"-set-role", "-email", "ghost@example.com", "-role", "admin", "-db", dbPath},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	assert.ErrorContains(t, err, "does not exist")
}

func TestRun_EnvVarOverride(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_env.db")

	t.Setenv("DB_PATH", dbPath)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	// Do not pass -db flag, let it use env var
	args := []string{"-email", "env@example.com", "-name", "Env", "-password", "secret"}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.NoError(t, err)

	// Verify DB file was created at dbPath
	assert.FileExists(t, dbPath)
}

func TestRun_InvalidDBPath(t *testing.T) {
	// Use a directory path as DB file path, which should fail
	tmpDir := t.TempDir()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-email", "fail@example.com", "-name", "Fail", "-password", "secret", "-db", tmpDir}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for invalid db path")
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_InvalidDriver(t *testing.T) {
	args := []string{"-email", "d@example.com", "-name", "D", "-password", "secret", "-driver", "oracle"}
	err := run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestRun_InvalidFlag(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-invalid"}
	err := run(context.Background(), args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for invalid flag")
	assert.Contains(t, err.Error(), "flag provided but not defined")
}

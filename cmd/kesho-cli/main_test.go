package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesho/internal/core"
	"kesho/internal/services"
)

const naivasSMS = "QAB12CD3EF Confirmed. Ksh2,500.00 sent to NAIVAS SUPERMARKET on 05/01/24 at 3:45 PM. New M-PESA balance is Ksh10,200.00."

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "kesho.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("KEYWORDS_FILE", "")
	t.Setenv("SEED_STATE_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, a.close())
	return out.String(), err
}

func TestParseDoesNotRecord(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "parse", naivasSMS)
	require.NoError(t, err)
	assert.Contains(t, out, "KSh 2,500")
	assert.Contains(t, out, "NAIVAS SUPERMARKET")
	assert.Contains(t, out, "2024-01-05")
	assert.Contains(t, out, "Food & Groceries")

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "spent KSh 0")
}

func TestParseNoMatch(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "parse", "hello there")
	assert.ErrorIs(t, err, services.ErrNoNotificationMatch)
}

func TestImportPersistsAcrossRuns(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "income", "100,000")
	require.NoError(t, err)

	out, err := run(t, "import", naivasSMS)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded transaction")

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "income KSh 100,000")
	assert.Contains(t, out, "spent KSh 2,500")
}

func TestAddAndCategories(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "categories", "add", "Gym", "wants")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Gym to wants")

	out, err = run(t, "add", "Gym", "1500", "--date", "2024-05-02", "--note", "monthly pass")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded KSh 1,500 in Gym on 2024-05-02")

	out, err = run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Gym")

	_, err = run(t, "add", "Nowhere", "10")
	assert.Error(t, err)

	_, err = run(t, "add", "Gym", "-5")
	assert.Error(t, err)

	out, err = run(t, "categories", "remove", "Gym")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Gym and 1 transactions")
}

func TestSummaryJSON(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "summary", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"categories"`)
	assert.Contains(t, out, `"onboarded": false`)
}

func TestBackendFlagRejectsUnknown(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "--backend", "sheets", "summary")
	assert.Error(t, err)
}

func TestParseWarnsAboutMissingCategory(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "categories", "remove", "Food & Groceries")
	require.NoError(t, err)

	out, err := run(t, "parse", naivasSMS)
	require.NoError(t, err)
	assert.Contains(t, out, `Category "Food & Groceries" does not exist; import will fail until it is added.`)

	_, err = run(t, "import", naivasSMS)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)

	out, err = run(t, "categories")
	require.NoError(t, err)
	assert.NotContains(t, out, "Food & Groceries", "import must not create the category")
}

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/version"
)

func parseFilters(t *testing.T, args ...string) (models.Query, error) {
	t.Helper()

	var flags filterFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse(args))

	return flags.apply(fs, models.Query{Group: models.GroupModel, Range: models.Range7Days, UserID: 3})
}

func TestFilterFlags_Unset(t *testing.T) {
	q, err := parseFilters(t)
	require.NoError(t, err)
	assert.Equal(t, models.Query{Group: models.GroupModel, Range: models.Range7Days, UserID: 3}, q)
}

func TestFilterFlags_Override(t *testing.T) {
	q, err := parseFilters(t, "--range", "30d", "--group", "channel", "--user", "0")
	require.NoError(t, err)
	assert.Equal(t, models.Query{Group: models.GroupChannel, Range: models.Range30Days, UserID: 0}, q)
}

func TestFilterFlags_Invalid(t *testing.T) {
	_, err := parseFilters(t, "--range", "fortnight")
	assert.Error(t, err)

	_, err = parseFilters(t, "--group", "vendor")
	assert.Error(t, err)

	_, err = parseFilters(t, "--user", "-1")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, version.Info()+"\n", buf.String())
}

func TestRootCmd_Flags(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"range", "group", "user"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}

	report, _, err := root.Find([]string{"report"})
	require.NoError(t, err)
	assert.Equal(t, "report", report.Name())
	assert.NotNil(t, report.Flags().Lookup("plain"))
}

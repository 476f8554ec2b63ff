package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

const testReport = "C123456\tAndrews\n" +
	"Round: 2\tDec. 31, 2024\n" +
	"Traditional Segment Analysis\tCAPSTONE® COURIER\tPage 5\n" +
	"Traditional Statistics\n" +
	"Total Industry Unit Demand\t7,387\n" +
	"Traditional Customer Buying Criteria\n" +
	"\tExpectations\tImportance\n" +
	"1. Age\tIdeal Age = 2.0\t47%\n" +
	"2. Price\t$20.00 - 30.00\t23%\n" +
	"3. Ideal Position\tPfmn 5.9 Size 14.1\t21%\n" +
	"4. Reliability\tMTBF 14000-19000\t9%\n" +
	"Perceptual Map for Traditional Segment\n" +
	"Top Products in Traditional Segment\n" +
	"Name\tMarket Share\tUnits Sold to Seg\tRevision Date\tStock Out\tPfmn Coord\tSize Coord\tList Price\tMTBF\tAge Dec.31\tPromo Budget\tCust. Aware-ness\tSales Budget\tCust. Access-ibility\tDec. Cust Survey\n" +
	"Able\t18%\t1,328\t11/4/2022\t\t6.4\t13.6\t$28.00\t17500\t2.29\t$1,400\t78%\t$1,400\t64%\t40\n"

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"extract", "history", "predict", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "capsim-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestExtractCommand_Flags(t *testing.T) {
	input := extractCmd.Flags().Lookup("input")
	require.NotNil(t, input)
	assert.Equal(t, "-", input.DefValue)

	for _, name := range []string{"round", "format", "output", "diagnostics", "accumulate", "strategy", "workers", "aliases", "sheet"} {
		assert.NotNil(t, extractCmd.Flags().Lookup(name), "extract should have --%s flag", name)
	}
}

func TestHistoryCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range historyCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "export", "clear"} {
		assert.True(t, names[name], "history should have subcommand %q", name)
	}

	limit := historyListCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "50", limit.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestPredictCommand_Flags(t *testing.T) {
	for _, name := range []string{"prev", "curr", "records", "history"} {
		assert.NotNil(t, predictCmd.Flags().Lookup(name), "predict should have --%s flag", name)
	}
}

func TestExtractAndHistory_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CAPSIM_LOG_LEVEL", "error")
	t.Setenv("CAPSIM_STORE_DATABASE_URL", filepath.Join(dir, "history.db"))

	input := filepath.Join(dir, "round2.txt")
	require.NoError(t, os.WriteFile(input, []byte(testReport), 0o644))
	out := filepath.Join(dir, "out.csv")
	diags := filepath.Join(dir, "diags.csv")

	_, stderr, err := executeCommand(t, "extract",
		"--input", input,
		"--output", out,
		"--diagnostics", diags,
		"--accumulate",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "MissingPage: 4")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.Columns(), rows[0])
	assert.Equal(t, []string{"Traditional", "2", "7387", "Able"}, rows[1][:4])

	data, err := os.ReadFile(diags)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "\n"))

	stdout, _, err := executeCommand(t, "history", "export", "--format", "json")
	require.NoError(t, err)
	var res model.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Able", res.Records[0].Name)
	assert.Equal(t, "5.9", res.Records[0].IdealPerformance)
}

func TestPredictCommand_FromFlags(t *testing.T) {
	t.Setenv("CAPSIM_LOG_LEVEL", "error")

	stdout, _, err := executeCommand(t, "predict", "--prev", "5,15", "--curr", "5.5,14.5")
	require.NoError(t, err)
	assert.Equal(t, "performance=6.00 size=14.00\n", stdout)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestRoundString(t *testing.T) {
	assert.Equal(t, "-", roundString(nil))
	assert.Equal(t, "4", roundString(model.IntPtr(4)))
}

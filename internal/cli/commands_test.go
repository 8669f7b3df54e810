package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/testutil"
)

// workspace is a temp directory with annotation exports and a YAML
// configuration whose paths all point inside it.
type workspace struct {
	dir    string
	config string
	cfg    *config.Config
}

func newWorkspace(t *testing.T, files, perFile int) *workspace {
	t.Helper()
	dir := t.TempDir()
	if files > 0 {
		testutil.AnnotationDir(t, dir, files, perFile)
	}

	cfg := config.Default()
	cfg.InputDir = filepath.Join(dir, cfg.InputDir)
	cfg.MergedPath = filepath.Join(dir, cfg.MergedPath)
	cfg.TempDir = filepath.Join(dir, cfg.TempDir)
	cfg.OutputPath = filepath.Join(dir, cfg.OutputPath)

	data, err := config.Marshal(cfg)
	require.NoError(t, err)
	path := testutil.WriteFile(t, dir, "hitprep.yaml", string(data))

	return &workspace{dir: dir, config: path, cfg: cfg}
}

// execute runs the root command and returns stdout, stderr and the error.
func execute(opts *RootOptions, args ...string) (string, string, error) {
	cmd := NewRootCommandWithOptions(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func testOptions() *RootOptions {
	return &RootOptions{
		Shuffler: testutil.IdentityShuffler{},
		RunIDs:   testutil.NewFixedRunIDGenerator("run-cli"),
	}
}

func TestRunCommand_Text(t *testing.T) {
	ws := newWorkspace(t, 3, 30)

	stdout, stderr, err := execute(testOptions(), "run", "--config", ws.config)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Merged 3 file(s), 90 rows")
	assert.Contains(t, stdout, "Sampled 90 rows (cap 12 per combination)")
	assert.Contains(t, stdout, "Wrote 18 of 18 HITs")
	assert.Contains(t, stderr, "run_id=run-cli")
	assert.NotContains(t, stderr, "level=DEBUG")

	out, err := csvio.ReadFile(ws.cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 18, out.Len())
	assert.Equal(t, 15, out.Width())
	assert.FileExists(t, ws.cfg.StatisticsPath())
}

func TestRunCommand_JSONVerbose(t *testing.T) {
	ws := newWorkspace(t, 3, 30)

	stdout, stderr, err := execute(testOptions(), "run", "--config", ws.config, "--format", "json", "-v")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		RunID  string `json:"run_id"`
		Data   struct {
			RunID    string `json:"run_id"`
			Produced int    `json:"produced"`
			Cap      int    `json:"cap"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-cli", resp.Data.RunID)
	assert.Equal(t, "run-cli", resp.RunID)
	assert.Equal(t, 18, resp.Data.Produced)
	assert.Equal(t, 12, resp.Data.Cap)
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestRunCommand_EmptyInputDir(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	require.NoError(t, os.MkdirAll(ws.cfg.InputDir, 0755))

	stdout, _, err := execute(testOptions(), "run", "--config", ws.config)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E102]: There are no files that need to be consolidated.")
}

func TestRunCommand_MissingConfig(t *testing.T) {
	stdout, _, err := execute(testOptions(), "run", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E104]")
}

func TestMergeCommand(t *testing.T) {
	ws := newWorkspace(t, 2, 10)
	testutil.WriteFile(t, ws.cfg.InputDir, "late.csv", "tweet_id,text,notes\n100,late,x\n")
	out := filepath.Join(ws.dir, "merged.csv")

	stdout, stderr, err := execute(testOptions(), "merge", ws.cfg.InputDir, "-o", out, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data MergeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 21, resp.Data.Rows)
	assert.Len(t, resp.Data.Files, 3)
	assert.Equal(t, []string{"user_id", "disease", "talk_about", "notes"}, resp.Data.InconsistentColumns)
	assert.Contains(t, stderr, "inconsistent columns")

	merged, err := csvio.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 21, merged.Len())
	assert.Equal(t, "", merged.Value(20, "disease"))
}

func TestMergeCommand_DefaultsFromConfig(t *testing.T) {
	ws := newWorkspace(t, 1, 5)

	stdout, _, err := execute(testOptions(), "merge", "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Merged 1 file(s), 5 rows")
	assert.FileExists(t, ws.cfg.MergedPath)
}

func TestReportCommand(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", testutil.AnnotationCSV(90, 0))

	stdout, _, err := execute(testOptions(), "report", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "disease,talk_about,amount of tweets", lines[0])
	assert.Equal(t, "Asthma,celeb,10 / 30", lines[1])
}

func TestReportCommand_Output(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", testutil.AnnotationCSV(9, 0))
	out := filepath.Join(ws.dir, "stats", "statistic_analysis.csv")

	stdout, _, err := execute(testOptions(), "report", path, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Frequency report (9 rows)")
	assert.FileExists(t, out)
}

func TestReportCommand_MissingColumn(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", "tweet_id,text\n1,a\n")

	stdout, _, err := execute(testOptions(), "report", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMissingColumn, resp.Error.Code)
	assert.Equal(t, "The 'disease' does not exist", resp.Error.Message)
}

func TestBatchCommand_Overrides(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", testutil.AnnotationCSV(90, 0))
	out := filepath.Join(ws.dir, "hits.csv")
	snaps := filepath.Join(ws.dir, "snapshots")

	stdout, _, err := execute(testOptions(), "batch", path, "-o", out,
		"--width", "3", "--count", "4", "--snapshots", snaps)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 4 of 4 HITs")

	hits, err := csvio.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, hits.Len())
	assert.Equal(t, 9, hits.Width())
	assert.Equal(t, "tweet_text_3", hits.Columns()[8])

	assert.FileExists(t, filepath.Join(snaps, "sub_csv_temp.csv"))
	assert.FileExists(t, filepath.Join(snaps, "Shuffle rows data.csv"))
}

func TestBatchCommand_Shortfall(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", testutil.AnnotationCSV(9, 0))

	stdout, stderr, err := execute(testOptions(), "batch", path, "-o", filepath.Join(ws.dir, "hits.csv"), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	// 9 records, 5 per HIT
	assert.Equal(t, 1, resp.Data.Produced)
	assert.True(t, resp.Data.Shortfall)
	assert.Contains(t, stderr, "batch shortfall")
}

func TestBatchCommand_InvalidCount(t *testing.T) {
	ws := newWorkspace(t, 0, 0)
	path := testutil.WriteFile(t, ws.dir, "merged.csv", testutil.AnnotationCSV(9, 0))
	out := filepath.Join(ws.dir, "hits.csv")

	stdout, _, err := execute(testOptions(), "batch", path, "-o", out, "--count", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E103]: The number of hits can not be '0'")
	assert.NoFileExists(t, out)
}

func TestBatchCommand_MissingTable(t *testing.T) {
	stdout, _, err := execute(testOptions(), "batch", filepath.Join(t.TempDir(), "All annotations.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E104]")
	assert.Contains(t, stdout, "does not exist!")
}

func TestValidateCommand(t *testing.T) {
	stdout, _, err := execute(testOptions(), "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration valid (defaults)")

	stdout, _, err = execute(testOptions(), "validate", "--print")
	require.NoError(t, err)
	assert.Contains(t, stdout, "input_dir: Annotations Data")
	assert.Contains(t, stdout, "row_width: 5")
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "bad.yaml", "batch:\n  count: 0\n")

	stdout, _, err := execute(testOptions(), "validate", "--config", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidBatchCount, resp.Error.Code)
}

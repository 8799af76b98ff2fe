package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string   `json:"name"`
	Pass      bool     `json:"pass"`
	TraceHash string   `json:"trace_hash,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// scenarioSource is a scenario and the file it came from. File is empty
// for built-in scenarios.
type scenarioSource struct {
	scenario *harness.Scenario
	file     string
	loadErr  error
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run conformance harness",
		Long: `Run conformance scenarios against a fresh engine with a deterministic
clock and sequential IDs.

Without a directory the built-in scenarios run, checked by their expect
clauses and assertions. With a directory, every .yaml/.yml file in it is
a scenario, and its trace is also compared against golden/<name>.golden
when that file exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sentropy test
  sentropy test ./scenarios
  sentropy test ./scenarios --filter "alignment_*"
  sentropy test ./scenarios --update
  sentropy test --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runTests(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid filter pattern: %v", err))
		}
	}

	var sources []scenarioSource
	if scenariosDir == "" {
		if opts.Update {
			return NewExitError(ExitCommandError, "--update requires a scenarios directory")
		}
		builtin, err := harness.Builtin()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load built-in scenarios", err)
		}
		for _, s := range builtin {
			if matchesFilter(opts.Filter, s.Name) {
				sources = append(sources, scenarioSource{scenario: s})
			}
		}
	} else {
		if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
		}
		files, err := findScenarioFiles(scenariosDir, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		for _, file := range files {
			s, err := harness.LoadScenario(file)
			sources = append(sources, scenarioSource{scenario: s, file: file, loadErr: err})
		}
	}

	if len(sources) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	// Run scenarios
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(sources)),
		Total:     len(sources),
	}

	for _, src := range sources {
		scenResult := runScenario(src, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

func matchesFilter(filter, name string) bool {
	if filter == "" {
		return true
	}
	matched, err := filepath.Match(filter, name)
	return err == nil && matched
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ext)
		if !matchesFilter(filter, name) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(src scenarioSource, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}
	pass := func(name, note string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✓ %s%s\n", name, note)
		}
		return ScenarioResult{Name: name, Pass: true}
	}

	if src.loadErr != nil {
		return fail(filepath.Base(src.file), fmt.Sprintf("failed to load scenario: %v", src.loadErr))
	}
	scenario := src.scenario

	var runOpts []harness.Option
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		runOpts = append(runOpts, harness.WithLogger(logger))
	}
	result, err := harness.Run(cmd.Context(), scenario, runOpts...)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}
	res := func(r ScenarioResult) ScenarioResult {
		r.TraceHash, _ = harness.Fingerprint(scenario.Name, result)
		return r
	}

	if src.file == "" {
		if !result.Pass {
			return res(fail(scenario.Name, result.Errors...))
		}
		return res(pass(scenario.Name, ""))
	}

	goldenPath := goldenFilePath(src.file, scenario.Name)

	// Handle golden file comparison
	if opts.Update {
		if err := updateGoldenFile(scenario, result, goldenPath); err != nil {
			return res(fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err)))
		}
		return res(pass(scenario.Name, " (golden updated)"))
	}

	if _, err := os.Stat(goldenPath); err == nil {
		match, err := compareWithGolden(scenario, result, goldenPath)
		if err != nil {
			return res(fail(scenario.Name, fmt.Sprintf("golden comparison failed: %v", err)))
		}
		if !match {
			return res(fail(scenario.Name, "trace does not match golden file (run with --update to regenerate)"))
		}
	}

	if !result.Pass {
		return res(fail(scenario.Name, result.Errors...))
	}
	return res(pass(scenario.Name, ""))
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// updateGoldenFile writes the current trace as the golden file.
func updateGoldenFile(scenario *harness.Scenario, result *harness.Result, goldenPath string) error {
	// Ensure golden directory exists
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the result trace against the golden file.
func compareWithGolden(scenario *harness.Scenario, result *harness.Result, goldenPath string) (bool, error) {
	goldenData, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	currentData, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal current trace: %w", err)
	}

	return bytes.Equal(goldenData, currentData), nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

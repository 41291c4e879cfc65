package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const fluTable = "../../internal/lers/testdata/flu.d"

// execute runs the CLI in-process with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestInduce_CertainToStdout(t *testing.T) {
	out, err := execute(t, "induce", "-i", fluTable, "--ruleset", "1")
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	want := `(Temperature, high) & (Headache, yes) -> (Flu, yes)
(Temperature, high) & (Nausea, no) -> (Flu, yes)
(Temperature, very_high) -> (Flu, yes)
(Temperature, normal) -> (Flu, no)
(Headache, no) -> (Flu, no)
`
	if out != want {
		t.Errorf("rules:\n%s\nwant:\n%s", out, want)
	}
}

func TestInduce_BothToFilesWithHistory(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "out", "flu.txt")
	db := filepath.Join(dir, "history.db")

	out, err := execute(t, "induce", "-i", fluTable, "-o", rules, "--ruleset", "both", "--workers", "2", "--db", db)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	for _, name := range []string{"flu.certain.txt", "flu.possible.txt"} {
		data, err := os.ReadFile(filepath.Join(dir, "out", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), "-> (Flu, ") {
			t.Errorf("%s has no rules:\n%s", name, data)
		}
	}
	if !strings.Contains(out, "Possible rules: 6 written to") {
		t.Errorf("unexpected summary:\n%s", out)
	}

	list, err := execute(t, "history", "--db", db, "--format", "markdown")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(list, "| possible") || !strings.Contains(list, "| certain") {
		t.Errorf("history should list both runs:\n%s", list)
	}

	show, err := execute(t, "history", "show", "1", "--db", db)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(show, "certain rules for") || !strings.Contains(show, "(Headache, no) -> (Flu, no)") {
		t.Errorf("unexpected history show:\n%s", show)
	}
}

func TestInduce_ConfigFileAndReport(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "run.yaml")
	abs, err := filepath.Abs(fluTable)
	if err != nil {
		t.Fatal(err)
	}
	content := "input: " + abs + "\nruleset: possible\nreport: markdown\n"
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "induce", "--config", cfg)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	if !strings.Contains(out, "| # ") || !strings.Contains(out, "6 rules") {
		t.Errorf("expected markdown rules table:\n%s", out)
	}
}

func TestInduce_Errors(t *testing.T) {
	if _, err := execute(t, "induce"); err == nil {
		t.Error("missing input should fail")
	}
	if _, err := execute(t, "induce", "-i", fluTable, "--ruleset", "3"); err == nil {
		t.Error("invalid rule set should fail")
	}
	if _, err := execute(t, "induce", "-i", "../../internal/lers/testdata/broken.d"); err == nil {
		t.Error("broken table should fail")
	}
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "-i", fluTable)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Cases:      8", "characteristic", "very_high", "Approximations"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in inspect output:\n%s", want, out)
		}
	}
}

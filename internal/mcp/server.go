// Package mcp exposes rule induction as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"mlem2/internal/approx"
	"mlem2/internal/concept"
	"mlem2/internal/config"
	"mlem2/internal/engine"
	"mlem2/internal/lers"
	"mlem2/internal/logging"
	"mlem2/internal/store"
	"mlem2/internal/table"
)

// Server wraps the MCP SDK server. Store is optional; without it induced
// rule sets are not recorded and the history tools report an error.
type Server struct {
	MCPServer   *sdkmcp.Server
	ProjectRoot string
	Store       store.Store
}

// NewServer creates an MCP server with the induction tools. Relative dataset
// paths resolve against the current working directory.
func NewServer(st store.Store) *Server {
	cwd, _ := os.Getwd()
	s := &Server{ProjectRoot: cwd, Store: st}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "mlem2", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "induce_rules",
		Description: "Induce certain and/or possible MLEM2 rules from a LERS-format decision table.",
	}, s.handleInduceRules)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "describe_table",
		Description: "Describe a LERS-format decision table: attribute types, concepts and lower/upper approximations.",
	}, s.handleDescribeTable)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List previously induced rule sets, newest first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Get the rules of a previously induced rule set.",
	}, s.handleGetRun)
}

// --- Tool input/output types ---

type datasetInput struct {
	Dataset string `json:"dataset,omitempty" jsonschema:"LERS table text (< a a d > [ names ] values...)"`
	Path    string `json:"path,omitempty" jsonschema:"path to a LERS file; used when dataset is empty"`
}

type describeTableInput struct {
	Dataset string `json:"dataset,omitempty" jsonschema:"LERS table text (< a a d > [ names ] values...)"`
	Path    string `json:"path,omitempty" jsonschema:"path to a LERS file; used when dataset is empty"`
	Concept string `json:"concept,omitempty" jsonschema:"only describe the concept with this decision value"`
}

type induceRulesInput struct {
	Dataset string `json:"dataset,omitempty" jsonschema:"LERS table text (< a a d > [ names ] values...)"`
	Path    string `json:"path,omitempty" jsonschema:"path to a LERS file; used when dataset is empty"`
	RuleSet string `json:"ruleset,omitempty" jsonschema:"certain, possible or both (default certain)"`
	Workers int    `json:"workers,omitempty" jsonschema:"concepts induced in parallel (default 1)"`
	Save    bool   `json:"save,omitempty" jsonschema:"record the rule set in the run history"`
}

type ruleOutput struct {
	Rule    string `json:"rule"`
	Covered []int  `json:"covered" jsonschema:"0-based indices of the cases the rule covers"`
}

type ruleSetOutput struct {
	RuleSet string       `json:"ruleset"`
	Rules   []ruleOutput `json:"rules"`
	RunID   int64        `json:"run_id,omitempty"`
}

type induceRulesOutput struct {
	Cases      int             `json:"cases"`
	Incomplete bool            `json:"incomplete"`
	RuleSets   []ruleSetOutput `json:"rulesets"`
}

type attributeOutput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type conceptOutput struct {
	Decision string `json:"decision"`
	Cases    []int  `json:"cases"`
	Lower    []int  `json:"lower"`
	Upper    []int  `json:"upper"`
}

type describeTableOutput struct {
	Cases      int               `json:"cases"`
	Decision   string            `json:"decision"`
	Incomplete bool              `json:"incomplete"`
	Strategy   string            `json:"strategy"`
	Attributes []attributeOutput `json:"attributes"`
	Concepts   []conceptOutput   `json:"concepts"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs (0 = all)"`
}

type runSummary struct {
	ID        int64  `json:"id"`
	Dataset   string `json:"dataset"`
	RuleSet   string `json:"ruleset"`
	Cases     int    `json:"cases"`
	CreatedAt string `json:"created_at"`
}

type listRunsOutput struct {
	Runs []runSummary `json:"runs"`
}

type getRunInput struct {
	ID int64 `json:"id" jsonschema:"run id from list_runs or induce_rules"`
}

type getRunOutput struct {
	Run       runSummary   `json:"run"`
	ElapsedMS int64        `json:"elapsed_ms"`
	Rules     []ruleOutput `json:"rules"`
}

// --- Tool handlers ---

func (s *Server) handleInduceRules(ctx context.Context, _ *sdkmcp.CallToolRequest, input induceRulesInput) (*sdkmcp.CallToolResult, induceRulesOutput, error) {
	logger := logging.New("mcp")
	cfg := config.Default()
	if input.RuleSet != "" {
		cfg.RuleSet = input.RuleSet
	}
	if input.Workers > 0 {
		cfg.Workers = input.Workers
	}
	runs, err := cfg.RunConfigs()
	if err != nil {
		return nil, induceRulesOutput{}, err
	}
	if input.Save && s.Store == nil {
		return nil, induceRulesOutput{}, errors.New("save requested but no history store is configured")
	}

	t, label, err := s.loadTable(datasetInput{Dataset: input.Dataset, Path: input.Path})
	if err != nil {
		return nil, induceRulesOutput{}, err
	}
	m := engine.Prepare(t)

	out := induceRulesOutput{Cases: t.Len(), Incomplete: t.Incomplete()}
	for _, rc := range runs {
		start := time.Now()
		res, err := m.Induce(ctx, rc)
		if err != nil {
			return nil, induceRulesOutput{}, fmt.Errorf("induce_rules: %w", err)
		}
		run := store.NewRun(label, string(rc.RuleSet), t.Len(), t.Incomplete(), res.Rules, time.Since(start))
		rs := ruleSetOutput{RuleSet: run.RuleSet, Rules: rulesOutput(run.Rules)}
		if input.Save {
			id, err := s.Store.SaveRun(run)
			if err != nil {
				return nil, induceRulesOutput{}, fmt.Errorf("save run: %w", err)
			}
			rs.RunID = id
		}
		out.RuleSets = append(out.RuleSets, rs)
	}
	logger.Info("induce_rules served", "dataset", label, "cases", t.Len(), "rulesets", len(out.RuleSets))
	return nil, out, nil
}

func (s *Server) handleDescribeTable(_ context.Context, _ *sdkmcp.CallToolRequest, input describeTableInput) (*sdkmcp.CallToolResult, describeTableOutput, error) {
	t, _, err := s.loadTable(datasetInput{Dataset: input.Dataset, Path: input.Path})
	if err != nil {
		return nil, describeTableOutput{}, err
	}
	m := engine.Prepare(t)
	out := describeTableOutput{
		Cases:      t.Len(),
		Decision:   t.DecisionName(),
		Incomplete: t.Incomplete(),
		Strategy:   m.Coverage.Strategy().String(),
	}
	for _, a := range t.Attributes() {
		out.Attributes = append(out.Attributes, attributeOutput{Name: a.Name, Type: a.Kind.String()})
	}
	concepts := m.Partition.Concepts()
	if input.Concept != "" {
		c, ok := m.Partition.Lookup(input.Concept)
		if !ok {
			return nil, describeTableOutput{}, fmt.Errorf("no concept with %s = %q", t.DecisionName(), input.Concept)
		}
		concepts = []concept.Concept{c}
	}
	lower, upper := m.Goals(approx.Lower), m.Goals(approx.Upper)
	for _, c := range concepts {
		lo, _ := lower.Get(c.Decision)
		up, _ := upper.Get(c.Decision)
		out.Concepts = append(out.Concepts, conceptOutput{
			Decision: c.Decision,
			Cases:    c.Cases.Members(),
			Lower:    lo.Members(),
			Upper:    up.Members(),
		})
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	if s.Store == nil {
		return nil, listRunsOutput{}, errors.New("no history store is configured")
	}
	runs, err := s.Store.ListRuns()
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	if input.Limit > 0 && len(runs) > input.Limit {
		runs = runs[:input.Limit]
	}
	out := listRunsOutput{Runs: make([]runSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, summarize(r))
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	if s.Store == nil {
		return nil, getRunOutput{}, errors.New("no history store is configured")
	}
	r, err := s.Store.GetRun(input.ID)
	if err != nil {
		return nil, getRunOutput{}, fmt.Errorf("get_run: %w", err)
	}
	if r == nil {
		return nil, getRunOutput{}, fmt.Errorf("run %d not found", input.ID)
	}
	return nil, getRunOutput{
		Run:       summarize(r),
		ElapsedMS: r.Elapsed.Milliseconds(),
		Rules:     rulesOutput(r.Rules),
	}, nil
}

// loadTable parses the inline dataset, or the file at path. It returns a
// label for the run history.
func (s *Server) loadTable(in datasetInput) (*table.Table, string, error) {
	if strings.TrimSpace(in.Dataset) != "" {
		t, err := lers.Parse(strings.NewReader(in.Dataset))
		return t, "(inline)", err
	}
	if in.Path == "" {
		return nil, "", errors.New("dataset or path is required")
	}
	path := in.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.ProjectRoot, path)
	}
	t, err := lers.ParseFile(path)
	return t, in.Path, err
}

func rulesOutput(rules []store.Rule) []ruleOutput {
	out := make([]ruleOutput, 0, len(rules))
	for _, r := range rules {
		covered := r.Covered
		if covered == nil {
			covered = []int{}
		}
		out = append(out, ruleOutput{Rule: r.Text, Covered: covered})
	}
	return out
}

func summarize(r *store.Run) runSummary {
	return runSummary{ID: r.ID, Dataset: r.Dataset, RuleSet: r.RuleSet, Cases: r.Cases, CreatedAt: r.CreatedAt}
}

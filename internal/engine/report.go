package engine

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline stages, in run order.
const (
	StageExpand    = "expand"
	StageLoad      = "load"
	StageReconcile = "reconcile"
	StagePersist   = "persist"
	StageSummarize = "summarize"
)

// StageReport records the outcome of one pipeline stage.
type StageReport struct {
	Stage  string `yaml:"stage"`
	Status string `yaml:"status"` // running, ok, failed
	Rows   int    `yaml:"rows"`
	Error  string `yaml:"error,omitempty"`
}

// RunReport records a full pipeline run: per-stage outcomes, per-table row
// counts, and skipped tables. A failed run names the failing stage and the
// row count it reached.
type RunReport struct {
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at,omitempty"`

	Stages      []StageReport `yaml:"stages"`
	FailedStage string        `yaml:"failed_stage,omitempty"`

	TablesProcessed  int            `yaml:"tables_processed"`
	SkippedTables    []string       `yaml:"skipped_tables,omitempty"`
	UnlabeledRecords int            `yaml:"unlabeled_records,omitempty"`
	TableRows        map[string]int `yaml:"table_rows,omitempty"`
}

// NewRunReport starts a new run report clocked at now.
func NewRunReport() *RunReport {
	return &RunReport{StartedAt: time.Now(), TableRows: make(map[string]int)}
}

func (r *RunReport) StartStage(stage string) {
	r.Stages = append(r.Stages, StageReport{Stage: stage, Status: "running"})
}

func (r *RunReport) FinishStage(stage string, rows int) {
	if s := r.stage(stage); s != nil {
		s.Status = "ok"
		s.Rows = rows
	}
}

// Fail marks the stage failed and returns the error annotated with the
// stage name, for the caller to propagate.
func (r *RunReport) Fail(stage string, err error) error {
	r.FailedStage = stage
	r.FinishedAt = time.Now()
	if s := r.stage(stage); s != nil {
		s.Status = "failed"
		s.Error = err.Error()
	}
	return fmt.Errorf("%s stage: %w", stage, err)
}

func (r *RunReport) Skip(table string) {
	r.SkippedTables = append(r.SkippedTables, table)
}

func (r *RunReport) TableDone(table string, rows int) {
	r.TablesProcessed++
	r.TableRows[table] = rows
}

func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

func (r *RunReport) stage(name string) *StageReport {
	for i := range r.Stages {
		if r.Stages[i].Stage == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// Summary renders a short human-readable account of the run.
func (r *RunReport) Summary() string {
	var b strings.Builder
	for _, s := range r.Stages {
		fmt.Fprintf(&b, "%-10s %-7s %d rows", s.Stage, s.Status, s.Rows)
		if s.Error != "" {
			fmt.Fprintf(&b, "  (%s)", s.Error)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "tables processed: %d", r.TablesProcessed)
	if len(r.SkippedTables) > 0 {
		fmt.Fprintf(&b, ", skipped: %s", strings.Join(r.SkippedTables, ", "))
	}
	if r.UnlabeledRecords > 0 {
		fmt.Fprintf(&b, ", unlabeled records: %d", r.UnlabeledRecords)
	}
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, ", duration: %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return b.String()
}

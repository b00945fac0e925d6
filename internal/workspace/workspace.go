package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/KaramelBytes/ibesdash/internal/parser"
)

const (
	reportsDir = "reports"
	cleanedDir = "cleaned"
)

// Workspace is a directory holding run history and the artifacts of each run.
type Workspace struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Runs        map[string]*Run `json:"runs"`
	Config      *Settings       `json:"config"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Not serialized: on-disk location of the workspace.json
	rootDir string `json:"-"`
}

// Settings override global configuration for runs in this workspace.
// Empty fields inherit from the global config.
type Settings struct {
	ZeroActual    string `json:"zero_actual,omitempty"`
	StableOutlier *bool  `json:"stable_outliers,omitempty"`
}

// New constructs an in-memory workspace. Call Save() to persist.
func New(name, description, rootDir string) *Workspace {
	return &Workspace{
		Name:        name,
		Description: description,
		Runs:        make(map[string]*Run),
		Config:      &Settings{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// Load reads workspace.json from dir.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	if w.Runs == nil {
		w.Runs = make(map[string]*Run)
	}
	if w.Config == nil {
		w.Config = &Settings{}
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the on-disk workspace directory path.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json using atomic write.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := os.MkdirAll(w.rootDir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	return writeAtomic(filepath.Join(w.rootDir, FileName), data)
}

// Record stores the report and cleaned table of res under the workspace and
// adds a run entry. The caller saves the workspace.
func (w *Workspace) Record(input string, res *analysis.Result, sampleRows int) (*Run, error) {
	if res == nil {
		return nil, errors.New("result is nil")
	}
	run := &Run{
		ID:             res.RunID,
		Input:          input,
		Name:           res.Name,
		RowsRaw:        res.Raw.Rows(),
		RowsFiltered:   res.Filtered.Rows(),
		ColumnsDropped: res.Dropped(),
		Anomalies:      len(res.Anomalies),
		OutlierPasses:  res.OutlierPasses,
		CreatedAt:      time.Now(),
	}
	stem := runStem(run)

	rdir := filepath.Join(w.rootDir, reportsDir)
	if err := os.MkdirAll(rdir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure reports dir: %w", err)
	}
	run.ReportPath = filepath.Join(rdir, stem+".md")
	if err := writeAtomic(run.ReportPath, []byte(res.Markdown(sampleRows))); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	cdir := filepath.Join(w.rootDir, cleanedDir)
	if err := os.MkdirAll(cdir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cleaned dir: %w", err)
	}
	run.CleanedPath = filepath.Join(cdir, stem+".csv")
	if err := parser.WriteCSVFile(run.CleanedPath, res.Augmented); err != nil {
		return nil, fmt.Errorf("write cleaned table: %w", err)
	}

	w.Runs[run.ID] = run
	w.UpdatedAt = time.Now()
	return run, nil
}

// SortedRuns returns runs oldest first.
func (w *Workspace) SortedRuns() []*Run {
	out := make([]*Run, 0, len(w.Runs))
	for _, r := range w.Runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// FindRun resolves a run by full ID or unique ID prefix.
func (w *Workspace) FindRun(id string) (*Run, error) {
	if r, ok := w.Runs[id]; ok {
		return r, nil
	}
	var match *Run
	for k, r := range w.Runs {
		if strings.HasPrefix(k, id) {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return match, nil
}

// Remove deletes a run entry and its artifacts.
func (w *Workspace) Remove(id string) error {
	r, err := w.FindRun(id)
	if err != nil {
		return err
	}
	for _, p := range []string{r.ReportPath, r.CleanedPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	delete(w.Runs, r.ID)
	w.UpdatedAt = time.Now()
	return nil
}

func runStem(r *Run) string {
	base := r.Name
	if base == "" {
		base = filepath.Base(r.Input)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, base)
	if base == "" {
		base = "run"
	}
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return base + "-" + id
}

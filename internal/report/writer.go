package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setsplit/app"
	"setsplit/internal"
	"setsplit/internal/errors"
	"setsplit/ports"
)

// Paths names the artifacts of one run
type Paths struct {
	Data   string
	Report string
	HTML   string // empty when no HTML report is wanted
}

// ArtifactPaths places the artifacts of run (1-based) in dir. With more than one
// run each name gets a _runK suffix before its extension.
func ArtifactPaths(dir, dataFile, reportFile string, html bool, run, runs int) Paths {
	name := func(file string) string {
		if runs > 1 {
			ext := filepath.Ext(file)
			file = fmt.Sprintf("%s_run%d%s", strings.TrimSuffix(file, ext), run, ext)
		}
		return filepath.Join(dir, file)
	}
	p := Paths{Data: name(dataFile), Report: name(reportFile)}
	if html {
		ext := filepath.Ext(reportFile)
		p.HTML = name(strings.TrimSuffix(reportFile, ext) + ".html")
	}
	return p
}

// Artifact is a rendered run waiting to be written
type Artifact struct {
	Outcome *app.Outcome
	Report  string
	Paths   Paths
}

// Writer persists run artifacts
type Writer struct {
	data   ports.DatasetWriter
	logger *internal.Logger
}

// NewWriter creates an artifact writer that writes datasets through data
func NewWriter(data ports.DatasetWriter, logger *internal.Logger) *Writer {
	return &Writer{data: data, logger: internal.OrDefault(logger).With("Report")}
}

// WriteAll writes every artifact. Callers render all runs first so that a
// failure in any run leaves nothing on disk.
func (w *Writer) WriteAll(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := w.Write(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the annotated dataset, the text report and optionally the HTML report
func (w *Writer) Write(ctx context.Context, a Artifact) error {
	if err := w.data.WriteDataset(ctx, a.Paths.Data, a.Outcome.Annotated); err != nil {
		return err
	}
	if err := writeFileAtomic(a.Paths.Report, []byte(a.Report)); err != nil {
		return errors.OutputError(fmt.Sprintf("failed to write report %s", a.Paths.Report), err)
	}
	w.logger.Info("Wrote report to %s", a.Paths.Report)
	if a.Paths.HTML != "" {
		title := "Set partition report"
		if m := a.Outcome.Manifest; m != nil {
			title = fmt.Sprintf("%s (run %d)", title, m.RunNumber)
		}
		if err := writeFileAtomic(a.Paths.HTML, ToHTML(a.Report, title)); err != nil {
			return errors.OutputError(fmt.Sprintf("failed to write report %s", a.Paths.HTML), err)
		}
		w.logger.Info("Wrote HTML report to %s", a.Paths.HTML)
	}
	return nil
}

// writeFileAtomic writes to a temporary sibling and renames it into place
func writeFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), ".partial-"+filepath.Base(path))
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

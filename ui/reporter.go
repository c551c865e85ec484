package ui

import (
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
)

// ProgramReporter forwards export progress to a running bubbletea program
type ProgramReporter struct {
	program *tea.Program
}

func NewProgramReporter(p *tea.Program) *ProgramReporter {
	return &ProgramReporter{program: p}
}

func (r *ProgramReporter) Start(total int) {
	r.program.Send(ExportStartedMsg{Total: total})
}

func (r *ProgramReporter) AssetDone(filename string, err error) {
	r.program.Send(AssetDoneMsg{Filename: filename, Err: err})
}

func (r *ProgramReporter) Finish(err error) {
	r.program.Send(ExportFinishedMsg{Err: err})
}

// BarReporter draws a plain progress bar, for terminals without the TUI
type BarReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func NewBarReporter(out io.Writer) *BarReporter {
	return &BarReporter{out: out}
}

func (r *BarReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) AssetDone(filename string, err error) {
	if r.bar == nil {
		return
	}
	if err != nil {
		r.bar.Describe(ErrorStyle.Render("failed " + filepath.Base(filename)))
		return
	}
	r.bar.Describe(filepath.Base(filename))
	_ = r.bar.Add(1)
}

func (r *BarReporter) Finish(err error) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	if err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render(fmt.Sprintf("❌ Export failed: %v", err)))
	}
}

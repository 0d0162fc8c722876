package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/teamcutter/imgrip/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// barProgress draws one bar per batch of units on stderr.
type barProgress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	label  string
	failed int
}

func newBarProgress() *barProgress {
	return &barProgress{}
}

func (p *barProgress) Begin(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.label = label
	p.failed = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", label)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) Step(result domain.UnitResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	if !result.OK() {
		p.failed++
		p.bar.Describe(fmt.Sprintf("Extracting %s %s", p.label, yellow(fmt.Sprintf("(%d failed)", p.failed))))
	}
	p.bar.Add(1)
}

func (p *barProgress) End() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

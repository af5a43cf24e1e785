package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows per-site harvest progress on a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a Spinner drawing to w.
func NewSpinner(w io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &Spinner{s: s}
}

// Start begins spinning with the given label.
func (p *Spinner) Start(label string) {
	p.s.Suffix = " " + label
	p.s.Start()
}

// Stop halts the spinner and leaves a final line behind.
func (p *Spinner) Stop(final string) {
	p.s.FinalMSG = fmt.Sprintf("%s\n", final)
	p.s.Stop()
}

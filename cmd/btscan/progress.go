package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const clearLineSequence = "\r\033[K"

// countdownPrinter shows a single-line countdown while a scan runs. It is
// silent when stdout is not a terminal. Single-use: Start once, Stop once.
type countdownPrinter struct {
	prefix   string
	duration time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	active   bool
}

func newCountdownPrinter(prefix string, duration time.Duration) *countdownPrinter {
	return &countdownPrinter{
		prefix:   prefix,
		duration: duration,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (p *countdownPrinter) Start() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	p.active = true
	start := time.Now()
	status := color.New(color.FgCyan)

	go func() {
		defer close(p.doneCh)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				fmt.Print(clearLineSequence)
				return
			case <-ticker.C:
				line := p.prefix
				if p.duration > 0 {
					remaining := p.duration - time.Since(start)
					if remaining < 0 {
						remaining = 0
					}
					line = fmt.Sprintf("%s (%s left)", p.prefix, remaining.Truncate(time.Second))
				}
				fmt.Print(clearLineSequence)
				status.Printf("%s", line)
			}
		}
	}()
}

func (p *countdownPrinter) Stop() {
	if !p.active {
		return
	}
	p.active = false
	close(p.stopCh)
	<-p.doneCh
}

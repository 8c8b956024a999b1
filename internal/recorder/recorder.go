// Package recorder implements the interactive journal menu.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// Store is what the recorder needs from the reflections store
type Store interface {
	Load() []json.RawMessage
	Prepend(record json.RawMessage) (int, error)
}

var rule = strings.Repeat("=", 60)

// DefaultMaxLineSize bounds a single line of input
const DefaultMaxLineSize = 4 * 1024 * 1024

// Recorder reads answers from in and writes prompts and reports to out
type Recorder struct {
	store Store
	in    *bufio.Scanner
	out   io.Writer
	now   func() time.Time

	maxLine int
}

// Option configures a Recorder
type Option func(*Recorder)

// WithMaxLineSize sets the longest input line accepted; longer lines abort the current entry
func WithMaxLineSize(n int) Option {
	return func(r *Recorder) { r.maxLine = n }
}

// WithClock overrides the time source used to stamp new entries
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a recorder over store
func New(store Store, in io.Reader, out io.Writer, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		in:      bufio.NewScanner(in),
		out:     out,
		now:     time.Now,
		maxLine: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxLine <= 0 {
		r.maxLine = DefaultMaxLineSize
	}
	r.in.Buffer(make([]byte, 0, min(4096, r.maxLine)), r.maxLine)
	return r
}

// Run shows the menu until the user exits or input ends
func (r *Recorder) Run() error {
	for {
		fmt.Fprintf(r.out, "\n%s\nLearning Journal Manager\n%s\n", rule, rule)
		fmt.Fprintln(r.out, "1. Add New Reflection")
		fmt.Fprintln(r.out, "2. View All Reflections")
		fmt.Fprintln(r.out, "3. Exit")
		fmt.Fprintln(r.out, rule)

		choice, ok := r.prompt("\nSelect an option (1-3): ")
		if !ok {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}

		switch strings.TrimSpace(choice) {
		case "1":
			r.Add()
		case "2":
			r.View()
		case "3":
			fmt.Fprintln(r.out, "\nGoodbye! Keep learning!")
			return nil
		default:
			fmt.Fprintln(r.out, "\nInvalid option! Please choose 1-3.")
		}
	}
}

// Add collects one reflection and prepends it to the store.
// It reports whether the entry was saved.
func (r *Recorder) Add() bool {
	fmt.Fprintf(r.out, "\n%s\nLearning Journal - Add New Reflection\n%s\n\n", rule, rule)

	title, _ := r.prompt("Enter reflection title: ")
	title = strings.TrimSpace(title)
	if r.inputFailed() {
		return false
	}
	if title == "" {
		fmt.Fprintln(r.out, "Title cannot be empty!")
		return false
	}

	fmt.Fprintln(r.out, "\nEnter your reflection (press Enter on an empty line to finish):")
	var lines []string
	for {
		line, ok := r.readLine()
		if !ok || line == "" {
			break
		}
		lines = append(lines, line)
	}
	if r.inputFailed() {
		return false
	}
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	if content == "" {
		fmt.Fprintln(r.out, "Content cannot be empty!")
		return false
	}

	category, _ := r.prompt("\nEnter category (e.g., Python, JavaScript, APIs): ")

	fmt.Fprintln(r.out, "\nEnter key learnings (one per line, press Enter on an empty line to finish):")
	var learnings []string
	for {
		learning, ok := r.prompt("  * ")
		learning = strings.TrimSpace(learning)
		if !ok || learning == "" {
			break
		}
		learnings = append(learnings, learning)
	}

	if r.inputFailed() {
		return false
	}

	entry := domain.NewEntry(title, content, strings.TrimSpace(category), learnings, r.now())
	record, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(r.out, "\nFailed to save reflection: %v\n", err)
		return false
	}

	total, err := r.store.Prepend(record)
	if err != nil {
		fmt.Fprintf(r.out, "\nFailed to save reflection: %v\n", err)
		return false
	}

	fmt.Fprintf(r.out, "\n%s\nReflection saved successfully!\nTotal reflections: %d\n%s\n", rule, total, rule)
	return true
}

// View lists every stored reflection, newest first
func (r *Recorder) View() {
	records := r.store.Load()
	if len(records) == 0 {
		fmt.Fprintln(r.out, "\nNo reflections found yet!")
		return
	}

	fmt.Fprintf(r.out, "\n%s\nLearning Journal - %d Reflections\n%s\n\n", rule, len(records), rule)
	for i, raw := range records {
		WriteEntry(r.out, i+1, domain.DecodeEntry(raw))
	}
}

// WriteEntry prints the one-entry summary used by the view listing
func WriteEntry(w io.Writer, n int, e domain.Entry) {
	fmt.Fprintf(w, "%d. %s\n", n, e.Title)
	fmt.Fprintf(w, "   %s\n", e.FormattedDate)
	fmt.Fprintf(w, "   %s\n", e.Category)
	if len(e.Learnings) > 0 {
		fmt.Fprintf(w, "   %d key learning(s)\n", len(e.Learnings))
	}
	fmt.Fprintln(w)
}

// inputFailed reports a read error, such as a line over the size limit.
// Partial answers are discarded so a truncated entry is never saved.
func (r *Recorder) inputFailed() bool {
	err := r.in.Err()
	if err == nil {
		return false
	}
	fmt.Fprintf(r.out, "\nFailed to read input: %v\n", err)
	return true
}

func (r *Recorder) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	return r.readLine()
}

func (r *Recorder) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimRight(r.in.Text(), "\r"), true
}

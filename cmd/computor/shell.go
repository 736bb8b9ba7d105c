package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/fatih/color"

	computor "github.com/njchilds90/computor"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

// shell runs lines and slash commands against one session. store may be
// nil, in which case nothing is persisted.
type shell struct {
	sess    *computor.Session
	store   *store
	out     io.Writer
	history []string
}

func newShell(sess *computor.Session, st *store, out io.Writer) *shell {
	sh := &shell{sess: sess, store: st, out: out}
	if st != nil {
		hist, err := st.History()
		if err != nil {
			log.Printf("loading history: %v", err)
		}
		sh.history = hist
	}
	return sh
}

// run handles one input line and reports whether the shell should exit.
func (sh *shell) run(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	sh.remember(line)
	if strings.HasPrefix(line, "/") {
		return sh.command(line)
	}
	_ = sh.eval(line)
	return false
}

// eval executes a calculator line, prints the outcome and persists any
// assignment. The error has already been printed.
func (sh *shell) eval(line string) error {
	r, err := sh.sess.Exec(line)
	if err != nil {
		fmt.Fprintln(sh.out, red(err.Error()))
		return err
	}
	fmt.Fprintln(sh.out, green(r.String()))

	if sh.store != nil && (r.Kind == computor.ResultVariable || r.Kind == computor.ResultFunction) {
		if v, ok := sh.sess.Lookup(r.Name); ok {
			if err := sh.store.SaveVariable(v); err != nil {
				log.Printf("saving %s: %v", r.Name, err)
			}
		}
	}
	return nil
}

func (sh *shell) remember(line string) {
	sh.history = append(sh.history, line)
	if sh.store == nil {
		return
	}
	if err := sh.store.AppendHistory(line); err != nil {
		log.Printf("saving history: %v", err)
	}
}

// complete offers command names and stored variable names for the word
// under the cursor.
func (sh *shell) complete(line string) []string {
	var out []string
	if strings.HasPrefix(line, "/") && !strings.Contains(line, " ") {
		for _, c := range commands {
			if strings.HasPrefix(c.name, strings.ToLower(line)) {
				out = append(out, c.name)
			}
		}
		return out
	}
	start := strings.LastIndexAny(line, " +-*/%^()=[],;") + 1
	head, word := line[:start], strings.ToLower(line[start:])
	if word == "" {
		return nil
	}
	for _, v := range sh.sess.Variables() {
		if strings.HasPrefix(v.Name, word) {
			out = append(out, head+v.Name)
		}
	}
	return out
}

// describe renders an entry as "name = value" or "f(x) = value".
func describe(v computor.Variable) string {
	tree, err := computor.Display(v)
	value := ""
	if err != nil {
		value = err.Error()
	} else {
		value = computor.String(tree)
	}
	if v.IsFunction() {
		return fmt.Sprintf("%s(%s) = %s", v.Name, v.Param, value)
	}
	return fmt.Sprintf("%s = %s", v.Name, value)
}

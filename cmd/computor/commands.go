package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	computor "github.com/njchilds90/computor"
)

type command struct {
	name  string
	usage string
	run   func(sh *shell, args []string) (quit bool)
}

var commands []command

func init() {
	commands = []command{
		{"/list", "/list [real|imaginary|matrix|functions]...", cmdList},
		{"/clear", "/clear [all|history|variables|NAME]...", cmdClear},
		{"/history", "/history [FILTER]...", cmdHistory},
		{"/export", "/export [FILE]", cmdExport},
		{"/help", "/help", cmdHelp},
		{"/quit", "/quit", func(*shell, []string) bool { return true }},
	}
}

func (sh *shell) command(line string) bool {
	fields := strings.Fields(line)
	for _, c := range commands {
		if c.name == strings.ToLower(fields[0]) {
			return c.run(sh, fields[1:])
		}
	}
	fmt.Fprintf(sh.out, "unknown command %s. Type /help for the list.\n", fields[0])
	return false
}

// ============================================================
// /list
// ============================================================

var categoryAliases = map[string]computor.Category{
	"r": computor.CategoryReal, "rat": computor.CategoryReal,
	"i": computor.CategoryImaginary, "ima": computor.CategoryImaginary,
	"m": computor.CategoryMatrix, "mat": computor.CategoryMatrix,
	"f": computor.CategoryFunction, "fn": computor.CategoryFunction, "fun": computor.CategoryFunction,
}

func parseCategory(s string) (computor.Category, bool) {
	s = strings.ToLower(s)
	if c, ok := categoryAliases[s]; ok {
		return c, true
	}
	return computor.ParseCategory(s)
}

func cmdList(sh *shell, args []string) bool {
	cats := []computor.Category{
		computor.CategoryReal, computor.CategoryImaginary,
		computor.CategoryMatrix, computor.CategoryFunction,
	}
	if len(args) > 0 {
		cats = cats[:0]
		for _, a := range args {
			c, ok := parseCategory(a)
			if !ok {
				fmt.Fprintf(sh.out, "unknown category %s\n", a)
				continue
			}
			cats = append(cats, c)
		}
	}
	vars := sh.sess.Variables()
	for _, c := range cats {
		var lines []string
		for _, v := range vars {
			if computor.Classify(v) == c {
				lines = append(lines, describe(v))
			}
		}
		if len(lines) == 0 {
			continue
		}
		name := c.String()
		fmt.Fprintln(sh.out, cyan(fmt.Sprintf("---------- %s ----------", strings.ToUpper(name[:1])+name[1:])))
		for _, l := range lines {
			fmt.Fprintln(sh.out, l)
		}
	}
	return false
}

// ============================================================
// /clear
// ============================================================

func cmdClear(sh *shell, args []string) bool {
	if len(args) == 0 {
		args = []string{"all"}
	}
	for _, a := range args {
		switch strings.ToLower(a) {
		case "*", "all":
			sh.clearVariables()
			sh.clearHistory()
		case "history", "hist":
			sh.clearHistory()
		case "var", "variables":
			sh.clearVariables()
		default:
			v, ok := sh.sess.Lookup(a)
			if !ok {
				fmt.Fprintf(sh.out, "no variable named %s\n", a)
				continue
			}
			line := describe(v)
			sh.sess.Clear(v.Name)
			if sh.store != nil {
				if err := sh.store.DeleteVariables(v.Name); err != nil {
					log.Printf("deleting %s: %v", v.Name, err)
				}
			}
			fmt.Fprintln(sh.out, red("- "+line))
		}
	}
	return false
}

func (sh *shell) clearVariables() {
	sh.sess.Clear()
	if sh.store != nil {
		if err := sh.store.DeleteVariables(); err != nil {
			log.Printf("deleting variables: %v", err)
		}
	}
}

func (sh *shell) clearHistory() {
	sh.history = nil
	if sh.store != nil {
		if err := sh.store.ClearHistory(); err != nil {
			log.Printf("clearing history: %v", err)
		}
	}
}

// ============================================================
// /history
// ============================================================

func cmdHistory(sh *shell, args []string) bool {
	if len(args) == 0 {
		for _, l := range sh.history {
			fmt.Fprintln(sh.out, l)
		}
		return false
	}
	for _, f := range args {
		fmt.Fprintln(sh.out, cyan(fmt.Sprintf("---------- %s ----------", f)))
		for _, l := range sh.history {
			if strings.Contains(l, f) && !strings.HasPrefix(l, "/") {
				fmt.Fprintln(sh.out, l)
			}
		}
	}
	return false
}

// ============================================================
// /export
// ============================================================

type exportEntry struct {
	Name     string `yaml:"name"`
	Param    string `yaml:"param,omitempty"`
	Category string `yaml:"category"`
	Value    string `yaml:"value"`
}

func exportTable(sess *computor.Session) ([]byte, error) {
	vars := sess.Variables()
	entries := make([]exportEntry, 0, len(vars))
	for _, v := range vars {
		tree, err := computor.Display(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		entries = append(entries, exportEntry{
			Name:     v.Name,
			Param:    v.Param,
			Category: computor.Classify(v).String(),
			Value:    computor.String(tree),
		})
	}
	return yaml.Marshal(map[string]interface{}{"variables": entries})
}

func cmdExport(sh *shell, args []string) bool {
	data, err := exportTable(sh.sess)
	if err != nil {
		fmt.Fprintln(sh.out, red(err.Error()))
		return false
	}
	if len(args) == 0 {
		sh.out.Write(data)
		return false
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		fmt.Fprintln(sh.out, red(err.Error()))
		return false
	}
	fmt.Fprintf(sh.out, "exported %d variables to %s\n", len(sh.sess.Variables()), args[0])
	return false
}

// ============================================================
// /help
// ============================================================

const helpText = `Enter an expression to evaluate it, "name = expr" to store a value or
"f(x) = expr" to store a function. End a line with "?" to evaluate it;
"a = b ?" reduces the equation a - (b) = 0.`

func cmdHelp(sh *shell, _ []string) bool {
	fmt.Fprintln(sh.out, helpText)
	fmt.Fprintln(sh.out)
	for _, c := range commands {
		fmt.Fprintln(sh.out, "  "+c.usage)
	}
	return false
}

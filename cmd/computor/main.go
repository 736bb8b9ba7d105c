// Command computor is an interactive calculator over polynomials in x,
// complex numbers and matrices.
//
// Usage:
//
//	computor [-c config] [-d database] [-n] [-e expr]
//
// Variables and history are kept in a SQLite database between runs.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	computor "github.com/njchilds90/computor"
)

const usage = `usage: computor [options]

options:
  -c FILE  read configuration from FILE
  -d FILE  store variables and history in FILE (":memory:" keeps nothing)
  -e EXPR  evaluate EXPR and exit
  -m N     bound nested substitutions to N
  -n       disable colour
  -h       show this help`

func main() {
	log.SetFlags(0)
	log.SetPrefix("computor: ")
	os.Exit(run(os.Args))
}

func run(args []string) int {
	opts, optind, err := getopt.Getopts(args, "c:d:e:m:nh")
	if err != nil {
		log.Println(err)
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if optind < len(args) {
		log.Printf("unexpected argument %q", args[optind])
		return 2
	}

	var (
		configPath, database, expr string
		maxDepth                   int
		noColor, oneShot           bool
	)
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			configPath = opt.Value
		case 'd':
			database = opt.Value
		case 'e':
			expr, oneShot = opt.Value, true
		case 'm':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n <= 0 {
				log.Println("-m must be a positive integer")
				return 2
			}
			maxDepth = n
		case 'n':
			noColor = true
		case 'h':
			fmt.Println(usage)
			return 0
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Println(err)
		return 1
	}
	if database != "" {
		cfg.Database = database
	}
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	if noColor || (cfg.Color != nil && !*cfg.Color) {
		color.NoColor = true
	}

	sess := computor.NewSession(computor.WithMaxDepth(cfg.MaxDepth))
	var sd shutdown
	defer sd.run()
	st, err := openStore(cfg.Database)
	if err != nil {
		log.Printf("opening %s: %v; continuing without persistence", cfg.Database, err)
	} else {
		sd.add(func() { _ = st.Close() })
		_, dropped, err := st.LoadInto(sess)
		if err != nil {
			log.Printf("loading variables: %v", err)
		}
		for _, d := range dropped {
			log.Printf("dropped stored variable %s", d)
		}
	}

	sh := newShell(sess, st, os.Stdout)
	if oneShot {
		if err := sh.eval(expr); err != nil {
			return 1
		}
		return 0
	}
	return repl(sh, cfg, &sd)
}

// shutdown runs its steps once, last added first, from either the normal
// return path or a signal.
type shutdown struct {
	once  sync.Once
	steps []func()
}

func (sd *shutdown) add(f func()) { sd.steps = append(sd.steps, f) }

func (sd *shutdown) run() {
	sd.once.Do(func() {
		for i := len(sd.steps) - 1; i >= 0; i-- {
			sd.steps[i]()
		}
	})
}

func repl(sh *shell, cfg Config, sd *shutdown) int {
	ln := liner.NewLiner()
	sd.add(func() { _ = ln.Close() })
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(sh.complete)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	sd.add(func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	})

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		sd.run()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			log.Println(err)
			return 1
		}
		ln.AppendHistory(line)
		if sh.run(line) {
			return 0
		}
	}
}

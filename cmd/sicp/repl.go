package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"sicp/interpreter-go/pkg/driver"
	"sicp/interpreter-go/pkg/interpreter"
	"sicp/interpreter-go/pkg/parser"
	"sicp/interpreter-go/pkg/runtime"
)

const (
	promptMain  = "sicp> "
	promptCont  = "....> "
	historyFile = "history"
)

const replHelp = `:help          show this message
:env           list global bindings
:load <file>   evaluate a file into the session
:quit          leave the REPL
`

// lineReader is the part of liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func (c *cli) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runREPL()
		},
	}
}

func (c *cli) runREPL() error {
	interp, err := c.newInterpreter()
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := driver.DefaultHome(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	c.repl(interp, ln)

	if histPath != "" {
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err == nil {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return nil
}

// repl runs until end of input or :quit. Evaluation errors are printed and the session continues.
func (c *cli) repl(interp *interpreter.Interpreter, ln lineReader) {
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(c.stdout)
			return
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if c.handleReplCommand(interp, trimmed) {
				return
			}
			continue
		}
		results, err := interp.EvaluateSource(code)
		c.printResults(results)
		if err != nil {
			fmt.Fprintf(c.stdout, "error: %v\n", err)
		}
	}
}

func (c *cli) printResults(results []runtime.Expression) {
	for _, v := range results {
		if v.Kind() != runtime.KindVoid {
			fmt.Fprintln(c.stdout, v)
		}
	}
}

func (c *cli) handleReplCommand(interp *interpreter.Interpreter, line string) (exit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(c.stdout, replHelp)
	case ":env":
		fmt.Fprintln(c.stdout, strings.Join(interp.GlobalEnvironment().Names(), " "))
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(c.stdout, "usage: :load <file>")
			return false
		}
		src, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintf(c.stdout, "cannot read %s: %v\n", fields[1], err)
			return false
		}
		results, err := interp.EvaluateSource(string(src))
		c.printResults(results)
		if err != nil {
			fmt.Fprintf(c.stdout, "error: %v\n", err)
		}
	default:
		fmt.Fprintln(c.stdout, "unknown command. Type :help for help.")
	}
	return false
}

// readByParseProbe reads lines until the buffer parses, or fails for a reason
// other than running out of input. It reports false at end of input.
func readByParseProbe(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseAll(src); errors.Is(err, parser.ErrUnexpectedEOF) {
			continue
		}
		return src, true
	}
}

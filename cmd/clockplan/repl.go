package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	"github.com/spf13/cobra"
)

// lineReader yields one input line at a time; io.EOF ends the session.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type ttyReader struct{ t *tty.TTY }

func (r ttyReader) ReadLine() (string, error) { return r.t.ReadString() }
func (r ttyReader) Close() error              { return r.t.Close() }

type scanReader struct{ s *bufio.Scanner }

func (r scanReader) ReadLine() (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.s.Text(), nil
}
func (r scanReader) Close() error { return nil }

func openInput(in *os.File) (lineReader, bool) {
	if isatty.IsTerminal(in.Fd()) {
		if t, err := tty.Open(); err == nil {
			return ttyReader{t}, true
		}
	}
	return scanReader{bufio.NewScanner(in)}, false
}

func newReplCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session against simulated chips",
		Long: `Each line is split like a shell command and run as a clockplan
subcommand. Simulated chips persist between lines, so an apply starts from
whatever the previous apply left. "exit" or end of input ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, interactive := openInput(os.Stdin)
			defer in.Close()
			return repl(sess, in, interactive)
		},
	}
}

func repl(sess *session, in lineReader, interactive bool) error {
	for {
		if interactive {
			fmt.Fprint(sess.out, "clockplan> ")
		}
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		words, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintln(sess.out, "error:", err)
			continue
		}
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "exit", "quit":
			return nil
		case "repl":
			fmt.Fprintln(sess.out, "error: already in a session")
			continue
		}
		root := newRootCmd(sess)
		root.SetArgs(words)
		root.SetErr(sess.out)
		root.SilenceErrors = true
		if err := root.Execute(); err != nil {
			fmt.Fprintln(sess.out, "error:", err)
		}
	}
}

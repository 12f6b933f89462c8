package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, sess *session, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	sess.out = &buf
	root := newRootCmd(sess)
	root.SetArgs(args)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func TestSolveFlags(t *testing.T) {
	out, err := run(t, newSession(nil), "solve", "--family", "l4", "--source", "hse", "--hse", "8MHz", "--sysclk", "80MHz")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"sysclk   80MHz", "m=1 n=20 r=2", "flash    4 wait states"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestSolveJSON(t *testing.T) {
	out, err := run(t, newSession(nil), "solve", "--json", "--request", "family f4; source hse 8MHz; sysclk 168MHz; ceiling apb1 42MHz")
	if err != nil {
		t.Fatal(err)
	}
	var v planView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if v.SysClkHz != 168_000_000 || v.PLL == nil || v.PLL.N != 168 || v.Buses["apb1"].Div != 4 {
		t.Fatalf("%+v", v)
	}
}

func TestSolveErrorCarriesCode(t *testing.T) {
	_, err := run(t, newSession(nil), "solve", "--family", "g0", "--sysclk", "100MHz")
	if err == nil || !strings.HasPrefix(err.Error(), "config_unsatisfiable") {
		t.Fatalf("err = %v", err)
	}
}

func TestBoardFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	yml := `board: nucleo-g474
rcc:
  family: g4
  source: hse
  hse_hz: 24000000
  sysclk_hz: 170000000
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, newSession(nil), "solve", "--board", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "sysclk   170MHz") {
		t.Fatalf("%s", out)
	}
}

func TestApplyRollsBackOnStuckOscillator(t *testing.T) {
	sess := newSession(nil)
	out, err := run(t, sess, "apply", "--family", "l4", "--source", "hse", "--hse", "8MHz", "--sysclk", "80MHz", "--stuck-ready", "hse")
	if err == nil || !strings.HasPrefix(err.Error(), "clock_start_timeout") {
		t.Fatalf("err = %v\n%s", err, out)
	}
	if !strings.Contains(out, "rolled back") {
		t.Fatalf("%s", out)
	}
	if got := sess.chips["l4"].store.Load().Generation; got != 0 {
		t.Fatalf("generation %d after rollback", got)
	}
	out, err = run(t, sess, "apply", "-q", "--family", "l4", "--source", "hse", "--hse", "8MHz", "--sysclk", "80MHz")
	if err != nil || !strings.Contains(out, "gen=1") {
		t.Fatalf("%v\n%s", err, out)
	}
}

func TestInfoCommands(t *testing.T) {
	out, err := run(t, newSession(nil), "families")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"f3", "f4", "g0", "g4", "l4"} {
		if !strings.Contains(out, "\n"+name+" ") {
			t.Fatalf("missing %s in\n%s", name, out)
		}
	}
	out, err = run(t, newSession(nil), "periphs", "g4")
	if err != nil || !strings.Contains(out, "fdcan") {
		t.Fatalf("%v\n%s", err, out)
	}
}

func TestReplKeepsChipState(t *testing.T) {
	var buf bytes.Buffer
	sess := newSession(&buf)
	script := strings.Join([]string{
		"# shlex drops comments, so this line is empty",
		`apply -q --request "family l4; source hse 8MHz; sysclk 80MHz"`,
		"gate enable usart2 --family l4",
		"gate status usart2 --family l4",
		"bogus",
		"exit",
		"families",
	}, "\n")
	in := scanReader{bufio.NewScanner(strings.NewReader(script))}
	if err := repl(sess, in, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "usart2 on apb1: enabled=true clock=80MHz") {
		t.Fatalf("%s", out)
	}
	if !strings.Contains(out, "error:") {
		t.Fatalf("unknown command not reported:\n%s", out)
	}
	if strings.Contains(out, "FAMILY") {
		t.Fatal("ran past exit")
	}
}

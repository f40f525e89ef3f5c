package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) Status(ctx context.Context) error { f.record("status", nil); return nil }
func (f *fakeExec) Answer(ctx context.Context, args []string) error {
	f.record("answer", args)
	return nil
}
func (f *fakeExec) EEO(ctx context.Context, args []string) error { f.record("eeo", args); return nil }
func (f *fakeExec) Attach(ctx context.Context, args []string) error {
	f.record("attach", args)
	return nil
}
func (f *fakeExec) Submit(ctx context.Context) error    { f.record("submit", nil); return nil }
func (f *fakeExec) Retry(ctx context.Context) error     { f.record("retry", nil); return nil }
func (f *fakeExec) MagicLink(ctx context.Context) error { f.record("magiclink", nil); return nil }
func (f *fakeExec) Token(ctx context.Context) error     { f.record("token", nil); return nil }
func (f *fakeExec) Logout(ctx context.Context) error    { f.record("logout", nil); return nil }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"status",
		"answer motivation I enjoy the work",
		"eeo gender decline",
		"attach /tmp/resume.pdf",
		"retry",
		"submit",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "(online)" }, sc)

	want := []string{"status", "answer", "eeo", "attach", "retry", "submit"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i, c := range exec.calls {
		if c != want[i] {
			t.Fatalf("calls order mismatch: got %v, want %v", exec.calls, want)
		}
	}

	// Arguments pass through untouched.
	if got := strings.Join(exec.args[1], " "); got != "motivation I enjoy the work" {
		t.Fatalf("answer args: %q", got)
	}
	if got := strings.Join(exec.args[3], " "); got != "/tmp/resume.pdf" {
		t.Fatalf("attach args: %q", got)
	}
}

func TestRunREPL_QuitWithoutCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n\nquit\n")
	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

package shell

import (
	"errors"
	"strings"
	"testing"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetFullCmdStr(t *testing.T) {
	if got := GetFullCmdStr("echo 'hello'", false, nil); got != "echo 'hello'" {
		t.Errorf("expected command unchanged, got: %s", got)
	}

	got := GetFullCmdStr("videodecode -i in.mp4", false, []string{"HIP_VISIBLE_DEVICES=0"})
	if got != "HIP_VISIBLE_DEVICES=0 videodecode -i in.mp4" {
		t.Errorf("expected env prefix, got: %s", got)
	}
}

func TestGetFullCmdStrSudoCarriesProxy(t *testing.T) {
	t.Setenv("https_proxy", "http://proxy.example.com:911")

	got := GetFullCmdStr("apt-get -y install gcc", true, nil)
	if !strings.HasPrefix(got, "sudo ") {
		t.Fatalf("expected sudo prefix, got: %s", got)
	}
	if !strings.Contains(got, "https_proxy=") {
		t.Errorf("expected proxy variable to be forwarded, got: %s", got)
	}
	if !strings.HasSuffix(got, "apt-get -y install gcc") {
		t.Errorf("expected command at the end, got: %s", got)
	}
}

func TestExecCmd(t *testing.T) {
	out, err := ExecCmd("echo 'test-exec-cmd'", false, nil)
	if err != nil {
		t.Fatalf("ExecCmd failed: %v", err)
	}
	if !strings.Contains(out, "test-exec-cmd") {
		t.Errorf("Expected output to contain 'test-exec-cmd', got: %s", out)
	}
}

func TestExecCmdFailureKeepsOutput(t *testing.T) {
	out, err := ExecCmd("echo 'partial'; exit 3", false, nil)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(out, "partial") {
		t.Errorf("expected output of failed command, got: %s", out)
	}
}

func TestExecCmdWithStream(t *testing.T) {
	out, err := ExecCmdWithStream("echo 'test-exec-stream'; echo 'to-stderr' 1>&2", false, nil)
	if err != nil {
		t.Fatalf("ExecCmdWithStream failed: %v", err)
	}
	if !strings.Contains(out, "test-exec-stream") {
		t.Errorf("Expected output to contain 'test-exec-stream', got: %s", out)
	}
	if strings.Contains(out, "to-stderr") {
		t.Errorf("stderr must not be part of the returned output, got: %s", out)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain.mp4", want: "plain.mp4"},
		{in: "with space.mp4", want: "'with space.mp4'"},
		{in: "it's.mp4", want: `'it'"'"'s.mp4'`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsCommandExist(t *testing.T) {
	originalExecutor := Default
	defer func() { Default = originalExecutor }()

	Default = NewMockExecutor([]MockCommand{
		{Pattern: "command -v inxi", Output: "/usr/bin/inxi\n"},
		{Pattern: "command -v rocminfo", Output: "", Error: errors.New("exit status 1")},
	})

	if ok, _ := IsCommandExist("inxi"); !ok {
		t.Error("expected inxi to exist")
	}
	if ok, _ := IsCommandExist("rocminfo"); ok {
		t.Error("expected rocminfo to be missing")
	}
}

func TestMockExecutorRecordsCalls(t *testing.T) {
	mock := NewMockExecutor([]MockCommand{
		{Pattern: `^sudo -v$`, Output: ""},
		{Pattern: `install gcc`, Output: "ok\n"},
	})

	if _, err := mock.ExecCmd("sudo -v", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := mock.ExecCmdWithStream("apt-get -y install gcc", true, nil)
	if err != nil || out != "ok\n" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
	if _, err := mock.ExecCmd("rm -rf /", true, nil); err == nil {
		t.Fatal("expected unmatched command to fail")
	}

	calls := mock.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(calls))
	}
	if !calls[1].Sudo || calls[0].Sudo {
		t.Errorf("sudo flags not recorded correctly: %+v", calls)
	}
}

func TestExecCmdLogsOutputVerbatim(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.SetLogger(zap.New(core).Sugar())
	defer logger.SetLogger(previous)

	if _, err := ExecCmd("echo 'progress 50%d done'; exit 1", false, nil); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if _, err := ExecCmdWithStream("echo 'ratio 10%s'", false, nil); err != nil {
		t.Fatalf("ExecCmdWithStream failed: %v", err)
	}

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	joined := strings.Join(messages, "\n")
	if strings.Contains(joined, "MISSING") {
		t.Errorf("command output was treated as a format string:\n%s", joined)
	}
	for _, want := range []string{"progress 50%d done", "ratio 10%s"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, joined)
		}
	}
}

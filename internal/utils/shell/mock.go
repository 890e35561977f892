package shell

import (
	"fmt"
	"regexp"
	"sync"
)

// MockCommand maps a command pattern to a canned result.
type MockCommand struct {
	Pattern string // regular expression matched against the command string
	Output  string
	Error   error
}

// MockExecutor replays canned results and records every command it was asked
// to run. The first matching MockCommand wins; unmatched commands fail.
type MockExecutor struct {
	commands []MockCommand
	mu       sync.Mutex
	calls    []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	Cmd  string
	Sudo bool
}

// NewMockExecutor returns an executor answering with the given commands.
func NewMockExecutor(commands []MockCommand) *MockExecutor {
	return &MockExecutor{commands: commands}
}

func (m *MockExecutor) ExecCmd(cmdStr string, sudo bool, envVal []string) (string, error) {
	return m.run(cmdStr, sudo)
}

func (m *MockExecutor) ExecCmdWithStream(cmdStr string, sudo bool, envVal []string) (string, error) {
	return m.run(cmdStr, sudo)
}

func (m *MockExecutor) run(cmdStr string, sudo bool) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Cmd: cmdStr, Sudo: sudo})
	m.mu.Unlock()

	for _, c := range m.commands {
		matched, err := regexp.MatchString(c.Pattern, cmdStr)
		if err != nil {
			return "", fmt.Errorf("invalid mock pattern %q: %w", c.Pattern, err)
		}
		if matched {
			return c.Output, c.Error
		}
	}
	return "", fmt.Errorf("unexpected command for mock executor: %s", cmdStr)
}

// Calls returns the recorded invocations in order.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Commands returns the recorded command strings in order.
func (m *MockExecutor) Commands() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Cmd
	}
	return out
}

package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/alessio/shellescape"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
)

// Executor runs shell command strings on the host.
type Executor interface {
	// ExecCmd runs the command and returns its combined output.
	ExecCmd(cmdStr string, sudo bool, envVal []string) (string, error)
	// ExecCmdWithStream runs the command and logs its output line by line
	// while it runs. The returned string holds stdout only.
	ExecCmdWithStream(cmdStr string, sudo bool, envVal []string) (string, error)
}

// Default is the executor used by the package-level helpers. Tests replace
// it with a MockExecutor.
var Default Executor = &DefaultExecutor{}

// DefaultExecutor runs commands through the host shell.
type DefaultExecutor struct{}

// ExecCmd executes a command through Default.
func ExecCmd(cmdStr string, sudo bool, envVal []string) (string, error) {
	return Default.ExecCmd(cmdStr, sudo, envVal)
}

// ExecCmdWithStream executes a command through Default and streams its output.
func ExecCmdWithStream(cmdStr string, sudo bool, envVal []string) (string, error) {
	return Default.ExecCmdWithStream(cmdStr, sudo, envVal)
}

// Quote returns s quoted for safe use as one shell word.
func Quote(s string) string {
	return shellescape.Quote(s)
}

// GetOSEnvirons returns the system environment variables
func GetOSEnvirons() map[string]string {
	environ := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			environ[parts[0]] = parts[1]
		}
	}
	return environ
}

// GetOSProxyEnvirons retrieves HTTP and HTTPS proxy environment variables.
// Package managers running under sudo lose them otherwise.
func GetOSProxyEnvirons() map[string]string {
	proxyEnv := make(map[string]string)
	for key, value := range GetOSEnvirons() {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "http_proxy") ||
			strings.Contains(lower, "https_proxy") ||
			strings.Contains(lower, "no_proxy") {
			proxyEnv[key] = value
		}
	}
	return proxyEnv
}

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// IsCommandExist checks if a command exists on the host
func IsCommandExist(cmd string) (bool, error) {
	output, err := Default.ExecCmd("command -v "+cmd, false, nil)
	if err != nil {
		// command -v exits non-zero when the command is missing
		return false, nil
	}
	return strings.TrimSpace(output) != "", nil
}

// GetFullCmdStr prepares a command string with the sudo prefix and
// environment assignments.
func GetFullCmdStr(cmdStr string, sudo bool, envVal []string) string {
	log := logger.Logger()

	envValStr := ""
	for _, env := range envVal {
		envValStr += env + " "
	}

	if !sudo {
		log.Debugf("Exec: [%s]", cmdStr)
		return envValStr + cmdStr
	}

	for key, value := range GetOSProxyEnvirons() {
		envValStr += key + "=" + shellescape.Quote(value) + " "
	}
	log.Debugf("Exec: [sudo %s]", cmdStr)
	return "sudo " + envValStr + cmdStr
}

// ExecCmd executes a command and returns its output
func (e *DefaultExecutor) ExecCmd(cmdStr string, sudo bool, envVal []string) (string, error) {
	log := logger.Logger()
	fullCmdStr := GetFullCmdStr(cmdStr, sudo, envVal)

	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Info(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", fullCmdStr, err)
	}
	if outputStr != "" {
		log.Debug(outputStr)
	}
	return outputStr, nil
}

// ExecCmdWithStream executes a command and streams its output
func (e *DefaultExecutor) ExecCmdWithStream(cmdStr string, sudo bool, envVal []string) (string, error) {
	log := logger.Logger()
	fullCmdStr := GetFullCmdStr(cmdStr, sudo, envVal)

	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	if sudo {
		// sudo may prompt when the credential cache expired mid-phase
		cmd.Stdin = os.Stdin
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stdout pipe for command %s: %w", fullCmdStr, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stderr pipe for command %s: %w", fullCmdStr, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command %s: %w", fullCmdStr, err)
	}

	var (
		wg  sync.WaitGroup
		out bytes.Buffer
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			str := scanner.Text()
			out.WriteString(str)
			out.WriteByte('\n')
			if str != "" {
				log.Info(str)
			}
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if str := scanner.Text(); str != "" {
				log.Info(str)
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return out.String(), fmt.Errorf("failed to wait for command %s: %w", fullCmdStr, err)
	}
	return out.String(), nil
}

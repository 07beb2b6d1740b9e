package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// credentialReader asks the user for missing credentials. Swapped out in tests.
type credentialReader interface {
	Username() (string, error)
	Password() (string, error)
}

// terminalCredentials prompts on the controlling terminal
type terminalCredentials struct{}

func (terminalCredentials) Username() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("username is required in non-interactive mode (use --username flag or ERPCTL_USERNAME env var)")
	}

	prompt := promptui.Prompt{
		Label: "Username",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("username is required")
			}
			return nil
		},
	}
	username, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("failed to read username: %w", err)
	}
	return strings.TrimSpace(username), nil
}

func (terminalCredentials) Password() (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("password is required in non-interactive mode (use --password flag or ERPCTL_PASSWORD env var)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// resolveCredentials fills in missing credentials from the environment
// and then from the reader.
func resolveCredentials(username, password string, reader credentialReader) (string, string, error) {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("ERPCTL_USERNAME")
	}
	if password == "" {
		password = os.Getenv("ERPCTL_PASSWORD")
	}

	var err error
	if username == "" {
		if username, err = reader.Username(); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = reader.Password(); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

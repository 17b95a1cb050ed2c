package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// promptValue asks for one value in the terminal. Secrets are masked.
func promptValue(title, description string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Description(description).
		Value(&value).
		Validate(validateRequired(title))
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errors.New("aborted")
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// readValue reads the first line of r, for piping secrets in scripts.
func readValue(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no value on stdin")
	}
	value := strings.TrimSpace(scanner.Text())
	if value == "" {
		return "", errors.New("empty value on stdin")
	}
	return value, nil
}

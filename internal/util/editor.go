package util

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

func OpenEditor(filePath string, config model.Config) error {
	c := exec.Command(config.Editor, filePath)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor (%s): %w", filePath, err)
	}
	return nil
}

// EditText opens the configured editor on a temp file seeded with header
// (written as `#` comment lines) and returns what the user typed, with the
// comment lines removed and surrounding whitespace trimmed.
func EditText(header string, config model.Config) (string, error) {
	f, err := os.CreateTemp("", "fieldsync-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	var seed strings.Builder
	seed.WriteString("\n")
	for _, line := range strings.Split(header, "\n") {
		seed.WriteString("# " + line + "\n")
	}
	if _, err := f.WriteString(seed.String()); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	f.Close()

	if err := OpenEditor(f.Name(), config); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return StripComments(string(data)), nil
}

func StripComments(text string) string {
	var kept []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

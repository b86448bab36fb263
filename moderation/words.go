package moderation

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

// LoadDefaultWords reads the embedded censored word lists.
// One word or phrase per line; blank lines and '#' comments are skipped.
func LoadDefaultWords() ([]string, error) {
	entries, err := censoredFolder.ReadDir("censored")
	if err != nil {
		return nil, fmt.Errorf("reading censored folder: %w", err)
	}

	var words []string
	for _, entry := range entries {
		f, err := censoredFolder.Open("censored/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", entry.Name(), err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words = append(words, line)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("scanning %s: %w", entry.Name(), err)
		}
		f.Close()
	}
	return words, nil
}

package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/civicmesh/claimforge/internal/model"
)

// ProcessFile reads submissions from a file (one per line) and runs them
// through the pool.
func (p *Pool) ProcessFile(ctx context.Context, filePath, locale string) ([]Result, error) {
	subs, err := ReadSubmissionsFromFile(filePath, locale)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	return p.Process(ctx, subs), nil
}

// ReadSubmissionsFromFile reads one submission per line. Empty lines and
// #-comments are skipped; exact duplicate lines are submitted once.
func ReadSubmissionsFromFile(filePath, locale string) ([]model.RawSubmission, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var subs []model.RawSubmission
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		subs = append(subs, model.RawSubmission{Text: line, Locale: locale})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return subs, nil
}

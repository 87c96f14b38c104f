package planner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"
)

// DepsSidecar records the header files a compiled object depends on,
// written alongside the object as "<object>.deps.json" per spec.md
// §4.7.2, so a future incremental build can check them alongside the
// source itself.
type DepsSidecar struct {
	Object  string   `json:"object"`
	Headers []string `json:"headers"`
}

func depsSidecarPath(objectOut string) string {
	return objectOut + ".deps.json"
}

func writeDepsSidecar(objectOut string, headers []string) error {
	data, err := json.MarshalIndent(DepsSidecar{Object: objectOut, Headers: headers}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(depsSidecarPath(objectOut), data, 0o644)
}

// parseGNUDepfile parses a Makefile-rule depfile produced by "-MD -MF",
// returning every prerequisite after the rule's target.
func parseGNUDepfile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	joined := strings.ReplaceAll(string(data), "\\\n", " ")
	_, rest, found := strings.Cut(joined, ":")
	if !found {
		return nil, nil
	}
	return strings.Fields(rest), nil
}

// parseMSVCIncludes scrapes "Note: including file:" lines out of
// /showIncludes output, returning the included header paths in the order
// the compiler reported them.
func parseMSVCIncludes(output []byte) []string {
	const prefix = "Note: including file:"
	var headers []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, prefix); idx >= 0 {
			headers = append(headers, strings.TrimSpace(line[idx+len(prefix):]))
		}
	}
	return headers
}

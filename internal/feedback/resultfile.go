package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteResult marshals res to JSON and writes it atomically via a temp file
// + os.Rename, so the orchestrator never observes a partial payload.
func WriteResult(path string, res Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode feedback result: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "result-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to write feedback result: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write feedback result: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write feedback result: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write feedback result: %w", err)
	}
	return nil
}

// ReadResult reads and decodes a result payload written by WriteResult.
func ReadResult(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read feedback result: %w", err)
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("feedback result file %s is empty", path)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("failed to parse feedback result: %w", err)
	}
	return res, nil
}

package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BatchRequest is one generation request from a batch file.
type BatchRequest struct {
	Prompt string `json:"prompt"`
}

// BatchItem records the outcome of one request. Exactly one of Result
// and Error is set.
type BatchItem struct {
	Request BatchRequest    `json:"request"`
	Status  string          `json:"status"` // "success" or "error"
	Result  *GenerateResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Items      []BatchItem `json:"results"`
}

// GenerateBatch runs Generate for every request in the batch file. A
// .json file carries {"requests": [{"prompt": ...}]}; any other file
// is read as one prompt per line. Per-request failures are recorded,
// not fatal.
func (e *Engine) GenerateBatch(ctx context.Context, batchPath, outputDir string) (*BatchResult, error) {
	requests, err := readBatchFile(batchPath)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, req := range requests {
		if req.Prompt == "" {
			continue
		}
		fmt.Fprintf(e.stdout, "Batch request: %s\n", req.Prompt)

		item := BatchItem{Request: req, Status: "success"}
		generated, err := e.Generate(ctx, req.Prompt, outputDir)
		if err != nil {
			item.Status = "error"
			item.Error = err.Error()
			result.Failed++
		} else {
			item.Result = generated
			result.Successful++
		}
		result.Items = append(result.Items, item)
	}

	result.Total = len(result.Items)
	fmt.Fprintf(e.stdout, "Batch complete: %d succeeded, %d failed\n",
		result.Successful, result.Failed)
	return result, nil
}

func readBatchFile(path string) ([]BatchRequest, error) {
	if filepath.Ext(path) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading batch file: %w", err)
		}
		var batch struct {
			Requests []BatchRequest `json:"requests"`
		}
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("decoding batch file %s: %w", path, err)
		}
		return batch.Requests, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	defer f.Close()

	var requests []BatchRequest
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		requests = append(requests, BatchRequest{Prompt: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return requests, nil
}

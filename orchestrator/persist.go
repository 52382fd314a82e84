package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Output file names.
const (
	MedicalSummaryFile  = "medical_summary.json"
	SentimentIntentFile = "sentiment_intent.json"
	SOAPNoteFile        = "soap_note.json"
	CompleteOutputFile  = "complete_output.json"
)

// RunDir creates a timestamped directory under root for one run. runID must
// be a single path element.
func RunDir(root, runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	ts := time.Now().Format("20060102-150405")
	dir := filepath.Join(root, "report_"+ts+"_"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Persist writes the four documents into dir. All of them are encoded before
// anything touches the disk, and each is written to a temporary name first,
// so a failure leaves no partial document under a final name.
func Persist(dir string, r *StructuredReport) error {
	docs := []struct {
		name string
		v    any
	}{
		{MedicalSummaryFile, r.MedicalReport},
		{SentimentIntentFile, r.SentimentIntent},
		{SOAPNoteFile, r.SOAPNote},
		{CompleteOutputFile, r},
	}
	encoded := make([][]byte, len(docs))
	for i, d := range docs {
		b, err := encodeJSON(d.v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.name, err)
		}
		encoded[i] = b
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var tmps []string
	cleanup := func() {
		for _, t := range tmps {
			_ = os.Remove(t)
		}
	}
	for i, d := range docs {
		tmp := filepath.Join(dir, "."+d.name+".tmp")
		if err := os.WriteFile(tmp, encoded[i], 0o644); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", d.name, err)
		}
		tmps = append(tmps, tmp)
	}
	for i, d := range docs {
		if err := os.Rename(tmps[i], filepath.Join(dir, d.name)); err != nil {
			cleanup()
			return fmt.Errorf("rename %s: %w", d.name, err)
		}
	}
	return nil
}

// Load reads a complete_output.json document back.
func Load(path string) (*StructuredReport, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var r StructuredReport
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &r, nil
}

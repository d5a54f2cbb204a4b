package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/sample"
)

func TestRunRun_StdoutCarriesOnlyJSONL(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JOBRADAR_CONFIG", "")

	input := filepath.Join(dir, "raw.jsonl")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if err := recordio.WriteRawRecords(f, sample.Generate(5, 1, today)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var out, errOut bytes.Buffer
	oldOut, oldErr, oldFlags := stdout, stderr, runFlags
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr, runFlags = oldOut, oldErr, oldFlags })
	runFlags.input = input
	runFlags.output = "-"
	runFlags.today = "2026-10-15"
	runFlags.noLLM = true

	if err := runRun(runCmd, nil); err != nil {
		t.Fatalf("runRun: %v", err)
	}

	lines := 0
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		lines++
		if !json.Valid(sc.Bytes()) {
			t.Errorf("stdout line %d is not JSON: %q", lines, sc.Text())
		}
	}
	if lines == 0 {
		t.Error("no scored jobs on stdout")
	}
	if !bytes.Contains(errOut.Bytes(), []byte("input loaded")) {
		t.Errorf("logs missing from stderr: %q", errOut.String())
	}
}

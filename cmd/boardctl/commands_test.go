package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestClassifyPrintsCategoryPerColor(t *testing.T) {
	out, err := run(t, "", "classify", "#274B8A", "#000000", "nonsense")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	for i, want := range []string{"#274B8A\tazul\t", "#000000\tnegro\t", "nonsense\tblanco\t"} {
		if !strings.HasPrefix(lines[i], want) {
			t.Fatalf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
}

func TestClassifyJSONOutput(t *testing.T) {
	out, err := run(t, "", "classify", "--json", "#FF0000")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.Contains(out, `"category":"rojo"`) || !strings.Contains(out, `"meditation":{`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestClassifyRequiresArgs(t *testing.T) {
	if _, err := run(t, "", "classify"); err == nil {
		t.Fatalf("expected error without colours")
	}
}

func TestExtractFromStdin(t *testing.T) {
	out, err := run(t, `sure! {"label":"ALTO","confidence":90} hope this helps`, "extract")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out) != `{"label":"ALTO","confidence":90}` {
		t.Fatalf("unexpected span %q", out)
	}
}

func TestExtractNothingFound(t *testing.T) {
	out, err := run(t, "no braces here", "extract", "-")
	if !errors.Is(err, domain.ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestExtractFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	if err := os.WriteFile(path, []byte("x {\"a\":{\"b\":1}} y\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := run(t, "", "extract", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out) != `{"a":{"b":1}}` {
		t.Fatalf("unexpected span %q", out)
	}
}

func TestVerdictParsesModelReply(t *testing.T) {
	out, err := run(t, `{"label":"alto","confidence":87,"reason":"clear"}`, "verdict")
	if err != nil {
		t.Fatalf("verdict: %v", err)
	}
	for _, want := range []string{`"label": "ALTO"`, `"confidence": 87`, `"angle": 160`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestAngle(t *testing.T) {
	cases := map[string]string{
		"alto":     "ALTO\t160",
		"muy bajo": "BAJO\t20",
		"???":      "MEDIO\t90",
	}
	for in, want := range cases {
		out, err := run(t, "", "angle", in)
		if err != nil {
			t.Fatalf("angle %q: %v", in, err)
		}
		if strings.TrimSpace(out) != want {
			t.Fatalf("angle %q = %q, want %q", in, out, want)
		}
	}
}

func TestFileAndStdinInputMatch(t *testing.T) {
	reply := "verdict:\n{\"label\":\"bajo\",\"confidence\":12}\n\n"
	path := filepath.Join(t.TempDir(), "reply.txt")
	if err := os.WriteFile(path, []byte(reply), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, sub := range []string{"extract", "verdict"} {
		fromFile, err := run(t, "", sub, path)
		if err != nil {
			t.Fatalf("%s file: %v", sub, err)
		}
		fromStdin, err := run(t, reply, sub, "-")
		if err != nil {
			t.Fatalf("%s stdin: %v", sub, err)
		}
		if fromFile != fromStdin {
			t.Fatalf("%s: file output %q differs from stdin output %q", sub, fromFile, fromStdin)
		}
	}
}

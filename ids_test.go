package logids

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scraperwall/logids/config"
)

const scenarioLog = `a 10.0.0.1 x
b 10.0.0.1 y
c 10.0.0.1 z
d 10.0.0.1
e 10.0.0.1
f 10.0.0.2
`

func newTestIDS(t *testing.T, c config.Config, opts ...Option) (*IDS, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	opts = append([]Option{
		WithOutput(&buf),
		WithClock(func() time.Time { return reportTime }),
	}, opts...)

	ids, err := New(&c, opts...)
	if err != nil {
		t.Fatalf("failed to create IDS: %s", err)
	}

	return ids, &buf
}

func writeLog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "access.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRun(t *testing.T) {
	c := config.Default()
	c.LogFile = writeLog(t, scenarioLog)

	ids, buf := newTestIDS(t, c)
	if err := ids.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := "=== Simple IDS Security Report ===\n" +
		"Generated at: 2024-03-05 14:07:09.123456\n" +
		"----------------------------------\n" +
		"⚠ Suspicious IP: 10.0.0.1 | Access count: 5\n"

	if got := buf.String(); got != want {
		t.Error(cmp.Diff(want, got))
	}
}

func TestRunEmptyFile(t *testing.T) {
	c := config.Default()
	c.LogFile = writeLog(t, "")

	ids, buf := newTestIDS(t, c)
	if err := ids.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(buf.String(), "No suspicious activity detected.\n") {
		t.Errorf("empty log should yield an empty report:\n%s", buf.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	c := config.Default()
	c.LogFile = filepath.Join(t.TempDir(), "sample_access.log")

	ids, buf := newTestIDS(t, c)
	if err := ids.Run(context.Background()); err != nil {
		t.Fatalf("a missing log file should not be an error: %s", err)
	}

	want := "Error: Log file '" + c.LogFile + "' not found.\n"
	if got := buf.String(); got != want {
		t.Error(cmp.Diff(want, got))
	}
}

func TestRunUnreadableFile(t *testing.T) {
	c := config.Default()
	// reading a directory fails after it has been opened
	c.LogFile = t.TempDir()

	ids, buf := newTestIDS(t, c)
	err := ids.Run(context.Background())
	if err == nil {
		t.Fatalf("expected an error when reading a directory")
	}

	if errors.Is(err, ErrLogFileNotFound) {
		t.Errorf("a read error must not be reported as a missing file: %s", err)
	}

	if buf.Len() != 0 {
		t.Errorf("no report should be written on a read error but got:\n%s", buf.String())
	}
}

func TestRunInvalidEncoding(t *testing.T) {
	c := config.Default()
	c.Threshold = 1
	c.LogFile = writeLog(t, "1.2.3.4 ok\n\xff\xfe 1.2.3.4\n")

	ids, buf := newTestIDS(t, c)
	err := ids.Run(context.Background())
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding but got %v", err)
	}

	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the offending line: %s", err)
	}

	if buf.Len() != 0 {
		t.Errorf("no report should be written for a badly encoded log but got:\n%s", buf.String())
	}
}

func TestRunWhitelist(t *testing.T) {
	c := config.Default()
	c.Threshold = 1
	c.LogFile = writeLog(t, scenarioLog)
	c.WhitelistTOML = writeTempFile(t, "logids-whitelist", "[[CIDR]]\nPattern = \"10.0.0.0/31\"\nDescription = \"office\"\n")

	ids, buf := newTestIDS(t, c)
	if err := ids.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "10.0.0.1") {
		t.Errorf("whitelisted 10.0.0.1 should not be reported:\n%s", buf.String())
	}

	if !strings.Contains(buf.String(), "⚠ Suspicious IP: 10.0.0.2 | Access count: 1") {
		t.Errorf("10.0.0.2 should be reported:\n%s", buf.String())
	}
}

func TestRunOrderAndResolver(t *testing.T) {
	c := config.Default()
	c.Threshold = 2
	c.Order = config.OrderCount
	c.LogFile = writeLog(t, "1.1.1.1\n2.2.2.2\n2.2.2.2\n1.1.1.1\n2.2.2.2\n")

	resolver := NewResolver(startDNSServer(t, "scanner.example.net."), time.Second)

	ids, buf := newTestIDS(t, c, WithResolver(resolver))
	if err := ids.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"⚠ Suspicious IP: 2.2.2.2 | Access count: 3",
		"⚠ Suspicious IP: 1.1.1.1 | Access count: 2",
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if got := lines[3:]; !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestAnalyzeSummary(t *testing.T) {
	c := config.Default()
	ids, _ := newTestIDS(t, c)

	lines := strings.Split(strings.TrimSuffix(scenarioLog, "\n"), "\n")
	lines = append(lines, "hello world")

	suspicious, summary := ids.Analyze(lines)

	if suspicious.Size() != 1 {
		t.Errorf("expected 1 suspicious address but got %d", suspicious.Size())
	}

	if summary.Lines != 7 || summary.Extracted != 6 || summary.Distinct != 2 || summary.Suspicious != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	c := config.Default()
	c.Threshold = 0

	if _, err := New(&c); err == nil {
		t.Errorf("expected an error for threshold 0")
	}

	c = config.Default()
	c.WhitelistTOML = "/nonexistent/whitelist.toml"

	if _, err := New(&c); err == nil {
		t.Errorf("expected an error for a missing whitelist")
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(writeLog(t, "one 1.2.3.4\ntwo\n\nfour"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"one 1.2.3.4", "two", "", "four"}
	if !cmp.Equal(want, lines) {
		t.Error(cmp.Diff(want, lines))
	}

	_, err = ReadLines(filepath.Join(t.TempDir(), "missing.log"))
	if !errors.Is(err, ErrLogFileNotFound) {
		t.Errorf("expected ErrLogFileNotFound but got %v", err)
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForComponent(name), buf
}

func TestPrefixInfo(t *testing.T) {
	SetGlobalDebug(false)

	const name = "prefix_component_test"
	l, buf := newTestLogger(t, name)

	l.Infof("indexing %d documents", 3)
	out := buf.String()

	if !strings.Contains(out, "["+name+"]") {
		t.Fatalf("expected prefix [%s] in output, got: %q", name, out)
	}
	if !strings.Contains(out, "indexing 3 documents") {
		t.Fatalf("expected message in output, got: %q", out)
	}
}

func TestDebugPerComponent(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_component_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	EnableDebugFor(name)
	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug message after enabling per-component debug; got: %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	const name = "debug_component_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("globally visible")
	if !strings.Contains(buf.String(), "globally visible") {
		t.Fatalf("expected debug message with global debug enabled; got: %q", buf.String())
	}
}

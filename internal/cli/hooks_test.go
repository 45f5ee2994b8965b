package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/observability"
)

func TestRegisterLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	registerLogHooks(newLogger(&buf, log.InfoLevel))
	if _, ok := observability.Layout().(logHooks); ok {
		t.Fatal("hooks registered at info level")
	}

	registerLogHooks(newLogger(&buf, log.DebugLevel))
	observability.Layout().OnApply("main", 3, nil)
	observability.Layout().OnApply("nav", 1, nil)
	observability.Layout().OnInverse("main", errors.New("boom"))
	observability.Cache().OnCacheHit(context.Background(), "resolve")

	out := buf.String()
	for _, want := range []string{"apply settled", "attempts=3", "move rejected", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "component=nav") {
		t.Error("single-attempt apply was logged")
	}
}

// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestAsyncHandlerDeliversThenDrains(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(slog.NewTextHandler(&buf, nil), 64)
	if !ah.Ready() {
		t.Fatal("handler must be ready")
	}
	lg := slog.New(ah)

	for i := 0; i < 10; i++ {
		lg.Info("draw served", "round", i)
	}
	ah.Close()

	out := buf.String()
	if strings.Count(out, "draw served") != 10 {
		t.Fatalf("expected 10 records after drain, got:\n%s", out)
	}
	if ah.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", ah.Dropped())
	}

	// Close 之後的 log 一律計入 dropped，不再寫出
	lg.Info("late record")
	if ah.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", ah.Dropped())
	}
	if strings.Contains(buf.String(), "late record") {
		t.Fatal("record after Close must not be written")
	}
}

func TestAsyncHandlerWithAttrsSharesDispatcher(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(slog.NewTextHandler(&buf, nil), 16)
	lg := slog.New(ah).With("svc", "randcore")

	lg.Warn("buffer low")
	ah.Close()

	out := buf.String()
	if !strings.Contains(out, "buffer low") || !strings.Contains(out, "svc=randcore") {
		t.Fatalf("derived logger output missing fields:\n%s", out)
	}
}

func TestNewAsyncModes(t *testing.T) {
	lg, ah := NewAsync(0, ModeSilence)
	if lg == nil || !ah.Ready() {
		t.Fatal("NewAsync must return a usable pair")
	}
	lg.Info("discarded anyway")
	ah.Close()

	if NewLogger(nil) == nil {
		t.Fatal("NewLogger(nil) must fall back to defaults")
	}
}

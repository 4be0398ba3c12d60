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

package lab

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/randcore/recorder"
	"github.com/zintix-labs/randcore/runcfg"
)

func TestRunSingleWorker(t *testing.T) {
	prof := &runcfg.RunProfile{Generator: "pcg64", Seed: 7, Rounds: 20000, Workers: 1, Buckets: 10}
	r, err := New(prof)
	if err != nil {
		t.Fatal(err)
	}
	if r.Seed() != 7 {
		t.Fatalf("seed = %d", r.Seed())
	}
	st, used, err := r.Run(prof.Rounds, false)
	if err != nil {
		t.Fatal(err)
	}
	if used <= 0 {
		t.Fatalf("elapsed time must be positive")
	}
	if st.Rounds != int64(prof.Rounds) {
		t.Fatalf("rounds = %d", st.Rounds)
	}
	if math.Abs(st.Mean-0.5) > 0.02 {
		t.Fatalf("uniform mean drifted: %v", st.Mean)
	}
	if st.Gof == nil {
		t.Fatalf("expected uniformity check in report")
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	prof := func() *runcfg.RunProfile {
		return &runcfg.RunProfile{Generator: "chacha8", Seed: 99, Rounds: 5000, Workers: 1, Buckets: 10}
	}
	a, err := New(prof())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(prof())
	if err != nil {
		t.Fatal(err)
	}
	ra, _, err := a.Run(5000, false)
	if err != nil {
		t.Fatal(err)
	}
	rb, _, err := b.Run(5000, false)
	if err != nil {
		t.Fatal(err)
	}
	if ra.Mean != rb.Mean || ra.Gof.Chi2 != rb.Gof.Chi2 {
		t.Fatalf("same profile produced different reports")
	}
}

func TestRunMPMergesWorkers(t *testing.T) {
	prof := &runcfg.RunProfile{Generator: "pcg64", Seed: 11, Rounds: 5000, Workers: 4, Buckets: 10}
	r, err := New(prof)
	if err != nil {
		t.Fatal(err)
	}
	st, _, err := r.RunMP(prof.Rounds, prof.Workers, false)
	if err != nil {
		t.Fatal(err)
	}
	if st.Rounds != int64(prof.Rounds*prof.Workers) {
		t.Fatalf("merged rounds = %d, want %d", st.Rounds, prof.Rounds*prof.Workers)
	}
	if math.Abs(st.Mean-0.5) > 0.02 {
		t.Fatalf("uniform mean drifted: %v", st.Mean)
	}

	if _, _, err := r.RunMP(0, 2, false); err == nil {
		t.Fatalf("expected error for zero rounds")
	}
	if _, _, err := r.RunMP(10, 0, false); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestRunnerRejectsBadProfile(t *testing.T) {
	if _, err := New(&runcfg.RunProfile{Generator: "pcg64", Rounds: 0}); err == nil {
		t.Fatalf("expected error for invalid profile")
	}
	if _, err := New(&runcfg.RunProfile{Generator: "unknown", Rounds: 10}); err == nil {
		t.Fatalf("expected error for unknown generator")
	}
}

func TestTraceWriteAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json.zst")
	prof := &runcfg.RunProfile{Generator: "pcg64", Seed: 31, Rounds: 10, Workers: 1, Buckets: 10, TracePath: path, TraceLen: 64}
	r, err := New(prof)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := r.Trace()
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Draws) != 64 {
		t.Fatalf("trace length = %d", len(tr.Draws))
	}
	back, err := recorder.LoadTrace(path)
	if err != nil {
		t.Fatal(err)
	}
	f, err := prof.Factory()
	if err != nil {
		t.Fatal(err)
	}
	if err := back.Verify(f.New(0)); err != nil {
		t.Fatalf("persisted trace failed replay: %v", err)
	}
}

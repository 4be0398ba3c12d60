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

package sampler

import (
	"math"
	"slices"
	"testing"

	"github.com/zintix-labs/randcore"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []float64, counts []int, tolerance float64) {
	t.Helper()
	totalW := 0.0
	for _, w := range weights {
		totalW += w
	}
	if totalW == 0 {
		return
	}
	totalSamples := 0
	for _, n := range counts {
		totalSamples += n
	}
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expectedProb := w / totalW
		actualProb := float64(counts[i]) / float64(totalSamples)
		diff := math.Abs(expectedProb - actualProb)
		if diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.3f, got %.3f (diff %.3f > tol %.3f)",
				name, i, expectedProb, actualProb, diff, tolerance)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests for AliasTable (float weights)
// -----------------------------------------------------------------------------

func TestAliasTableValidation(t *testing.T) {
	if _, err := NewAliasTable(nil); err == nil {
		t.Errorf("expected error for empty weights")
	}
	if _, err := NewAliasTable([]float64{1, -2, 3}); err == nil {
		t.Errorf("expected error for negative weight")
	}
	if _, err := NewAliasTable([]float64{1, math.NaN()}); err == nil {
		t.Errorf("expected error for NaN weight")
	}
	if _, err := NewAliasTable([]float64{1, math.Inf(1)}); err == nil {
		t.Errorf("expected error for +Inf weight")
	}
	if _, err := NewAliasTable([]float64{0, 0, 0}); err == nil {
		t.Errorf("expected error for all-zero weights")
	}
}

func TestAliasTableDistribution(t *testing.T) {
	c := randcore.New(randcore.Default().New(1))
	weights := []float64{0.5, 2.5, 0, 7.0}
	at, err := NewAliasTable(weights)
	if err != nil {
		t.Fatal(err)
	}
	if at.Len() != 4 {
		t.Fatalf("unexpected table size %d", at.Len())
	}
	counts := make([]int, at.Len())
	const trials = 100000
	for i := 0; i < trials; i++ {
		idx := at.Pick(c)
		if idx < 0 || idx >= at.Len() {
			t.Fatalf("pick out of range: %d", idx)
		}
		counts[idx]++
	}
	checkDistribution(t, "AliasTable", weights, counts, 0.01)
}

func TestAliasTableSingleWeight(t *testing.T) {
	c := randcore.New(randcore.Default().New(2))
	at, err := NewAliasTable([]float64{42})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if at.Pick(c) != 0 {
			t.Fatalf("single entry table must always pick 0")
		}
	}
}

func TestAliasTableRebuild(t *testing.T) {
	at, err := NewAliasTable([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	next := []float64{0.5, 2.5, 0, 7.0}
	if err := at.Rebuild(next); err != nil {
		t.Fatal(err)
	}

	// 重建後的表必須與直接用新權重建出來的表逐 draw 一致
	fresh, err := NewAliasTable(next)
	if err != nil {
		t.Fatal(err)
	}
	a := randcore.New(randcore.Default().New(7))
	b := randcore.New(randcore.Default().New(7))
	for i := 0; i < 2000; i++ {
		if got, want := at.Pick(a), fresh.Pick(b); got != want {
			t.Fatalf("draw %d: rebuilt table picked %d, fresh table picked %d", i, got, want)
		}
	}

	// 驗證失敗時舊表保持原狀
	if err := at.Rebuild([]float64{1, math.NaN()}); err == nil {
		t.Fatal("expected error for NaN weight")
	}
	if err := at.Rebuild(nil); err == nil {
		t.Fatal("expected error for empty weights")
	}
	if at.Len() != 4 {
		t.Fatalf("failed rebuild must not touch the table, len = %d", at.Len())
	}
	c := randcore.New(randcore.Default().New(9))
	counts := make([]int, at.Len())
	for i := 0; i < 100000; i++ {
		counts[at.Pick(c)]++
	}
	checkDistribution(t, "AliasTable.Rebuild", next, counts, 0.01)
}

// -----------------------------------------------------------------------------
// Tests for AliasInt (integer weights)
// -----------------------------------------------------------------------------

func TestAliasIntValidation(t *testing.T) {
	if _, err := NewAliasInt(nil); err == nil {
		t.Errorf("expected error for empty weights")
	}
	if _, err := NewAliasInt([]int{1, -2}); err == nil {
		t.Errorf("expected error for negative weight")
	}
	if _, err := NewAliasInt([]int{0, 0}); err == nil {
		t.Errorf("expected error for all-zero weights")
	}
}

func TestAliasIntDistribution(t *testing.T) {
	c := randcore.New(randcore.Default().New(3))
	weights := []int{1, 5, 0, 14}
	at, err := NewAliasInt(weights)
	if err != nil {
		t.Fatal(err)
	}
	counts := make([]int, len(weights))
	const trials = 100000
	for i := 0; i < trials; i++ {
		counts[at.Pick(c)]++
	}
	fw := make([]float64, len(weights))
	for i, w := range weights {
		fw[i] = float64(w)
	}
	checkDistribution(t, "AliasInt", fw, counts, 0.01)
}

// -----------------------------------------------------------------------------
// Tests for LUT
// -----------------------------------------------------------------------------

func TestBuildLUTValidation(t *testing.T) {
	if _, err := BuildLUT[int](nil); err == nil {
		t.Errorf("expected error for empty weights")
	}
	if _, err := BuildLUT([]int{1, -1}); err == nil {
		t.Errorf("expected error for negative weight")
	}
	if _, err := BuildLUT([]int{0, 0}); err == nil {
		t.Errorf("expected error for all-zero weights")
	}
	if _, err := BuildLUT([]int{1, int(maxLUTCap)}); err == nil {
		t.Errorf("expected error for oversized table")
	}
}

func TestLUTDistribution(t *testing.T) {
	c := randcore.New(randcore.Default().New(4))
	weights := []int{2, 0, 6, 2}
	lut, err := BuildLUT(weights)
	if err != nil {
		t.Fatal(err)
	}
	if len(lut) != 10 {
		t.Fatalf("unexpected lut size %d", len(lut))
	}
	counts := make([]int, len(weights))
	const trials = 100000
	for i := 0; i < trials; i++ {
		counts[lut.Pick(c)]++
	}
	fw := []float64{2, 0, 6, 2}
	checkDistribution(t, "LUT", fw, counts, 0.01)
}

// -----------------------------------------------------------------------------
// Tests for WeightedShuffle / WeightedSample
// -----------------------------------------------------------------------------

func TestWeightedShuffleBasic(t *testing.T) {
	c := randcore.New(randcore.Default().New(5))
	weights := []int{10, 90}
	trials := 10000
	firstIdxCount := 0
	for i := 0; i < trials; i++ {
		res := WeightedShuffle(c, weights)
		if len(res) != 2 {
			t.Fatalf("expected length 2, got %d", len(res))
		}
		if res[0] == 1 {
			firstIdxCount++
		}
	}
	rate := float64(firstIdxCount) / float64(trials)
	// 期望機率約為 0.90
	if rate < 0.85 || rate > 0.95 {
		t.Errorf("WeightedShuffle prob mismatch: expected ~0.90, got %.4f", rate)
	}
}

func TestWeightedShuffleZerosAtEnd(t *testing.T) {
	c := randcore.New(randcore.Default().New(6))
	weights := []int{0, 5, 0, 5}
	for i := 0; i < 100; i++ {
		res := WeightedShuffle(c, weights)
		last2 := []int{res[2], res[3]}
		slices.Sort(last2)
		if !slices.Equal(last2, []int{0, 2}) {
			t.Fatalf("zero-weight entries must sink to the end: %v", res)
		}
	}
}

func TestWeightedShuffleWithFilter(t *testing.T) {
	c := randcore.New(randcore.Default().New(7))
	weights := []int{0, 5, 0, 5}
	for i := 0; i < 100; i++ {
		res := WeightedShuffleWithFilter(c, weights)
		if len(res) != 2 {
			t.Fatalf("filter must drop zero weights: %v", res)
		}
		for _, idx := range res {
			if idx != 1 && idx != 3 {
				t.Fatalf("unexpected index %d", idx)
			}
		}
	}
}

func TestWeightedShufflePanicsOnNegative(t *testing.T) {
	c := randcore.New(randcore.Default().New(8))
	assertPanic(t, func() { WeightedShuffle(c, []int{1, -1}) }, "negative weight")
	assertPanic(t, func() { WeightedSample(c, []int{1, -1}, 1) }, "negative weight sample")
}

func TestWeightedSampleSubset(t *testing.T) {
	c := randcore.New(randcore.Default().New(9))
	weights := []int{1, 2, 3, 4, 5}
	for i := 0; i < 100; i++ {
		res := WeightedSample(c, weights, 3)
		if len(res) != 3 {
			t.Fatalf("expected 3 picks, got %d", len(res))
		}
		seen := map[int]bool{}
		for _, idx := range res {
			if idx < 0 || idx >= len(weights) {
				t.Fatalf("index out of range: %d", idx)
			}
			if seen[idx] {
				t.Fatalf("duplicate index %d in sample", idx)
			}
			seen[idx] = true
		}
	}
	// k 超過母體時回傳全部
	if res := WeightedSample(c, weights, 99); len(res) != len(weights) {
		t.Fatalf("oversized k must return the whole population, got %d", len(res))
	}
}

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

package randcore

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// -----------------------------------------------------------------------------
// Helper
// -----------------------------------------------------------------------------

// scriptRAND 依預先排好的值回放 Uint64/Uint32，用於驗證消耗行為。
type scriptRAND struct {
	vals []uint64
	i    int
}

func (s *scriptRAND) Uint64() uint64 {
	v := s.vals[s.i]
	s.i++
	return v
}
func (s *scriptRAND) Uint32() uint32      { return uint32(s.Uint64()) }
func (s *scriptRAND) Fill(p []byte)       {}
func (s *scriptRAND) Float64() float64    { return 0 }
func (s *scriptRAND) UintN(max uint) uint { return 0 }
func (s *scriptRAND) IntN(max int) int    { return -1 }

// -----------------------------------------------------------------------------
// Core
// -----------------------------------------------------------------------------

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestFactories(t *testing.T) {
	if _, ok := Default().New(1).(Restorable); !ok {
		t.Fatalf("default generator must be restorable")
	}
	if _, ok := Fast32().New(1).(Reseeder); !ok {
		t.Fatalf("fast32 generator must be reseedable")
	}
	// 非法輪數退回 20，工廠永不失敗
	if g := Cipher(5).New(1); g == nil {
		t.Fatalf("cipher factory returned nil")
	}
	a := Cipher(8).New(42)
	b := Cipher(8).New(42)
	for i := 0; i < 10; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("cipher factory not deterministic at %d", i)
		}
	}
}

func TestPickAndIndex(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	if got := c.PickIndex(0); got != -1 {
		t.Fatalf("expected -1 for empty index, got %d", got)
	}
	src := []int{10, 20, 30}
	for i := 0; i < 100; i++ {
		if v := c.Pick(src); v != 10 && v != 20 && v != 30 {
			t.Fatalf("Pick returned foreign value %d", v)
		}
		if idx := c.PickIndex(3); idx < 0 || idx > 2 {
			t.Fatalf("PickIndex out of range: %d", idx)
		}
	}
}

func TestFloatRanges(t *testing.T) {
	c := New(Default().New(11))
	sawNeg, sawPos := false, false
	for i := 0; i < 10000; i++ {
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
		if f := c.Float32(); f < 0 || f >= 1 {
			t.Fatalf("Float32 out of range: %v", f)
		}
		s := c.Float64Signed()
		if s <= -1 || s >= 1 {
			t.Fatalf("Float64Signed out of range: %v", s)
		}
		if s < 0 {
			sawNeg = true
		}
		if s > 0 {
			sawPos = true
		}
	}
	if !sawNeg || !sawPos {
		t.Fatalf("Float64Signed never changed sign")
	}
}

func TestBoolBalance(t *testing.T) {
	c := New(Default().New(13))
	trues := 0
	for i := 0; i < 10000; i++ {
		if c.Bool() {
			trues++
		}
	}
	if trues < 4500 || trues > 5500 {
		t.Fatalf("Bool heavily skewed: %d/10000", trues)
	}
}

// -----------------------------------------------------------------------------
// Bounded draws
// -----------------------------------------------------------------------------

func TestUint64NPowerOfTwoMasks(t *testing.T) {
	s := &scriptRAND{vals: []uint64{0xDEADBEEF}}
	if got := Uint64N(s, 16); got != 0xDEADBEEF&15 {
		t.Fatalf("pow2 mask path: got %d", got)
	}
	if s.i != 1 {
		t.Fatalf("pow2 path must consume exactly one draw, used %d", s.i)
	}
}

func TestUint64NRejectsBiasedLowProduct(t *testing.T) {
	// n=3: threshold = 2^64 mod 3 = 1。第一筆 0 的乘積低位 0 < 1 必須重抽。
	s := &scriptRAND{vals: []uint64{0, 1}}
	if got := Uint64N(s, 3); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
	if s.i != 2 {
		t.Fatalf("expected one rejection, consumed %d draws", s.i)
	}
}

func TestUintNBounds(t *testing.T) {
	c := New(Default().New(17))
	if Uint64N(c, 0) != 0 || Uint32N(c, 0) != 0 {
		t.Fatalf("n=0 must map to 0")
	}
	for i := 0; i < 5000; i++ {
		if v := Uint64N(c, 37); v >= 37 {
			t.Fatalf("Uint64N(37) out of range: %d", v)
		}
		if v := Uint32N(c, 37); v >= 37 {
			t.Fatalf("Uint32N(37) out of range: %d", v)
		}
	}
}

// -----------------------------------------------------------------------------
// Range
// -----------------------------------------------------------------------------

func TestRangeValidation(t *testing.T) {
	if _, err := NewRange(5, 5); err == nil {
		t.Fatalf("expected error for empty interval")
	}
	if _, err := NewRange(5, 1); err == nil {
		t.Fatalf("expected error for inverted interval")
	}
	if _, err := NewRangeInclusive(5, 4); err == nil {
		t.Fatalf("expected error for inverted inclusive interval")
	}
	if _, err := NewRangeInclusive(5, 5); err != nil {
		t.Fatalf("single point interval must be valid: %v", err)
	}
}

func TestRangeSignedDraws(t *testing.T) {
	c := New(Default().New(19))
	rg, err := NewRange[int8](-5, 5)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int8]bool{}
	for i := 0; i < 2000; i++ {
		v := rg.Draw(c)
		if v < -5 || v >= 5 {
			t.Fatalf("draw out of range: %d", v)
		}
		seen[v] = true
	}
	for v := int8(-5); v < 5; v++ {
		if !seen[v] {
			t.Fatalf("value %d never drawn", v)
		}
	}
}

func TestRangeInclusiveHitsHigh(t *testing.T) {
	c := New(Default().New(23))
	rg, err := NewRangeInclusive[uint8](250, 255)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[uint8]bool{}
	for i := 0; i < 2000; i++ {
		v := rg.Draw(c)
		if v < 250 {
			t.Fatalf("draw out of range: %d", v)
		}
		seen[v] = true
	}
	if !seen[255] {
		t.Fatalf("inclusive upper bound never drawn")
	}
}

func TestFullRangeSentinel(t *testing.T) {
	if rg := FullRange[uint64](); rg.Span() != 0 {
		t.Fatalf("uint64 full range must use the full-width sentinel, span %d", rg.Span())
	}
	if rg := FullRange[int64](); rg.Span() != 0 || rg.Low() != math.MinInt64 {
		t.Fatalf("int64 full range misconfigured: low %d span %d", rg.Low(), rg.Span())
	}
	if rg := FullRange[uint8](); rg.Span() != 256 || rg.Low() != 0 {
		t.Fatalf("uint8 full range misconfigured: low %d span %d", rg.Low(), rg.Span())
	}
	if rg := FullRange[int8](); rg.Span() != 256 || rg.Low() != -128 {
		t.Fatalf("int8 full range misconfigured: low %d span %d", rg.Low(), rg.Span())
	}

	// 閉區間跨滿域時，span 溢位回 0 正好等同哨兵
	rg, err := NewRangeInclusive[uint64](0, math.MaxUint64)
	if err != nil {
		t.Fatal(err)
	}
	if rg.Span() != 0 {
		t.Fatalf("full-domain inclusive range must collapse to sentinel, span %d", rg.Span())
	}

	c1 := New(Default().New(29))
	c2 := New(Default().New(29))
	if FullRange[uint64]().Draw(c1) != c2.Uint64() {
		t.Fatalf("full range draw must pass the raw word through")
	}
}

func TestFullRangeSignedCoversBothHalves(t *testing.T) {
	c := New(Default().New(31))
	rg := FullRange[int8]()
	neg, pos := false, false
	for i := 0; i < 1000; i++ {
		if v := rg.Draw(c); v < 0 {
			neg = true
		} else {
			pos = true
		}
	}
	if !neg || !pos {
		t.Fatalf("signed full range never crossed zero")
	}
}

// -----------------------------------------------------------------------------
// 128-bit / byte-level 取樣
// -----------------------------------------------------------------------------

func TestUint128NBounds(t *testing.T) {
	c := New(Default().New(37))
	if got := c.Uint128N(Uint128{}); !got.IsZero() {
		t.Fatalf("zero bound must map to zero")
	}
	// Hi == 0 走 64-bit 路徑
	for i := 0; i < 1000; i++ {
		got := c.Uint128N(Uint128{Lo: 5})
		if got.Hi != 0 || got.Lo >= 5 {
			t.Fatalf("Uint128N(5) out of range: %+v", got)
		}
	}
	// 2^64：結果的 Hi 必為 0
	for i := 0; i < 1000; i++ {
		got := c.Uint128N(Uint128{Hi: 1})
		if !got.Less(Uint128{Hi: 1}) {
			t.Fatalf("Uint128N(2^64) out of range: %+v", got)
		}
	}
	n := Uint128{Hi: 3, Lo: 0x1234}
	for i := 0; i < 1000; i++ {
		if got := c.Uint128N(n); !got.Less(n) {
			t.Fatalf("Uint128N out of range: %+v", got)
		}
	}
}

func TestUint128LessAndZero(t *testing.T) {
	if !(Uint128{Lo: 1}).Less(Uint128{Hi: 1}) {
		t.Fatalf("Less must compare Hi first")
	}
	if (Uint128{Hi: 1}).Less(Uint128{Hi: 1, Lo: 0}) {
		t.Fatalf("Less must be strict")
	}
	if !(Uint128{}).IsZero() || (Uint128{Lo: 1}).IsZero() {
		t.Fatalf("IsZero misbehaves")
	}
}

func TestBytesBelow(t *testing.T) {
	c := New(Default().New(41))
	if _, err := c.BytesBelow(nil); err == nil {
		t.Fatalf("expected error for empty bound")
	}
	if _, err := c.BytesBelow([]byte{0, 0, 0}); err == nil {
		t.Fatalf("expected error for zero bound")
	}
	bound := []byte{0x05, 0x00, 0x01} // little-endian 0x010005
	for i := 0; i < 500; i++ {
		got, err := c.BytesBelow(bound)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(bound) {
			t.Fatalf("result length %d, want %d", len(got), len(bound))
		}
		if !bytesLessLE(got, bound) {
			t.Fatalf("result %x not below bound %x", got, bound)
		}
	}
}

// -----------------------------------------------------------------------------
// Shuffle / Perm
// -----------------------------------------------------------------------------

func TestShufflePreservesElements(t *testing.T) {
	c := New(Default().New(43))
	src := []int{1, 2, 3, 4, 5}
	c.ShuffleInts(src)
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("shuffle changed elements: %v", src)
	}

	strs := []string{"a", "b", "c"}
	ShuffleSlice(c, strs)
	gs := slices.Clone(strs)
	slices.Sort(gs)
	if !slices.Equal(gs, []string{"a", "b", "c"}) {
		t.Fatalf("generic shuffle changed elements: %v", strs)
	}
}

func TestPermUniform(t *testing.T) {
	c := New(Default().New(47))
	counts := map[[4]int]int{}
	const trials = 24000
	for i := 0; i < trials; i++ {
		p := c.Perm(4)
		counts[[4]int{p[0], p[1], p[2], p[3]}]++
	}
	if len(counts) != 24 {
		t.Fatalf("expected all 24 permutations, got %d", len(counts))
	}
	for p, n := range counts {
		if n < 800 || n > 1200 {
			t.Fatalf("permutation %v count %d deviates from uniform", p, n)
		}
	}
}

func TestPartialShuffle(t *testing.T) {
	c := New(Default().New(53))
	src := []int{1, 2, 3, 4, 5, 6}
	picked, rest := PartialShuffle(c, slices.Clone(src), 2)
	if len(picked) != 2 || len(rest) != 4 {
		t.Fatalf("unexpected split: %d picked, %d rest", len(picked), len(rest))
	}
	all := append(slices.Clone(picked), rest...)
	slices.Sort(all)
	if !slices.Equal(all, src) {
		t.Fatalf("partial shuffle lost elements: %v %v", picked, rest)
	}

	// k 超界時夾住
	picked, rest = PartialShuffle(c, slices.Clone(src), 99)
	if len(picked) != 6 || len(rest) != 0 {
		t.Fatalf("k clamp failed: %d picked, %d rest", len(picked), len(rest))
	}
	picked, _ = PartialShuffle(c, slices.Clone(src), -1)
	if len(picked) != 0 {
		t.Fatalf("negative k must pick nothing")
	}
}

// -----------------------------------------------------------------------------
// Ziggurat
// -----------------------------------------------------------------------------

func TestNormFloat64Moments(t *testing.T) {
	c := New(Default().New(59))
	const n = 200000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := c.NormFloat64()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("invalid sample: %v", v)
		}
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if math.Abs(mean) > 0.02 {
		t.Fatalf("normal mean drifted: %v", mean)
	}
	if variance < 0.96 || variance > 1.04 {
		t.Fatalf("normal variance drifted: %v", variance)
	}
}

func TestExpFloat64Moments(t *testing.T) {
	c := New(Default().New(61))
	const n = 200000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := c.ExpFloat64()
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("invalid sample: %v", v)
		}
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if math.Abs(mean-1) > 0.02 {
		t.Fatalf("exponential mean drifted: %v", mean)
	}
	if variance < 0.93 || variance > 1.07 {
		t.Fatalf("exponential variance drifted: %v", variance)
	}
}

func TestZigguratDeterministic(t *testing.T) {
	a := New(Default().New(67))
	b := New(Default().New(67))
	for i := 0; i < 100; i++ {
		if a.NormFloat64() != b.NormFloat64() {
			t.Fatalf("NormFloat64 not deterministic at %d", i)
		}
	}
}

// -----------------------------------------------------------------------------
// Seeds
// -----------------------------------------------------------------------------

func TestNewSeed(t *testing.T) {
	s, err := NewSeed()
	if err != nil {
		t.Fatal(err)
	}
	if s < 0 {
		t.Fatalf("seed must be non-negative, got %d", s)
	}
}

func TestSeedMakerSequence(t *testing.T) {
	a := NewSeedMaker(12345)
	b := NewSeedMaker(12345)
	seen := map[int64]bool{}
	for i := 0; i < 10000; i++ {
		v := a.Next()
		if v != b.Next() {
			t.Fatalf("same seed makers diverged at %d", i)
		}
		if v < 0 {
			t.Fatalf("derived seed must be non-negative, got %d", v)
		}
		if seen[v] {
			t.Fatalf("derived seed repeated at %d", i)
		}
		seen[v] = true
	}
}

func TestSeedMakerDerivedStreamsDiffer(t *testing.T) {
	m := NewSeedMaker(777)
	a := New(Default().New(m.Next()))
	b := New(Default().New(m.Next()))
	same := 0
	for i := 0; i < 64; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 64 {
		t.Fatalf("derived seeds produced identical generator streams")
	}
}

func TestCoreFeedsGonumDistributions(t *testing.T) {
	g := New(Default().New(71))
	n := distuv.Normal{Mu: 3, Sigma: 2, Src: g}
	const trials = 50_000
	var sum, sumSq float64
	for i := 0; i < trials; i++ {
		v := n.Rand()
		sum += v
		sumSq += v * v
	}
	mean := sum / trials
	variance := sumSq/trials - mean*mean
	if math.Abs(mean-3) > 0.05 {
		t.Fatalf("mean drifted: got %v, want ~3", mean)
	}
	if variance < 3.7 || variance > 4.3 {
		t.Fatalf("variance drifted: got %v, want ~4", variance)
	}
}

func TestSampleKWithoutReplacement(t *testing.T) {
	g := New(Default().New(31))
	src := make([]int, 40)
	for i := range src {
		src[i] = i
	}
	before := slices.Clone(src)

	got := SampleK(g, src, 12)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if !slices.Equal(src, before) {
		t.Fatal("SampleK must not mutate its input")
	}
	seen := map[int]bool{}
	for _, v := range got {
		if v < 0 || v >= 40 {
			t.Fatalf("value %d out of population", v)
		}
		if seen[v] {
			t.Fatalf("duplicate pick %d", v)
		}
		seen[v] = true
	}

	if n := len(SampleK(g, src, 99)); n != 40 {
		t.Fatalf("oversized k must clamp to population, got %d", n)
	}
	if n := len(SampleK(g, src, -3)); n != 0 {
		t.Fatalf("negative k must clamp to zero, got %d", n)
	}
}

func TestSampleKUniform(t *testing.T) {
	g := New(Default().New(123))
	src := []int{0, 1, 2, 3, 4}
	const trials = 50_000
	counts := make([]int, len(src))
	for i := 0; i < trials; i++ {
		for _, v := range SampleK(g, src, 2) {
			counts[v]++
		}
	}
	// 每個元素被抽中的機率是 k/n = 0.4
	want := trials * 2 / len(src)
	for v, n := range counts {
		if n < want-600 || n > want+600 {
			t.Fatalf("element %d picked %d times, want ~%d", v, n, want)
		}
	}
}

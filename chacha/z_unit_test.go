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

package chacha

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/chacha20"
)

// 全零 key / stream / counter 下 ChaCha20 的第一個 keystream block
// （D. J. Bernstein 發表的參考向量）。
const zeroKeyBlock20 = "76b8e0ada0f13d90405d6ae55386bd28" +
	"bdd219b8a08ded1aa836efcc8b770dc7" +
	"da41597c5157488d7724e03fb8d84a37" +
	"6a43b8f41518a11cc387b669b2ee6586"

func TestChaCha20ZeroKeyVector(t *testing.T) {
	seed := make([]byte, SeedSize)
	c, err := New(20, seed)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 64)
	c.Fill(got)
	want, err := hex.DecodeString(zeroKeyBlock20)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("keystream mismatch:\n got %x\nwant %x", got, want)
	}
}

// 與 x/crypto 的 ChaCha20 對拍：本套件的 64-bit counter + 64-bit stream 佈局，
// 在 counter 高 32 bits 為零時等價於 IETF 佈局的
// nonce = LE32(counter_hi) || LE64(stream)。
func TestKeystreamMatchesXCrypto(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i*7 + 3)
	}
	c, err := New(20, seed)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 256)
	c.Fill(got)

	nonce := make([]byte, chacha20.NonceSize)
	copy(nonce[4:], seed[32:])
	ref, err := chacha20.NewUnauthenticatedCipher(seed[:32], nonce)
	if err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 256)
	ref.XORKeyStream(want, want)
	if !bytes.Equal(got, want) {
		t.Fatalf("keystream diverges from x/crypto reference")
	}
}

func TestNewRejectsBadArgs(t *testing.T) {
	seed := make([]byte, SeedSize)
	if _, err := New(10, seed); err == nil {
		t.Fatalf("expected error for rounds=10")
	}
	if _, err := New(20, seed[:39]); err == nil {
		t.Fatalf("expected error for short seed")
	}
	for _, r := range []int{8, 12, 20} {
		c, err := New(r, seed)
		if err != nil {
			t.Fatalf("rounds=%d: %v", r, err)
		}
		if c.Rounds() != r {
			t.Fatalf("rounds=%d: got %d", r, c.Rounds())
		}
	}
}

func TestNewWithSeedDeterminism(t *testing.T) {
	c1 := NewWithSeed(12, 77)
	c2 := NewWithSeed(12, 77)
	for i := 0; i < 64; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
	c3 := NewWithSeed(12, 78)
	if c3.Uint64() == NewWithSeed(12, 77).Uint64() {
		t.Fatalf("different seeds produced identical first output")
	}
	// 非法輪數退回 20
	if got := NewWithSeed(7, 1).Rounds(); got != 20 {
		t.Fatalf("expected fallback to 20 rounds, got %d", got)
	}
}

func TestRoundsChangeOutput(t *testing.T) {
	seed := make([]byte, SeedSize)
	seed[0] = 1
	a, _ := New(8, seed)
	b, _ := New(20, seed)
	if a.Uint64() == b.Uint64() {
		t.Fatalf("8 and 20 rounds produced identical output")
	}
}

func TestUint64WordOrder(t *testing.T) {
	seed := make([]byte, SeedSize)
	seed[5] = 9
	a, _ := New(20, seed)
	b, _ := New(20, seed)
	lo := uint64(a.Uint32())
	hi := uint64(a.Uint32())
	if got := b.Uint64(); got != hi<<32|lo {
		t.Fatalf("Uint64 word order mismatch: got %x want %x", got, hi<<32|lo)
	}
}

func TestFillEqualsWordStream(t *testing.T) {
	seed := make([]byte, SeedSize)
	seed[31] = 0xAA
	a, _ := New(20, seed)
	b, _ := New(20, seed)

	// 跨 block 且帶截斷的長度
	got := make([]byte, 70)
	a.Fill(got)

	want := make([]byte, 72)
	for i := 0; i < 18; i++ {
		binary.LittleEndian.PutUint32(want[i*4:], b.Uint32())
	}
	if !bytes.Equal(got, want[:70]) {
		t.Fatalf("Fill diverges from word stream")
	}
}

func TestReseedMatchesFresh(t *testing.T) {
	s1 := make([]byte, SeedSize)
	s2 := make([]byte, SeedSize)
	for i := range s2 {
		s2[i] = byte(255 - i)
	}
	c, _ := New(12, s1)
	for i := 0; i < 37; i++ {
		c.Uint32() // 走到 block 中段
	}
	if err := c.Reseed(s2); err != nil {
		t.Fatal(err)
	}
	fresh, _ := New(12, s2)
	for i := 0; i < 40; i++ {
		if c.Uint64() != fresh.Uint64() {
			t.Fatalf("reseeded output diverges from fresh instance at %d", i)
		}
	}
	if err := c.Reseed(s2[:10]); err == nil {
		t.Fatalf("expected error for short reseed")
	}
}

func TestSnapshotRestoreMidBlock(t *testing.T) {
	c := NewWithSeed(20, 5)
	for i := 0; i < 13; i++ {
		c.Uint32()
	}
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	want := make([]uint64, 32)
	for i := range want {
		want[i] = c.Uint64()
	}

	r := NewWithSeed(20, 999)
	if err := r.Restore(snap); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got := r.Uint64(); got != want[i] {
			t.Fatalf("restored stream diverges at %d: got %x want %x", i, got, want[i])
		}
	}
}

func TestRestoreRejectsCorrupt(t *testing.T) {
	c := NewWithSeed(20, 1)
	snap, _ := c.Snapshot()

	if err := c.Restore(snap[:len(snap)-1]); err == nil {
		t.Fatalf("expected error for truncated snapshot")
	}
	bad := bytes.Clone(snap)
	bad[0] = 9 // 非法輪數
	if err := c.Restore(bad); err == nil {
		t.Fatalf("expected error for invalid rounds")
	}
	bad = bytes.Clone(snap)
	bad[1] = 17 // 游標超界
	if err := c.Restore(bad); err == nil {
		t.Fatalf("expected error for invalid cursor")
	}
}

func TestBoundedDraws(t *testing.T) {
	c := NewWithSeed(8, 321)
	if got := c.UintN(0); got != 0 {
		t.Fatalf("UintN(0) = %d", got)
	}
	if got := c.IntN(0); got != -1 {
		t.Fatalf("IntN(0) = %d", got)
	}
	if got := c.IntN(-3); got != -1 {
		t.Fatalf("IntN(-3) = %d", got)
	}
	for i := 0; i < 1000; i++ {
		if v := c.IntN(7); v < 0 || v >= 7 {
			t.Fatalf("IntN(7) out of range: %d", v)
		}
		if v := c.UintN(16); v >= 16 {
			t.Fatalf("UintN(16) out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
}

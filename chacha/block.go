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

import "math/bits"

// ChaCha block function（D. J. Bernstein 發表的原始構造）。
//
// 16-word 初始狀態佈局：
//
//	 0.. 3 : 常數 "expand 32-byte k"
//	 4..11 : 256-bit key（little-endian words）
//	12..13 : 64-bit block counter
//	14..15 : 64-bit stream id（nonce）
//
// 每一輪由 4 個 column quarter-round 與 4 個 diagonal quarter-round 組成；
// 8/12/20 輪只差迭代次數，混合原語完全相同。
// 最後把工作陣列加回初始狀態，輸出 64-byte block。

var chachaConst = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// quarterRound 是唯一的混合原語（add-rotate-xor）。
func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d = bits.RotateLeft32(d^a, 16)
	c += d
	b = bits.RotateLeft32(b^c, 12)
	a += b
	d = bits.RotateLeft32(d^a, 8)
	c += d
	b = bits.RotateLeft32(b^c, 7)
	return a, b, c, d
}

// block 以目前的 key/stream 與給定 counter 產出一個 64-byte block（16 words）。
//
// block 是純函數：不動 ChaCha 的游標狀態，counter 推進由呼叫端（refill）負責。
func (c *ChaCha) block(counter uint64, dst *[16]uint32) {
	var s [16]uint32
	s[0], s[1], s[2], s[3] = chachaConst[0], chachaConst[1], chachaConst[2], chachaConst[3]
	copy(s[4:12], c.key[:])
	s[12] = uint32(counter)
	s[13] = uint32(counter >> 32)
	s[14] = uint32(c.stream)
	s[15] = uint32(c.stream >> 32)

	x := s
	for i := 0; i < c.rounds; i += 2 {
		// column rounds
		x[0], x[4], x[8], x[12] = quarterRound(x[0], x[4], x[8], x[12])
		x[1], x[5], x[9], x[13] = quarterRound(x[1], x[5], x[9], x[13])
		x[2], x[6], x[10], x[14] = quarterRound(x[2], x[6], x[10], x[14])
		x[3], x[7], x[11], x[15] = quarterRound(x[3], x[7], x[11], x[15])
		// diagonal rounds
		x[0], x[5], x[10], x[15] = quarterRound(x[0], x[5], x[10], x[15])
		x[1], x[6], x[11], x[12] = quarterRound(x[1], x[6], x[11], x[12])
		x[2], x[7], x[8], x[13] = quarterRound(x[2], x[7], x[8], x[13])
		x[3], x[4], x[9], x[14] = quarterRound(x[3], x[4], x[9], x[14])
	}

	for i := 0; i < 16; i++ {
		dst[i] = x[i] + s[i]
	}
}

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

package recorder

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
)

// Trace 是可回放的 draw 軌跡：起點快照加上其後的輸出序列。
//
// 審計場景：跑批時擷取 Trace 存檔，事後用同版本的程式 Verify，
// 任何一筆對不上就代表產生器狀態序列化或演算法被改壞。
type Trace struct {
	Name  string   `json:"Name"`
	Snap  []byte   `json:"Snap"`
	Draws []uint64 `json:"Draws"`
}

// CaptureTrace 對 g 拍快照後抽 n 筆 Uint64 作為軌跡。
// 擷取會推進 g 的狀態。
func CaptureTrace(name string, g randcore.PRNG, n int) (*Trace, error) {
	if n <= 0 {
		return nil, errs.Warnf("trace: draw count must be > 0 (got %d)", n)
	}
	snap, err := g.Snapshot()
	if err != nil {
		return nil, errs.Wrap(err, "trace: snapshot failed")
	}
	draws := make([]uint64, n)
	for i := range draws {
		draws[i] = g.Uint64()
	}
	return &Trace{Name: name, Snap: snap, Draws: draws}, nil
}

// Verify 把 g 還原到軌跡起點並重抽，逐筆比對。
// 驗證成功後 g 停在軌跡終點狀態。
func (t *Trace) Verify(g randcore.PRNG) error {
	if err := g.Restore(t.Snap); err != nil {
		return errs.Wrap(err, "trace: restore failed")
	}
	for i, want := range t.Draws {
		if got := g.Uint64(); got != want {
			return errs.Fatalf("trace %q: draw %d mismatch: got %d want %d", t.Name, i, got, want)
		}
	}
	return nil
}

// SaveTrace 將軌跡存為 zstd 壓縮的 JSON 檔。
func SaveTrace(path string, t *Trace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(err, "trace: mkdir failed")
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "trace: create file failed")
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return errs.Wrap(err, "trace: create zstd writer")
	}
	if err := json.NewEncoder(zw).Encode(t); err != nil {
		zw.Close()
		return errs.Wrap(err, "trace: encode failed")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "trace: close zstd writer")
	}
	return f.Sync()
}

// LoadTrace 讀回 SaveTrace 的產物。
func LoadTrace(path string) (*Trace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "trace: read file failed")
	}
	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(err, "trace: create zstd reader")
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, errs.Wrap(err, "trace: read decompressed data failed")
	}
	t := new(Trace)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errs.Wrap(err, "trace: decode failed")
	}
	return t, nil
}

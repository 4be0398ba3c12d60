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

package svrcfg

import (
	"testing"
)

func TestVaildFillsDefaults(t *testing.T) {
	cfg := &SvrCfg{}
	if err := cfg.Vaild(); err != nil {
		t.Fatal(err)
	}
	if cfg.Log == nil {
		t.Fatal("expected default logger")
	}
	if cfg.Factory == nil {
		t.Fatal("expected default factory")
	}
	if cfg.Seeds == nil {
		t.Fatal("expected default seed maker")
	}
	// 未設定的上限要拿到可用的預設，而不是被夾成 1
	if cfg.MaxDraws != 10_000 {
		t.Fatalf("MaxDraws = %d, want 10000", cfg.MaxDraws)
	}
	if cfg.MaxRounds != 10_000_000 {
		t.Fatalf("MaxRounds = %d, want 10000000", cfg.MaxRounds)
	}
}

func TestVaildClampsLimits(t *testing.T) {
	cfg := &SvrCfg{MaxDraws: 999_999, MaxRounds: 999_999_999}
	if err := cfg.Vaild(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDraws != 100_000 {
		t.Fatalf("MaxDraws = %d, want 100000", cfg.MaxDraws)
	}
	if cfg.MaxRounds != 100_000_000 {
		t.Fatalf("MaxRounds = %d, want 100000000", cfg.MaxRounds)
	}

	cfg = &SvrCfg{MaxDraws: 50, MaxRounds: 1000}
	if err := cfg.Vaild(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDraws != 50 || cfg.MaxRounds != 1000 {
		t.Fatalf("explicit limits must survive: %d / %d", cfg.MaxDraws, cfg.MaxRounds)
	}
}

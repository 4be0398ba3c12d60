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

// Package runcfg 定義跑批設定檔（YAML）與其驗證。
package runcfg

import (
	"io/fs"
	"os"
	"strings"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
	"gopkg.in/yaml.v3"
)

// RunProfile 是一次品質跑批所需的全部設定。
type RunProfile struct {
	Name      string `yaml:"name"       json:"name"`
	Generator string `yaml:"generator"  json:"generator"` // pcg64 / pcg32 / chacha8 / chacha12 / chacha20
	Seed      int64  `yaml:"seed"       json:"seed"`      // 0 = 啟動時由熵源自產
	Rounds    int    `yaml:"rounds"     json:"rounds"`    // 每個 worker 的 draw 數
	Workers   int    `yaml:"workers"    json:"workers"`
	Buckets   int    `yaml:"buckets"    json:"buckets"`    // 均勻性檢定分桶數
	TracePath string `yaml:"trace_path" json:"trace_path"` // 空字串 = 不存軌跡
	TraceLen  int    `yaml:"trace_len"  json:"trace_len"`
}

// Load 讀取並驗證設定檔。
func Load(path string) (*RunProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "runcfg: read file failed")
	}
	return Parse(raw)
}

// LoadFS 自 fs.FS 讀取並驗證設定檔（embed 的設定走這裡）。
func LoadFS(fsys fs.FS, name string) (*RunProfile, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.Wrap(err, "runcfg: read file failed")
	}
	return Parse(raw)
}

// Parse 解析 YAML 並套用預設值與驗證。
func Parse(raw []byte) (*RunProfile, error) {
	p := new(RunProfile)
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, errs.Wrap(err, "runcfg: yaml unmarshal failed")
	}
	if err := p.Valid(); err != nil {
		return nil, err
	}
	return p, nil
}

// Valid 驗證設定並補預設值。
func (p *RunProfile) Valid() error {
	if p.Name == "" {
		p.Name = p.Generator
	}
	if p.Name == "" {
		p.Name = "pcg64" // generator 留空時的預設名稱
	}
	if p.Rounds < 1 {
		return errs.Warnf("runcfg: rounds must be >= 1 (got %d)", p.Rounds)
	}
	// 1 <= workers <= 256
	p.Workers = max(1, p.Workers)
	p.Workers = min(256, p.Workers)
	if p.Buckets == 0 {
		p.Buckets = 100
	}
	if p.Buckets < 2 {
		return errs.Warnf("runcfg: buckets must be >= 2 (got %d)", p.Buckets)
	}
	if p.TracePath != "" && p.TraceLen < 1 {
		return errs.NewWarn("runcfg: trace_len must be >= 1 when trace_path is set")
	}
	if _, err := p.Factory(); err != nil {
		return err
	}
	return nil
}

// Factory 依 generator 名稱回傳對應工廠。
func (p *RunProfile) Factory() (randcore.PRNGFactory, error) {
	return FactoryByName(p.Generator)
}

// FactoryByName 是 generator 名稱到工廠的對照表（空字串 = 預設 PCG64）。
func FactoryByName(name string) (randcore.PRNGFactory, error) {
	switch strings.ToLower(name) {
	case "", "pcg64":
		return randcore.Default(), nil
	case "pcg32":
		return randcore.Fast32(), nil
	case "chacha8":
		return randcore.Cipher(8), nil
	case "chacha12":
		return randcore.Cipher(12), nil
	case "chacha20":
		return randcore.Cipher(20), nil
	default:
		return nil, errs.Warnf("runcfg: unknown generator %q", name)
	}
}

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
	"log/slog"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/server/logger"
)

// SvrCfg 是 server 組裝所需的全部依賴。
type SvrCfg struct {
	Log       *slog.Logger
	Factory   randcore.PRNGFactory // 預設產生器工廠
	Seeds     *randcore.SeedMaker  // 每個請求派生獨立 seed
	MaxDraws  int                  // 單一請求可要求的 draw 上限
	MaxRounds int                  // 單一跑批請求的 round 上限
}

// Vaild 驗證依賴並補預設值。
func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	if sc.Factory == nil {
		sc.Factory = randcore.Default()
	}

	if sc.Seeds == nil {
		seed, err := randcore.NewSeed()
		if err != nil {
			return errs.Wrap(err, "svrcfg: entropy seed failed")
		}
		sc.Seeds = randcore.NewSeedMaker(seed)
	}

	// 1 <= MaxDraws <= 100_000，未設定時給 10_000
	if sc.MaxDraws < 1 {
		sc.MaxDraws = 10_000
	}
	sc.MaxDraws = min(100_000, sc.MaxDraws)

	// 1 <= MaxRounds <= 100_000_000
	if sc.MaxRounds < 1 {
		sc.MaxRounds = 10_000_000
	}
	sc.MaxRounds = min(100_000_000, sc.MaxRounds)

	return nil
}

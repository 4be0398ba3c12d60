package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/lab"
	"github.com/zintix-labs/randcore/runcfg"
	"github.com/zintix-labs/randcore/server/httperr"
	"github.com/zintix-labs/randcore/server/svrcfg"
	"github.com/zintix-labs/randcore/stats"
)

type RunHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewRunHandler(sCfg *svrcfg.SvrCfg) (*RunHandler, error) {
	if sCfg == nil {
		return nil, errs.NewWarn("svrcfg is nil")
	}
	return &RunHandler{cfg: sCfg}, nil
}

// Run 依 RunProfile 平行取樣並回傳合併後的統計報表。
func (rh *RunHandler) Run(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type RunResponse struct {
		Seed     int64            `json:"seed"`
		Report   *stats.GenReport `json:"report"`
		UsedTime int64            `json:"used_ms"`
	}
	// ---
	if q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prof := new(runcfg.RunProfile)
	if err := json.NewDecoder(q.Body).Decode(prof); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}
	if err := prof.Valid(); err != nil {
		httperr.Errs(w, err)
		return
	}
	// 除法形式避免 rounds*workers 溢位繞過上限
	if prof.Rounds > rh.cfg.MaxRounds/prof.Workers {
		httperr.Errs(w, errs.Warnf("rounds*workers must <= %d", rh.cfg.MaxRounds))
		return
	}
	runner, err := lab.New(prof)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build runner err"))
		return
	}
	report, used, err := runner.RunMP(prof.Rounds, prof.Workers, false)
	if err != nil {
		// 這裡的錯誤來自 runner 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "run err"))
		return
	}
	resp := RunResponse{
		Seed:     runner.Seed(),
		Report:   report,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

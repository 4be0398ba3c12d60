package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/randcore/errs"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// Moments 以 Welford 單遍演算法累積樣本動差。
//
// 熱路徑只做加法與一次除法，不保存樣本本身，
// 因此可以吃下上億筆 draw 而記憶體固定。
type Moments struct {
	n    int64
	mean float64
	m2   float64
	min  float64
	max  float64
}

// Add 累積一筆樣本。
func (m *Moments) Add(x float64) {
	m.n++
	if m.n == 1 {
		m.min, m.max = x, x
	} else {
		if x < m.min {
			m.min = x
		}
		if x > m.max {
			m.max = x
		}
	}
	d := x - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (x - m.mean) // 注意：第二項用的是「更新後」的 mean，這是 Welford 的關鍵
}

// Merge 合併另一個累積器（平行 worker 各自累積後歸併）。
//
// 使用 Chan 等人的平行合併公式，數值上等價於把兩邊樣本串起來重算。
func (m *Moments) Merge(o *Moments) {
	if o.n == 0 {
		return
	}
	if m.n == 0 {
		*m = *o
		return
	}
	n1, n2 := float64(m.n), float64(o.n)
	d := o.mean - m.mean
	tot := n1 + n2
	m.m2 += o.m2 + d*d*n1*n2/tot
	m.mean += d * n2 / tot
	m.n += o.n
	if o.min < m.min {
		m.min = o.min
	}
	if o.max > m.max {
		m.max = o.max
	}
}

// N 回傳樣本數。
func (m *Moments) N() int64 { return m.n }

// Mean 回傳樣本平均。
func (m *Moments) Mean() float64 { return m.mean }

// Variance 回傳樣本變異數（n-1 分母），樣本不足回傳 0。
func (m *Moments) Variance() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

// Std 回傳樣本標準差。
func (m *Moments) Std() float64 { return math.Sqrt(m.Variance()) }

// Min 回傳樣本最小值。
func (m *Moments) Min() float64 { return m.min }

// Max 回傳樣本最大值。
func (m *Moments) Max() float64 { return m.max }

// MeanCI 回傳樣本平均的 95% 信賴區間。
func (m *Moments) MeanCI() CI {
	if m.n < 2 {
		return CI{Lo: m.mean, Hi: m.mean}
	}
	se := m.Std() / math.Sqrt(float64(m.n))
	return CI{
		Lo: m.mean - 1.96*se,
		Hi: m.mean + 1.96*se,
	}
}

// Freq 是離散結果的落點計數器（等寬分桶）。
type Freq struct {
	counts []int64
	total  int64
	oob    int64 // 超出 [0,k) 的離群筆數，GOF 時視為資料錯誤
}

// NewFreq 建立 k 桶計數器，k < 1 回傳 errs.Warn。
func NewFreq(k int) (*Freq, error) {
	if k < 1 {
		return nil, errs.Warnf("freq: bucket count must be >= 1 (got %d)", k)
	}
	return &Freq{counts: make([]int64, k)}, nil
}

// Observe 紀錄一筆落點，超出範圍的落點另計不入桶。
func (f *Freq) Observe(i int) {
	if i < 0 || i >= len(f.counts) {
		f.oob++
		return
	}
	f.counts[i]++
	f.total++
}

// Merge 合併另一個計數器，桶數不一致回傳 errs.Warn。
func (f *Freq) Merge(o *Freq) error {
	if len(o.counts) != len(f.counts) {
		return errs.Warnf("freq: bucket count mismatch (%d vs %d)", len(f.counts), len(o.counts))
	}
	for i, c := range o.counts {
		f.counts[i] += c
	}
	f.total += o.total
	f.oob += o.oob
	return nil
}

// Counts 回傳各桶計數（直接共用內部 slice，呼叫端不得修改）。
func (f *Freq) Counts() []int64 { return f.counts }

// Total 回傳入桶總筆數。
func (f *Freq) Total() int64 { return f.total }

// OutOfBounds 回傳離群筆數。
func (f *Freq) OutOfBounds() int64 { return f.oob }

// GenReport 單一產生器跑批的品質報告
type GenReport struct {
	Name   string   `json:"Name"`
	Rounds int64    `json:"Rounds"`
	Mean   float64  `json:"Mean"`
	MeanCI CI       `json:"MeanCI"`
	Std    float64  `json:"Std"`
	Min    float64  `json:"Min"`
	Max    float64  `json:"Max"`
	Gof    *GofStat `json:"Gof,omitempty"`
}

// BuildReport 由累積器組出報告，gof 可為 nil（未做分布檢定）。
func BuildReport(name string, m *Moments, gof *GofStat) *GenReport {
	return &GenReport{
		Name:   name,
		Rounds: m.N(),
		Mean:   m.Mean(),
		MeanCI: m.MeanCI(),
		Std:    m.Std(),
		Min:    m.Min(),
		Max:    m.Max(),
		Gof:    gof,
	}
}

func (r *GenReport) WriteWith(w io.Writer, rep GenReportRender) error {
	return rep.Write(w, r)
}

func (r *GenReport) StdOut(ut time.Duration) {
	formatDuration(ut, r.Rounds)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Name, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, draws int64) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

// StdOut

func (r *GenReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Generator":   p.Sprintf("%s", r.Name),
		"Total Draws": p.Sprintf("%d", r.Rounds),
		"Mean":        p.Sprintf("%.6f", r.Mean),
		"Mean 95% CI": p.Sprintf("[%.6f,%.6f]", r.MeanCI.Lo, r.MeanCI.Hi),
		"STD":         p.Sprintf("%.6f", r.Std),
		"Min":         p.Sprintf("%.6f", r.Min),
		"Max":         p.Sprintf("%.6f", r.Max),
	}
	keys := []string{"Generator", "Total Draws", "Mean", "Mean 95% CI", "STD", "Min", "Max"}
	if r.Gof != nil {
		basic["Chi2"] = p.Sprintf("%.3f", r.Gof.Chi2)
		basic["Chi2 df"] = p.Sprintf("%d", r.Gof.Df)
		basic["P-Value"] = p.Sprintf("%.4f", r.Gof.PValue)
		keys = append(keys, "Chi2", "Chi2 df", "P-Value")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

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

// Package logger 組裝 slog 並提供非阻塞的 AsyncHandler。
//
// 兩種注入方式：
//   - NewDefaultLogger / NewAsync：依 LogMode 用預設組裝，最常用。
//   - NewLogger(h)：呼叫者自行組裝 slog.Handler（JSON/Text/ReplaceAttr...）再包裝。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// LogMode 決定輸出格式與去向。
type LogMode uint8

const (
	ModeDev     LogMode = iota // Text + stderr，Debug 以上
	ModeProd                   // JSON + stdout，Info 以上
	ModeSilence                // 全部丟棄
)

// NewDefaultLogger 依 LogMode 預設組裝一個同步 *slog.Logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewDefaultAsyncLogger 依 LogMode 預設組裝一個非阻塞 *slog.Logger。
func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger 把呼叫者自組的 Handler 包成 *slog.Logger，nil 時退回 Dev 預設。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// AsyncHandler 把任何 slog.Handler 變成非阻塞版本：
// Handle 只做 enqueue，背景 goroutine 逐筆寫出，
// 隊列滿時直接丟棄，不把 I/O 延遲傳回請求路徑。
//
// slog.Logger 本來就忽略 Handle 的回傳 error；
// 要處理 I/O error 的話在 next handler 內自行包裝。
type AsyncHandler struct {
	next slog.Handler
	disp *dispatcher
}

type dispatcher struct {
	queue  chan entry
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	// 因隊列滿而丟棄的筆數，供觀測用
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler 用背景 dispatcher 包裝 next。
// buf 是隊列長度：越大越不容易丟 log，但記憶體與關閉時的 drain 時間也越長。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}

	d := &dispatcher{
		queue:  make(chan entry, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()

	return &AsyncHandler{next: next, disp: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.disp != nil
}

// Dropped 回傳因隊列滿而被丟棄的 log 筆數。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.disp.dropped.Load()
}

// Close 停止 dispatcher 並把隊列內剩餘的 log 寫完。
// 不屬於 slog.Handler 介面；拿得到 *AsyncHandler 的組裝端才呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.disp.once.Do(func() { close(h.disp.closed) })
	h.disp.wg.Wait()
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.queue:
			d.emit(e)
		case <-d.closed:
			d.drain()
			return
		}
	}
}

// drain 把關閉當下隊列裡的殘留 log 寫完。
func (d *dispatcher) drain() {
	for {
		select {
		case e := <-d.queue:
			d.emit(e)
		default:
			return
		}
	}
}

func (d *dispatcher) emit(e entry) {
	if e.h != nil {
		_ = e.h.Handle(e.ctx, e.rec)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}

	// Close 之後不收新 log
	select {
	case <-h.disp.closed:
		h.disp.dropped.Add(1)
		return nil
	default:
	}

	// Clone 複製 attributes，Record 的可變引用跨 goroutine 才安全
	e := entry{ctx: ctx, rec: r.Clone(), h: h.next}

	select {
	case h.disp.queue <- e:
	default:
		h.disp.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), disp: h.disp}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), disp: h.disp}
}

// NewAsync 依 LogMode 預設組裝並包上 AsyncHandler，
// 回傳 logger 與 handler 本體（Close / Dropped 要用）。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		// 正式環境：JSON + stdout，給 Loki / Promtail
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
}

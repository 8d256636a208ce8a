package diag

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "golang.org/x/term"
)

// Terminal: 终端信息提示（非日志）。
// - 输出到提供的 io.Writer（默认建议 stderr）。
// - TTY: 单行 \r 覆盖；非 TTY: 关键节点分行打印。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
    w       io.Writer
    enabled bool
    isTTY   bool

    // 运行期最小状态
    concurrency int
    totalFiles  int
    filesDone   int
    runStart    time.Time

    // 当前文件
    curFileID   string // 短名（base + 截断）
    chunksTotal int
    chunksDone  int
    errCount    int

    // 输出控制
    lastLen   int
    lastFlush time.Time

    mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
    termMu sync.RWMutex
    term_  *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term_ = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term_ }

// NewTerminal 构造终端提示器。
// enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
    if w == nil {
        w = os.Stderr
    }
    t := &Terminal{w: w, enabled: enabled}
    // CI 环境视为非 TTY
    if os.Getenv("CI") != "" {
        t.isTTY = false
    } else if f, ok := w.(*os.File); ok {
        t.isTTY = term.IsTerminal(int(f.Fd()))
    }
    return t
}

// RunStart: 记录运行上下文（并发、预计文件数）。
func (t *Terminal) RunStart(concurrency, totalFiles int) {
    if t == nil { return }
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.enabled { return }
    t.concurrency = concurrency
    t.totalFiles = totalFiles
    t.filesDone = 0
    t.runStart = time.Now()
    if t.isTTY {
        t.println(fmt.Sprintf("[run] 并发=%d | 文件=%d | 等待任务…", concurrency, totalFiles))
    } else {
        t.println(fmt.Sprintf("[run] 并发=%d | 文件=%d", concurrency, totalFiles))
    }
}

// FileStart: 标记当前文件与预计分片数。
func (t *Terminal) FileStart(fileID string, chunksTotal int) {
    if t == nil { return }
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.enabled { return }
    t.curFileID = shortenBase(fileID, 48)
    t.chunksTotal = chunksTotal
    t.chunksDone = 0
    t.errCount = 0
    if !t.isTTY { // 非 TTY 打点一行
        t.println(fmt.Sprintf("[file] %s | 分片=%d", t.curFileID, chunksTotal))
    }
}

// FileProgress: 周期性进度（≥100ms 节流）。
func (t *Terminal) FileProgress(done, total, errs int) {
    if t == nil { return }
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.enabled || !t.isTTY { return }
    t.chunksDone = done
    t.chunksTotal = total
    t.errCount = errs
    now := time.Now()
    if now.Sub(t.lastFlush) < 100*time.Millisecond {
        return
    }
    t.lastFlush = now
    line := fmt.Sprintf("[file] %s | 进度 %d/%d | 错误 %d | 已完成文件 %d/%d | 用时 %s",
        t.curFileID, t.chunksDone, t.chunksTotal, t.errCount, t.filesDone, t.totalFiles, formatSince(t.runStart))
    t.printInline(line)
}

// FileFinish: 完成当前文件（立即刷新并换行；filesDone++）。
func (t *Terminal) FileFinish(ok bool, dur time.Duration) {
    if t == nil { return }
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.enabled { return }
    t.filesDone++
    status := "done"
    if !ok {
        status = "fail"
    }
    if t.isTTY && t.lastLen > 0 {
        t.printInline("")
    }
    t.println(fmt.Sprintf("[%s] %s | 分片 %d | 用时 %s",
        status, t.curFileID, t.chunksTotal, formatDur(dur)))
}

// RunFinish: 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
    if t == nil { return }
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.enabled { return }
    tag := "ok"
    if !ok {
        tag = "fail"
    }
    t.println(fmt.Sprintf("[%s] 全部完成 | 文件 %d | 总用时 %s", tag, t.filesDone, formatDur(dur)))
}

// 内部输出工具
func (t *Terminal) println(s string) {
    if t == nil || !t.enabled { return }
    if _, err := io.WriteString(t.w, s+"\n"); err != nil {
        t.enabled = false
    }
    t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
    if t == nil || !t.enabled { return }
    pad := 0
    if l := visLen(s); t.lastLen > l {
        pad = t.lastLen - l
    }
    var b strings.Builder
    b.WriteByte('\r')
    b.WriteString(s)
    if pad > 0 {
        b.WriteString(strings.Repeat(" ", pad))
    }
    if _, err := io.WriteString(t.w, b.String()); err != nil {
        t.enabled = false
        return
    }
    t.lastLen = visLen(s)
}

// shortenBase: 取基名并按可见宽度截断（尾部省略号）。
func shortenBase(s string, max int) string {
    if max <= 0 { return "" }
    base := filepath.Base(strings.TrimSpace(s))
    if base == "" { return "" }
    if visLen(base) <= max { return base }
    cut := max - 1
    if cut < 1 { cut = 1 }
    rs := []rune(base)
    if len(rs) <= cut { return string(rs) }
    return string(rs[:cut]) + "…"
}

func visLen(s string) int { return len([]rune(s)) }

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
    if d < time.Second {
        ms := d.Milliseconds()
        if ms <= 0 { ms = 0 }
        return fmt.Sprintf("%dms", ms)
    }
    s := float64(d.Milliseconds()) / 1000.0
    return fmt.Sprintf("%.1fs", s)
}

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"toak/internal/assemble"
	"toak/internal/diag"
	"toak/internal/redact"
	"toak/pkg/contract"
)

// - 单点并发：仅此层管理并发与背压；原子组件均为同步、无内部并发。
// - 顺序门闩：Enumerator 给出的遍历序号即最终 Section 顺序；乱序完成的结果按序号暂存，全部就绪后一次性落位。
// - 软失败：单文件 I/O 错误记为软失败，跳过该文件，其余文件照常处理。
// - 取消：调用方可在文件边界间取消；取消后不产出部分 Document。

// Components 聚合运行所需的原子组件。
type Components struct {
	Enumerator contract.Enumerator
	Admit      contract.Admit
	Reader     contract.Reader
	Cleaner    contract.Cleaner
	Redactor   contract.Redactor
	Assembler  contract.Assembler
	Chunker    contract.Chunker
	Tokenizer  contract.Tokenizer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Root        string
	Concurrency int
	MaxTokens   int
	// Appendix 是装配阶段附加在分隔线之后的自由文本（如 todo 文件内容）。
	Appendix string
}

// Output 是一次完整运行的产物：装配好的 Document、切分出的 Chunk 序列，
// 以及供调用方边界返回的 Result。
type Output struct {
	Document contract.Document
	Chunks   []contract.FileChunk
	Result   contract.Result
}

// Run 执行完整流水线：Enumerate → Admit → (并发) Read → Clean → Redact →
// 行过滤 → Assemble → Chunk。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) Output {
	if err := sanity(comp, set); err != nil {
		return Output{Result: contract.Result{Error: err}}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	etimer := (*diag.Timer)(nil)
	if logger != nil {
		etimer = logger.Start("enumerator", "enumerate")
	}
	paths, err := comp.Enumerator.Enumerate(ctx, set.Root)
	if err != nil {
		if logger != nil {
			code := diag.Classify(err)
			logger.Error("enumerator", string(code), "enumerate failed", nil)
			diag.IncOp("enumerator", "error", "error")
		}
		return Output{Result: contract.Result{Error: err}}
	}
	if etimer != nil {
		etimer.Finish("enumerate", int64(len(paths)))
		diag.IncOp("enumerator", "finish", "success")
	}

	admitted := make([]contract.Path, 0, len(paths))
	for _, p := range paths {
		if comp.Admit(p) {
			admitted = append(admitted, p)
		}
	}

	nWorkers := set.Concurrency
	if nWorkers < 1 {
		nWorkers = 1
	}
	if t := diag.GetTerminal(); t != nil {
		t.RunStart(nWorkers, len(admitted))
	}
	runStart := time.Now()

	type job struct {
		idx  int
		path contract.Path
	}
	type res struct {
		idx int
		sec contract.Section
		ok  bool
	}

	inCh := make(chan job, nWorkers*2)
	outCh := make(chan res, nWorkers*2)

	worker := func() {
		for j := range inCh {
			sec, ok, _ := processFile(ctx, comp, set.Root, j.path, logger)
			select {
			case outCh <- res{idx: j.idx, sec: sec, ok: ok}:
			case <-ctx.Done():
				return
			}
		}
	}
	var wg sync.WaitGroup
	wg.Add(nWorkers)
	for i := 0; i < nWorkers; i++ {
		go func() { defer wg.Done(); worker() }()
	}
	go func() {
		wg.Wait()
		close(outCh)
	}()

	go func() {
		defer close(inCh)
		for i, p := range admitted {
			select {
			case <-ctx.Done():
				return
			case inCh <- job{idx: i, path: p}:
			}
		}
	}()

	buf := make(map[int]res, len(admitted))
	processed := 0
	for r := range outCh {
		processed++
		buf[r.idx] = r
		if t := diag.GetTerminal(); t != nil {
			t.FileProgress(processed, len(admitted), 0)
		}
	}

	if ctx.Err() != nil {
		if t := diag.GetTerminal(); t != nil {
			t.RunFinish(false, time.Since(runStart))
		}
		return Output{Result: contract.Result{Error: ctx.Err()}}
	}

	sections := make([]contract.Section, 0, len(admitted))
	for i := range admitted {
		if r, ok := buf[i]; ok && r.ok {
			sections = append(sections, r.sec)
		}
	}

	doc := comp.Assembler.Assemble(sections, set.Appendix)
	chunks, err := comp.Chunker.Split(doc, set.MaxTokens)
	if err != nil {
		return Output{Result: contract.Result{Error: err}}
	}
	tokenCount := comp.Tokenizer.EncodeLen(assemble.Render(doc))

	if t := diag.GetTerminal(); t != nil {
		t.RunFinish(true, time.Since(runStart))
	}
	return Output{
		Document: doc,
		Chunks:   chunks,
		Result:   contract.Result{Success: true, TokenCount: tokenCount},
	}
}

// processFile runs one admitted path through Read → Clean → Redact → line
// filter. Per-file I/O errors are soft: the path is dropped (ok=false)
// and the run continues. The second return value reports whether the
// file produced a non-empty section; the third reports whether the read
// itself succeeded (true for an empty file too), so callers can tell an
// empty file from a read failure.
func processFile(ctx context.Context, comp Components, root string, p contract.Path, logger *diag.Logger) (contract.Section, bool, bool) {
	timer := (*diag.Timer)(nil)
	if logger != nil {
		timer = logger.StartWith("reader", "read", string(p), "")
	}
	rec, err := comp.Reader.Read(ctx, root, p)
	if err != nil {
		if logger != nil {
			code := diag.Classify(err)
			logger.ErrorWith("reader", string(code), "read failed", nil, string(p), "")
			diag.IncOp("reader", "error", "error")
			if code != diag.CodeUnknown {
				diag.IncError("reader", string(code))
			}
		}
		return contract.Section{}, false, false
	}
	if timer != nil {
		timer.Finish("read", int64(len(rec.Text)))
		diag.IncOp("reader", "finish", "success")
	}
	if rec.Text == "" {
		return contract.Section{}, false, true
	}

	rec.Cleaned = comp.Cleaner.Clean(rec.Text)
	redacted := comp.Redactor.Redact(rec.Cleaned)
	rec.Redacted = redact.FilterSentinelLines(redacted)

	body := rec.Redacted
	return contract.Section{Path: p, Body: body}, true, true
}

func sanity(c Components, s Settings) error {
	if c.Enumerator == nil || c.Admit == nil || c.Reader == nil || c.Cleaner == nil ||
		c.Redactor == nil || c.Assembler == nil || c.Chunker == nil || c.Tokenizer == nil {
		return errors.New("pipeline: missing components")
	}
	if s.Root == "" {
		return errors.New("pipeline: empty root")
	}
	if s.MaxTokens <= 0 {
		return errors.New("pipeline: max_tokens must be > 0")
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"toak/internal/assemble"
	cfgpkg "toak/internal/config"
	"toak/internal/diag"
	"toak/internal/exclude"
	"toak/internal/pipeline"
)

// version 由构建注入（-ldflags "-X main.version=..."）；默认开发版本号。
var version = "0.1.0"

// pipelineRun 作为可替换缝隙，便于测试替换整条流水线。
var pipelineRun = pipeline.Run

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd 组装 CLI：根命令执行一次完整运行；version / init 为子命令。
// 旗标覆盖配置选项表的一个子集（dir、outputFilePath、verbose 经 --quiet、
// todoPrompt 经 --prompt、concurrency、maxTokens、tokenizer）；排除规则、
// 自定义正则与日志等级没有对应旗标。解析交给 cobra/pflag（直接的
// --key value 语义，无自管索引）。
func newRootCmd() *cobra.Command {
	var (
		flagConfig      string
		flagDir         string
		flagOutput      string
		flagQuiet       bool
		flagPrompt      string
		flagConcurrency int
		flagMaxTokens   int
		flagTokenizer   string
	)

	cmd := &cobra.Command{
		Use:           "toak",
		Short:         "将 git 仓库打包为面向 LLM 上下文窗口的单一 Markdown 工件",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// CLI 覆盖层：仅把显式设置过的旗标写入覆盖 Config。
			var over cfgpkg.Config
			over.Dir = flagDir
			over.OutputFilePath = flagOutput
			over.TodoPrompt = flagPrompt
			over.Tokenizer = flagTokenizer
			if flagConcurrency > 0 {
				over.Concurrency = flagConcurrency
			}
			if flagMaxTokens > 0 {
				over.MaxTokens = flagMaxTokens
			}
			if cmd.Flags().Changed("quiet") && flagQuiet {
				v := false
				over.Verbose = &v
			}
			return run(flagConfig, over)
		},
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "仓库根目录（覆盖配置；默认当前目录）")
	cmd.Flags().StringVarP(&flagOutput, "outputFilePath", "o", "", "Document 落盘路径（覆盖配置；默认 prompt.md）")
	cmd.Flags().BoolVar(&flagQuiet, "quiet", false, "关闭终端进度输出")
	cmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "附录文本（覆盖 todo 文件内容）")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "并发度（覆盖配置）")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "单块 token 预算（覆盖配置）")
	cmd.Flags().StringVar(&flagTokenizer, "tokenizer", "", "分词器实现名（words|bpe，覆盖配置）")
	cmd.Flags().BoolP("version", "V", false, "打印版本并退出")
	cmd.SetVersionTemplate("toak {{.Version}}\n")

	cmd.AddCommand(newVersionCmd(), newInitCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toak %s\n", version)
		},
	}
}

// newInitCmd 在目标目录生成 config.json 与 .env 模板；已存在的文件一律
// 跳过，不覆盖。
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "生成默认 config.json 与 .env 模板（不覆盖已有文件）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("生成默认配置失败: %w", err)
			}
			if err := writeConfigTemplate(filepath.Join(dir, "config.json")); err != nil {
				return fmt.Errorf("生成默认配置失败: %w", err)
			}
			if err := writeDotEnvTemplate(filepath.Join(dir, ".env")); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "提示：.env 生成失败（已跳过）：%v\n", err)
			}
			return nil
		},
	}
}

// run 执行一次完整运行：配置三层合并（CLI > ENV > JSON）→ 装配 → 流水线 →
// 原子落盘。任何失败返回 error，进程以退出码 1 结束。
func run(flagConfig string, overCLI cfgpkg.Config) error {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前，加载工作目录下的 .env（godotenv 不覆盖已有 ENV；
	// 文件不存在时静默跳过）。
	_ = godotenv.Load()

	// JSON 配置源：--config > TOAK_CONFIG_FILE > TOAK_CONFIG_JSON > ./config.json
	var cfgJSON []byte
	if flagConfig == "" {
		if s := os.Getenv("TOAK_CONFIG_FILE"); s != "" {
			flagConfig = s
		}
	}
	if flagConfig == "" {
		if s := os.Getenv("TOAK_CONFIG_JSON"); s != "" {
			cfgJSON = []byte(s)
		}
	}
	if flagConfig == "" && len(cfgJSON) == 0 {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(flagConfig, cfgJSON, func(k string) {
			fmt.Fprintf(os.Stderr, "警告：忽略未知配置项 %q\n", k)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "配置解析失败: %v\n", err)
			return err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		return err
	}
	cfg = cfgpkg.Merge(cfg, overEnv)
	cfg = cfgpkg.Merge(cfg, overCLI)

	logger := diag.NewLogger(corrID, cfg.Logging.Level)
	defer logger.Close()

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "first error", &start)
		return err
	}

	verbose := cfg.Verbose == nil || *cfg.Verbose
	term := diag.NewTerminal(os.Stderr, verbose)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	// 附录：未显式给 todoPrompt 时读取（首次运行自动创建）根下的 todo 文件。
	if strings.TrimSpace(set.Appendix) == "" {
		if apx, err := assemble.LoadAppendix(cfg.Dir); err != nil {
			logger.Error("assembler", string(diag.Classify(err)), "load appendix", nil)
		} else {
			set.Appendix = apx
		}
	}

	// .gitignore 卫生：输出工件与 ignore 文件不应被用户仓库误提交。
	if err := exclude.EnsureGitignoreEntries(cfg.Dir,
		filepath.Base(cfg.OutputFilePath),
		assemble.AppendixFileName,
		exclude.DefaultIgnoreFileName,
	); err != nil {
		logger.Error("resolver", string(diag.Classify(err)), "gitignore update", nil)
	}

	out := pipelineRun(context.Background(), comp, set, logger)
	if out.Result.Error != nil || !out.Result.Success {
		err := out.Result.Error
		if err == nil {
			err = errors.New("pipeline failed")
		}
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		return err
	}

	if err := writeAtomic(cfg.OutputFilePath, []byte(assemble.Render(out.Document))); err != nil {
		fmt.Fprintf(os.Stderr, "写出失败: %v\n", err)
		logger.Error("writer", string(diag.Classify(err)), "write document", &start)
		return err
	}

	logger.InfoFinish("pipeline", "run", start, int64(out.Result.TokenCount))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	if kv := diag.MetricsSummary(); len(kv) > 0 {
		logger.DebugStart("metrics", "summary", "", "", kv)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%s：%d 个文件，%d 个块，共 %d token\n",
			cfg.OutputFilePath, len(out.Document.Sections), len(out.Chunks), out.Result.TokenCount)
	}
	return nil
}

// writeAtomic 采用同目录临时文件 + rename 的原子替换写出最终 Document，
// 避免读到半写状态的输出。
func writeAtomic(dest string, b []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".toak-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// writeConfigTemplate 将默认配置模板写为 JSON；目标已存在时跳过。
func writeConfigTemplate(path string) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	b, err := json.MarshalIndent(cfgpkg.DefaultTemplateConfig(), "", "  ")
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, err = f.Write([]byte("\n"))
	return err
}

// writeDotEnvTemplate 生成 .env 模板（仅创建；不覆盖，不合并）。
func writeDotEnvTemplate(path string) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	var b strings.Builder
	b.WriteString("# toak .env 模板（由 init 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置；按需填写后移除行首注释。\n\n")
	for _, k := range []string{
		"TOAK_CONFIG_FILE",
		"TOAK_DIR",
		"TOAK_OUTPUT_FILE_PATH",
		"TOAK_FILE_TYPE_EXCLUSIONS",
		"TOAK_FILE_EXCLUSIONS",
		"TOAK_VERBOSE",
		"TOAK_TODO_PROMPT",
		"TOAK_CONCURRENCY",
		"TOAK_MAX_TOKENS",
		"TOAK_TOKENIZER",
		"TOAK_LOG_LEVEL",
	} {
		b.WriteString("# ")
		b.WriteString(k)
		b.WriteString("=\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

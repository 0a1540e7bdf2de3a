package llm

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

// OllamaCompleter 通过本地 `ollama run <model>` 子进程完成补全，提示词经 stdin 传入
type OllamaCompleter struct {
	bin   string
	model string
}

// NewOllamaCompleter 创建本地模型补全器
func NewOllamaCompleter(bin, model string) *OllamaCompleter {
	if bin == "" {
		bin = "ollama"
	}
	return &OllamaCompleter{bin: bin, model: model}
}

var _ Completer = (*OllamaCompleter)(nil)

// CompleteText implements Completer
func (o *OllamaCompleter) CompleteText(ctx context.Context, prompt string) string {
	cmd := exec.CommandContext(ctx, o.bin, "run", o.model)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		logger.Log.Errorf("[LLM] ollama 超时: %v", ctx.Err())
		return ""
	}
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		// 非零退出时仍使用已产生的输出
		logger.Log.Errorf("[LLM] ollama 执行失败: %v (stderr=%s)", err, strings.TrimSpace(stderr.String()))
		return out
	}
	if out == "" {
		logger.Log.Warn("[LLM] ollama 输出为空")
	}
	return out
}

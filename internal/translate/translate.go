package translate

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

// Transformer 文本到文本的转换（翻译或摘要）。
// 任何内部失败都返回空字符串，调用方把空串当作"不可用"，不会 panic 也不返回 error
type Transformer interface {
	Transform(ctx context.Context, text string) string
}

// Func 让普通函数满足 Transformer，测试中常用
type Func func(ctx context.Context, text string) string

func (f Func) Transform(ctx context.Context, text string) string {
	return f(ctx, text)
}

// Task 决定给大模型的提示词
type Task int

const (
	TaskTranslate Task = iota
	TaskSummarize
)

func (t Task) String() string {
	if t == TaskSummarize {
		return "summarize"
	}
	return "translate"
}

const (
	translatePrompt = "다음 영문 텍스트를 한국어로 번역해주세요.\n" +
		"번역 규칙:\n" +
		"1. 핵심 내용만 한 줄로 간단히 번역하세요.\n" +
		"2. 불필요한 설명이나 부가 정보는 제외하세요.\n" +
		"3. 번역문 앞뒤로 따옴표나 기호를 붙이지 마세요.\n" +
		"4. '~이다', '~하다' 등의 문장으로 끝나지 않도록 자연스럽게 마무리하세요.\n\n"

	summarizePrompt = "역할: 너는 금융 뉴스 요약 전문가다.\n" +
		"목표: 다음 뉴스의 핵심만 한 줄로 요약해줘.\n" +
		"형식: 중립적인 어조로 작성.\n\n"
)

func (t Task) prompt(text string) string {
	if t == TaskSummarize {
		return summarizePrompt + "---\n" + text + "\n---\n\n요약:"
	}
	return translatePrompt + text
}

const (
	maxInputRunes   = 2000
	defaultMaxToken = 800
	defaultTemp     = 0.3
)

// clip 去掉首尾空白并按 rune 截断过长输入
func clip(text string, max int) string {
	text = strings.TrimSpace(text)
	if rs := []rune(text); len(rs) > max {
		text = string(rs[:max])
	}
	return text
}

// cleanOutput 去掉模型偶尔加上的引号
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”'")
	return strings.TrimSpace(s)
}

func logFailure(log *slog.Logger, provider string, task Task, err error) string {
	err = apperr.Transform(provider+": "+task.String(), err)
	log.Warn("transform failed",
		slog.String("provider", provider),
		slog.String("task", task.String()),
		slog.Any("err", err),
	)
	return ""
}

// IsMostlyKorean 判断文本是否已经以韩文为主（无需再翻译）
func IsMostlyKorean(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	var hangul, letters int
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters == 0 {
		return true
	}
	return hangul*2 >= letters
}

// SkipKorean 已是韩文的文本原样返回，其余交给 next
func SkipKorean(next Transformer) Transformer {
	return Func(func(ctx context.Context, text string) string {
		if IsMostlyKorean(text) {
			return strings.TrimSpace(text)
		}
		return next.Transform(ctx, text)
	})
}

// Chain 依次尝试，返回第一个非空结果
func Chain(ts ...Transformer) Transformer {
	return Func(func(ctx context.Context, text string) string {
		for _, t := range ts {
			if t == nil {
				continue
			}
			if out := t.Transform(ctx, text); out != "" {
				return out
			}
		}
		return ""
	})
}

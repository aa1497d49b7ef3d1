package suggestion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseFailure 模型回复无法解析为 JSON
// 由调用方决定降级还是报错
type ParseFailure struct {
	Raw string
	Err error
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("unparseable model reply: %v", f.Err)
}

func (f *ParseFailure) Unwrap() error {
	return f.Err
}

// ParseJSON 解析模型回复
// 依次尝试：直接解析、去掉 markdown 代码块、jsonrepair 修复
func ParseJSON[T any](raw string) (T, *ParseFailure) {
	var v T
	text := strings.TrimSpace(raw)
	if text == "" {
		return v, &ParseFailure{Raw: raw, Err: fmt.Errorf("empty reply")}
	}

	firstErr := json.Unmarshal([]byte(text), &v)
	if firstErr == nil {
		return v, nil
	}

	stripped := stripFences(text)
	if stripped != text {
		var sv T
		if err := json.Unmarshal([]byte(stripped), &sv); err == nil {
			return sv, nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(stripped)
	if err == nil {
		var rv T
		if err := json.Unmarshal([]byte(repaired), &rv); err == nil {
			return rv, nil
		}
	}

	return v, &ParseFailure{Raw: raw, Err: firstErr}
}

// stripFences 取出 ``` 代码块内容，没有代码块时截取首尾大括号之间的部分
func stripFences(s string) string {
	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		// 去掉语言标记
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}

	i := strings.IndexByte(s, '{')
	j := strings.LastIndexByte(s, '}')
	if i >= 0 && j > i {
		return s[i : j+1]
	}
	return s
}

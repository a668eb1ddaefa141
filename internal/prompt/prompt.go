// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt turns extracted paper text into the analysis request.
package prompt

import (
	"bytes"
	"text/template"
)

// MaxChars is the number of characters (Unicode code points) of paper text
// embedded in a prompt. Anything beyond it is dropped.
const MaxChars = 120000

// Persona is the system message that fixes the assistant's role.
const Persona = "你是一位专业学术助手，擅长分析和总结科研论文。"

// analysisPromptTmpl asks for purpose and contribution, methodology, key
// findings, and limitations with future work, as concise bullet points.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`请分析以下学术论文内容，并返回以下方面的总结：
1. 论文的主要研究目的和贡献
2. 使用的方法论
3. 关键发现或结果
4. 研究的局限性和未来工作建议

请用专业但简洁的语言回答，使用分点格式。

论文内容：
{{.Text}}
`))

// Format truncates text to MaxChars and places it in the analysis template.
func Format(text string) string {
	truncated, _ := Truncate(text, MaxChars)

	var buf bytes.Buffer
	// The template only interpolates a string field; Execute cannot fail.
	_ = analysisPromptTmpl.Execute(&buf, struct{ Text string }{Text: truncated})
	return buf.String()
}

// Truncate returns the first limit code points of text and whether anything
// was cut. The cut ignores word and sentence boundaries.
func Truncate(text string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}

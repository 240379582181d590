package service

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageLength 单条消息的默认最大长度（Telegram上限4096，留出余量）
const DefaultMaxMessageLength = 4000

// markupTokens 按奇偶翻转处理的行内标记字符
const markupTokens = "_*`~[]"

// markupState 记录当前未闭合的行内标记，按打开顺序保存
type markupState struct {
	open []rune
}

// toggle 对段落中出现的每个标记字符翻转其打开状态
func (m *markupState) toggle(paragraph string) {
	for _, r := range paragraph {
		if !strings.ContainsRune(markupTokens, r) {
			continue
		}
		if i := m.index(r); i >= 0 {
			m.open = append(m.open[:i], m.open[i+1:]...)
		} else {
			m.open = append(m.open, r)
		}
	}
}

func (m *markupState) index(r rune) int {
	for i, o := range m.open {
		if o == r {
			return i
		}
	}
	return -1
}

// closing 返回闭合所有打开标记所需的文本，后打开的先闭合
func (m *markupState) closing() string {
	var sb strings.Builder
	for i := len(m.open) - 1; i >= 0; i-- {
		sb.WriteRune(m.open[i])
	}
	return sb.String()
}

func (m *markupState) reset() {
	m.open = m.open[:0]
}

// SplitMessage 按段落将文本切分为不超过maxLength的若干段，
// 每段末尾补齐未闭合的行内标记。段落不会被拆开，超长段落单独成段。
// 标记平衡只按字符出现次数的奇偶判断，嵌套或不对称的标记仍可能显示异常。
func SplitMessage(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}

	var (
		chunks     []string
		current    strings.Builder
		currentLen int
		state      markupState
	)

	flush := func() {
		chunk := strings.TrimSpace(strings.TrimSpace(current.String()) + state.closing())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
		state.reset()
	}

	for _, paragraph := range strings.Split(text, "\n") {
		length := utf8.RuneCountInString(paragraph)
		if currentLen > 0 && currentLen+length+1 > maxLength {
			flush()
		}
		current.WriteString(paragraph)
		current.WriteByte('\n')
		currentLen += length + 1
		state.toggle(paragraph)
	}
	flush()

	return chunks
}

// Package lesson 定义规范化后的教案文档（与语言无关）以及两种语言的标签表。
package lesson

import "strings"

// Language 是检测出的记录语言。
type Language string

const (
	English   Language = "en"
	Kiswahili Language = "sw"
)

// Document 是解析完成、全部字段已补默认值的教案。构造后不再修改。
type Document struct {
	Language         Language   `json:"language"`
	School           string     `json:"school"`
	Subject          string     `json:"subject"`
	Grade            string     `json:"grade"`
	Term             string     `json:"term"`
	Date             string     `json:"date"`
	Time             Time       `json:"time"`
	Roll             Roll       `json:"roll"`
	Teacher          Teacher    `json:"teacher"`
	Strand           string     `json:"strand"`
	SubStrand        string     `json:"subStrand"`
	GuidingQuestion  string     `json:"guidingQuestion"`
	LearningOutcomes []Outcome  `json:"learningOutcomes"`
	Resources        []string   `json:"resources"`
	LessonFlow       LessonFlow `json:"lessonFlow"`
}

// Time 保存起止时间；记录只给出一个组合字符串时写入 Text。
type Time struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Text  string `json:"text,omitempty"`
}

// String 返回单行时间文本，起止分开保存时以 " – " 连接。
func (t Time) String() string {
	start := strings.TrimSpace(t.Start)
	end := strings.TrimSpace(t.End)
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	case end != "":
		return end
	default:
		return strings.TrimSpace(t.Text)
	}
}

// Roll 为班级人数，Total 缺省时等于 Boys+Girls，三者均不为负。
type Roll struct {
	Boys  int `json:"boys"`
	Girls int `json:"girls"`
	Total int `json:"total"`
}

type Teacher struct {
	Name      string `json:"name"`
	TSCNumber string `json:"tscNumber"`
}

// Outcome 的 ID 在序列中连续编号（数字或字母），从 1/a 开始。
type Outcome struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type LessonFlow struct {
	Introduction Part   `json:"introduction"`
	Development  []Step `json:"development"`
	Conclusion   Part   `json:"conclusion"`
}

type Part struct {
	Description string `json:"description"`
}

type Step struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Activity    string `json:"activity"`
}

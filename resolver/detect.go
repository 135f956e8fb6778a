package resolver

import (
	"strings"

	"github.com/ByLCY/lessonplan/lesson"
	"github.com/ByLCY/lessonplan/record"
)

// DetectLanguage 推断记录语言，依次检查（先命中者生效）：
//  1. 科目文本包含 "kiswahili"；
//  2. 记录根上的 title 包含 "mpango"；
//  3. 记录任意位置存在 "mada" 或 "mada ndogo" 键。
//
// 均未命中时视为英文。该判断是启发式的，科目名中偶然出现的子串会导致误判。
func DetectLanguage(raw any) lesson.Language {
	return detect(normalizeRoot(raw))
}

func detect(root any) lesson.Language {
	subject, _ := locate(root, fieldTable[lesson.FieldSubject], lesson.English)
	if strings.Contains(strings.ToLower(record.String(subject)), "kiswahili") {
		return lesson.Kiswahili
	}
	if title, ok := record.Lookup(root, "title"); ok {
		if strings.Contains(strings.ToLower(record.String(title)), "mpango") {
			return lesson.Kiswahili
		}
	}
	if record.HasKey(root, "mada", "mada ndogo") {
		return lesson.Kiswahili
	}
	return lesson.English
}

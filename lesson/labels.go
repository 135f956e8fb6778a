package lesson

// 规范字段名，两种语言的标签表使用同一组键。
const (
	FieldTitle            = "title"
	FieldSchool           = "school"
	FieldSubject          = "subject"
	FieldGrade            = "grade"
	FieldTerm             = "term"
	FieldDate             = "date"
	FieldTime             = "time"
	FieldRoll             = "roll"
	FieldBoys             = "boys"
	FieldGirls            = "girls"
	FieldTotal            = "total"
	FieldTeacher          = "teacher"
	FieldTSCNumber        = "tscNumber"
	FieldStrand           = "strand"
	FieldSubStrand        = "subStrand"
	FieldGuidingQuestion  = "guidingQuestion"
	FieldLearningOutcomes = "learningOutcomes"
	FieldOutcomeStatement = "outcomeStatement"
	FieldResources        = "resources"
	FieldLessonFlow       = "lessonFlow"
	FieldIntroduction     = "introduction"
	FieldDevelopment      = "development"
	FieldConclusion       = "conclusion"
	FieldStep             = "step"
	FieldActivity         = "activity"
	FieldNotAvailable     = "notAvailable"
	FieldDefaultSubject   = "defaultSubject"
)

// LabelSet 是某一语言的显示文本表，IsSecondLanguage 同时决定默认科目名等字面内容。
type LabelSet struct {
	Language         Language          `json:"language"`
	IsSecondLanguage bool              `json:"isSecondLanguage"`
	Labels           map[string]string `json:"labels"`
}

// Get 返回字段的显示文本，缺失时回退到英文表，再回退到字段名本身。
func (l LabelSet) Get(field string) string {
	if v, ok := l.Labels[field]; ok {
		return v
	}
	if v, ok := englishLabels[field]; ok {
		return v
	}
	return field
}

// LabelsFor 按语言返回静态标签表的副本。
func LabelsFor(lang Language) LabelSet {
	src := englishLabels
	second := false
	if lang == Kiswahili {
		src = kiswahiliLabels
		second = true
	} else {
		lang = English
	}
	labels := make(map[string]string, len(src))
	for k, v := range src {
		labels[k] = v
	}
	return LabelSet{Language: lang, IsSecondLanguage: second, Labels: labels}
}

var englishLabels = map[string]string{
	FieldTitle:            "LESSON PLAN",
	FieldSchool:           "School",
	FieldSubject:          "Subject",
	FieldGrade:            "Grade",
	FieldTerm:             "Term",
	FieldDate:             "Date",
	FieldTime:             "Time",
	FieldRoll:             "Roll",
	FieldBoys:             "Boys",
	FieldGirls:            "Girls",
	FieldTotal:            "Total",
	FieldTeacher:          "Teacher",
	FieldTSCNumber:        "TSC Number",
	FieldStrand:           "Strand",
	FieldSubStrand:        "Sub-Strand",
	FieldGuidingQuestion:  "Key Inquiry Question",
	FieldLearningOutcomes: "Specific Learning Outcomes",
	FieldOutcomeStatement: "By the end of the lesson, the learner should be able to:",
	FieldResources:        "Learning Resources",
	FieldLessonFlow:       "Lesson Flow",
	FieldIntroduction:     "Introduction",
	FieldDevelopment:      "Development",
	FieldConclusion:       "Conclusion",
	FieldStep:             "Step",
	FieldActivity:         "Activity",
	FieldNotAvailable:     "N/A",
	FieldDefaultSubject:   "English",
}

var kiswahiliLabels = map[string]string{
	FieldTitle:            "MPANGO WA SOMO",
	FieldSchool:           "Shule",
	FieldSubject:          "Somo",
	FieldGrade:            "Darasa",
	FieldTerm:             "Muhula",
	FieldDate:             "Tarehe",
	FieldTime:             "Wakati",
	FieldRoll:             "Idadi ya Wanafunzi",
	FieldBoys:             "Wavulana",
	FieldGirls:            "Wasichana",
	FieldTotal:            "Jumla",
	FieldTeacher:          "Mwalimu",
	FieldTSCNumber:        "Nambari ya TSC",
	FieldStrand:           "Mada",
	FieldSubStrand:        "Mada Ndogo",
	FieldGuidingQuestion:  "Swali Dadisi",
	FieldLearningOutcomes: "Matokeo Yanayotarajiwa",
	FieldOutcomeStatement: "Kufikia mwisho wa somo, mwanafunzi aweze:",
	FieldResources:        "Nyenzo",
	FieldLessonFlow:       "Mpangilio wa Somo",
	FieldIntroduction:     "Utangulizi",
	FieldDevelopment:      "Maendeleo",
	FieldConclusion:       "Hitimisho",
	FieldStep:             "Hatua",
	FieldActivity:         "Shughuli",
	FieldNotAvailable:     "N/A",
	FieldDefaultSubject:   "Kiswahili",
}

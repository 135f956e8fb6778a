package resolver

import "github.com/ByLCY/lessonplan/lesson"

// source 是一个候选取值位置；lang 为空表示与语言无关的通用键。
type source struct {
	lang lesson.Language
	path []string
}

func sw(path ...string) source      { return source{lang: lesson.Kiswahili, path: path} }
func en(path ...string) source      { return source{lang: lesson.English, path: path} }
func generic(path ...string) source { return source{path: path} }

const (
	swAdmin = "MAELEZO YA KIUTAWALA"
	enAdmin = "administrativeDetails"
	swFlow  = "MPANGILIO WA SOMO"
	enFlow  = "lessonFlow"
)

// fieldTable 按规范字段列出记录根上的候选位置，顺序即优先级：
// 本语言的嵌套容器、本语言的顶层键、通用英文键。
var fieldTable = map[string][]source{
	lesson.FieldSchool: {
		sw(swAdmin, "Shule"), sw("Shule"),
		en(enAdmin, "school"), en(enAdmin, "schoolName"),
		generic("school"), generic("schoolName"),
	},
	lesson.FieldSubject: {
		sw(swAdmin, "Somo"), sw("Somo"),
		en(enAdmin, "subject"), en(enAdmin, "learningArea"),
		generic("subject"), generic("learningArea"),
	},
	lesson.FieldGrade: {
		sw(swAdmin, "Darasa"), sw("Darasa"),
		en(enAdmin, "grade"), en(enAdmin, "class"),
		generic("grade"), generic("class"),
	},
	lesson.FieldTerm: {
		sw(swAdmin, "Muhula"), sw("Muhula"),
		en(enAdmin, "term"),
		generic("term"),
	},
	lesson.FieldDate: {
		sw(swAdmin, "Tarehe"), sw("Tarehe"),
		en(enAdmin, "date"),
		generic("date"),
	},
	lesson.FieldTime: {
		sw(swAdmin, "Wakati"), sw("Wakati"),
		en(enAdmin, "time"),
		generic("time"),
	},
	lesson.FieldRoll: {
		sw(swAdmin, "Idadi ya wanafunzi"), sw("Idadi ya wanafunzi"),
		en(enAdmin, "roll"), en(enAdmin, "students"),
		generic("roll"), generic("students"),
	},
	lesson.FieldTeacher: {
		sw(swAdmin, "Mwalimu"), sw("Mwalimu"),
		en(enAdmin, "teacher"),
		generic("teacher"), generic("teacherName"),
	},
	lesson.FieldTSCNumber: {
		sw(swAdmin, "Nambari ya TSC"), sw("Nambari ya TSC"),
		en(enAdmin, "tscNumber"),
		generic("tscNumber"), generic("tsc"),
	},
	lesson.FieldStrand: {
		sw("MADA"),
		generic("strand"), generic("topic"),
	},
	lesson.FieldSubStrand: {
		sw("MADA NDOGO"),
		generic("subStrand"), generic("sub-strand"), generic("subTopic"),
	},
	lesson.FieldGuidingQuestion: {
		sw("SWALI DADISI"), sw("SWALI LA KUDADISI"),
		generic("keyInquiryQuestion"), generic("guidingQuestion"), generic("inquiryQuestion"),
	},
	lesson.FieldLearningOutcomes: {
		sw("MATOKEO YANAYOTARAJIWA"), sw("MATOKEO MAALUM YANAYOTARAJIWA"),
		en("specificLearningOutcomes"),
		generic("learningOutcomes"), generic("outcomes"),
	},
	lesson.FieldResources: {
		sw("NYENZO"), sw("NYENZO ZA KUJIFUNZIA"),
		generic("learningResources"), generic("resources"),
	},
	lesson.FieldLessonFlow: {
		sw(swFlow), sw("HATUA ZA SOMO"),
		generic(enFlow), generic("lessonDevelopment"),
	},
}

// 以下各表的路径相对于已定位的容器（人数、时间、教师、条目等）。

var rollKeys = map[string][]source{
	lesson.FieldBoys:  {sw("Wavulana"), generic("boys")},
	lesson.FieldGirls: {sw("Wasichana"), generic("girls")},
	lesson.FieldTotal: {sw("Jumla"), generic("total")},
}

var timeKeys = map[string][]source{
	"start": {sw("Kuanza"), generic("start"), generic("startTime"), generic("from")},
	"end":   {sw("Kumaliza"), generic("end"), generic("endTime"), generic("to")},
}

var teacherKeys = map[string][]source{
	"name":                {sw("Jina"), generic("name")},
	lesson.FieldTSCNumber: {sw("Nambari ya TSC"), generic("tscNumber"), generic("tsc")},
}

var outcomeKeys = map[string][]source{
	"id":   {sw("Nambari"), generic("id"), generic("number")},
	"text": {sw("Tokeo"), generic("outcome"), generic("text"), generic("description")},
}

var stepKeys = map[string][]source{
	"step":        {sw("Hatua"), generic("step"), generic("number")},
	"title":       {sw("Kichwa"), generic("title")},
	"description": {sw("Maelezo"), generic("description"), generic("text"), generic("content")},
	"activity":    {sw("Shughuli"), generic("activity"), generic("activities"), generic("learnerActivity")},
}

var partKeys = []source{sw("Maelezo"), generic("description"), generic("text")}

// flowKeys 先在课堂流程容器内查找，找不到时再到记录根上查找。
var flowKeys = map[string][]source{
	lesson.FieldIntroduction: {sw("Utangulizi"), generic("introduction")},
	lesson.FieldDevelopment:  {sw("Maendeleo"), sw("Hatua"), generic("development"), generic("steps")},
	lesson.FieldConclusion:   {sw("Hitimisho"), generic("conclusion")},
}

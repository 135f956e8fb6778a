package lesson

// DevelopmentItem 是课堂发展环节的原始条目：结构化步骤或自由文本。
type DevelopmentItem interface {
	developmentItem()
}

// Structured 是已带字段的步骤；Step 为 0 时按位置编号。
type Structured struct {
	Step        int
	Title       string
	Description string
	Activity    string
}

// Freeform 是非结构化条目，整体作为步骤描述。
type Freeform struct {
	Text string
}

func (Structured) developmentItem() {}
func (Freeform) developmentItem()   {}

// NormalizeSteps 将条目统一为 Step，编号缺失时使用 1 起始的位置。
func NormalizeSteps(items []DevelopmentItem) []Step {
	out := make([]Step, 0, len(items))
	for i, item := range items {
		pos := i + 1
		switch it := item.(type) {
		case Structured:
			n := it.Step
			if n <= 0 {
				n = pos
			}
			out = append(out, Step{Step: n, Title: it.Title, Description: it.Description, Activity: it.Activity})
		case Freeform:
			out = append(out, Step{Step: pos, Description: it.Text})
		case nil:
			out = append(out, Step{Step: pos})
		}
	}
	return out
}

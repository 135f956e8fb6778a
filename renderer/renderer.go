package renderer

import "github.com/ByLCY/lessonplan/layout"

// Renderer 将分页结果输出为最终文件，例如 PDF、DOCX 或 PNG。
// Render 返回生成的二进制数据以及可能的错误，调用方拥有返回的字节。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

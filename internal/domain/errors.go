package domain

import "errors"

// 错误分类（用 errors.Is 判断）：
// - ErrInvalidInput：输入不合法，在任何 I/O 之前同步发现
// - ErrPageDefect：页面存在对应标记但内容无法解释（例如年份不是数字）
// - ErrNo*：组装 Movie 时违反不变量
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPageDefect   = errors.New("page defect")

	ErrNoTitle     = errors.New("failed to get title")
	ErrNoYear      = errors.New("failed to get years")
	ErrNoGenres    = errors.New("failed to get genres")
	ErrNoDirectors = errors.New("failed to get directors")
	ErrNoCast      = errors.New("failed to get cast")

	// ErrDisposed 表示封面已被释放，之后不能再读取。
	ErrDisposed = errors.New("cover disposed")
)

// IsMissingField 判断 err 是否属于 Movie 不变量违规（某个必需字段为空）。
func IsMissingField(err error) bool {
	return errors.Is(err, ErrNoTitle) ||
		errors.Is(err, ErrNoYear) ||
		errors.Is(err, ErrNoGenres) ||
		errors.Is(err, ErrNoDirectors) ||
		errors.Is(err, ErrNoCast)
}

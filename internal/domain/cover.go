package domain

import "sync"

// Cover 是已下载到内存的封面图片。
//
// 约束：
// - Cover 独占自己的字节；Bytes 返回副本，调用方修改不会影响 Cover
// - Release 之后任何读取都返回 ErrDisposed；重复 Release 是空操作
// - 可被多个 goroutine 并发读取与释放
type Cover struct {
	mu       sync.Mutex
	data     []byte
	format   string
	width    int
	height   int
	released bool
}

// NewCover 接管 data 的所有权。format 为解码器名称（"jpeg"/"png"/"gif"）。
func NewCover(data []byte, format string, width, height int) *Cover {
	return &Cover{data: data, format: format, width: width, height: height}
}

// Bytes 返回图片原始字节的副本。
func (c *Cover) Bytes() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, ErrDisposed
	}
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out, nil
}

func (c *Cover) Format() string { return c.format }

// Size 返回图片像素尺寸（宽、高）。
func (c *Cover) Size() (int, int) { return c.width, c.height }

// Released 报告 Release 是否已被调用。
func (c *Cover) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Release 丢弃图片数据。
func (c *Cover) Release() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	c.data = nil
}

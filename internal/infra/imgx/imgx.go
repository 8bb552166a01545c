package imgx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // 注册 GIF 解码器（少数旧海报）
	"image/jpeg"
	_ "image/png" // 注册 PNG 解码器（输入不一定总是 jpeg）

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

// NewCover 校验图片字节并生成 domain.Cover（只读头部，不做完整解码）。
//
// 约束：
// - 输入允许是 JPEG/PNG/GIF（依赖标准库解码器）
// - 空输入、无法识别的格式、尺寸为 0 都是错误
func NewCover(data []byte) (*domain.Cover, error) {
	if len(data) == 0 {
		return nil, errors.New("图片为空")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法识别的图片：%w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("图片尺寸无效")
	}
	return domain.NewCover(data, format, cfg.Width, cfg.Height), nil
}

// EncodeJPEG 返回可直接写入 .jpg 文件的字节：JPEG 原样返回，其它格式重新编码。
func EncodeJPEG(c *domain.Cover) ([]byte, error) {
	data, err := c.Bytes()
	if err != nil {
		return nil, err
	}
	if c.Format() == "jpeg" {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	// 透明/调色板图片先铺到 RGBA 画布上，避免编码器按调色板取色。
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1280
	DefaultJPEGQuality  = 80
)

// Compressor はアップロード画像を検出APIに送る前に縮小・再圧縮する
type Compressor struct {
	maxDimension int
	quality      int
}

// NewCompressor は新しいCompressorを作成（0以下の値は既定値を使う）
func NewCompressor(maxDimension, quality int) *Compressor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Compressor{
		maxDimension: maxDimension,
		quality:      quality,
	}
}

// Compress は縦横比を保って maxDimension 四方に収まるよう縮小し、JPEGで再エンコードする
// 元画像が小さい場合は拡大しない
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗: %w", err)
	}

	bounds := src.Bounds()
	width, height := FitInside(bounds.Dx(), bounds.Dy(), c.maxDimension)

	// 透過部分は白で塗りつぶす
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗 (元形式: %s): %w", format, err)
	}
	return buf.Bytes(), nil
}

// FitInside は縦横比を保ったまま max 四方に収まるサイズを返す
func FitInside(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width >= height {
		h := height * max / width
		if h < 1 {
			h = 1
		}
		return max, h
	}
	w := width * max / height
	if w < 1 {
		w = 1
	}
	return w, max
}

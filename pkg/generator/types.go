package generator

import "time"

const (
	// 画像説明に送る画像は縮小・JPEG 化して転送量を抑えるのだ
	UseImageCompression     = true
	ImageCompressionQuality = 80
	DescribeMaxEdge         = 1024

	DefaultDescribeCacheTTL = 30 * time.Minute
	DescribeTimeout         = 2 * time.Minute
	cacheKeyDescription     = "description:"
)

// DescribeInstruction は画像説明モデルに渡す固定の指示文なのだ。
const DescribeInstruction = "Describe this image in detail for an image generation model. " +
	"Cover the subject, setting, lighting, colour palette, textures and artistic style. " +
	"Answer in plain English prose without markdown, in at most five sentences."

// ImageOutput は応答から取り出した画像データです。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"github.com/shouni/outpaint-kit/pkg/imgutil"
)

// toPart は画像バイト列をインラインパーツにするのだ。画像でなければエラーなのだ。
func (c *GeminiImageCore) toPart(data []byte) (*genai.Part, error) {
	mimeType, err := imgutil.DetectImageMIME(data)
	if err != nil {
		return nil, err
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}, nil
}

// dataURIToPart は data URI をインラインパーツにするのだ。
func (c *GeminiImageCore) dataURIToPart(uri string) (*genai.Part, error) {
	_, data, err := imgutil.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return c.toPart(data)
}

func firstCandidate(resp *gemini.Response) (*genai.Candidate, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}
	// 最初の候補 (Candidate) のみを利用する
	return resp.RawResponse.Candidates[0], nil
}

func checkFinishReason(candidate *genai.Candidate) error {
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return fmt.Errorf("生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}
	return nil
}

func (c *GeminiImageCore) parseToResponse(resp *gemini.Response) (*ImageOutput, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return nil, err
	}

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return &ImageOutput{Data: part.InlineData.Data, MimeType: mimeType}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if err := checkFinishReason(candidate); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("画像データが見つかりませんでした")
}

func (c *GeminiImageCore) parseToText(resp *gemini.Response) (string, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return "", err
	}
	if err := checkFinishReason(candidate); err != nil {
		return "", err
	}

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("テキスト応答が空でした")
	}
	return text, nil
}

package outpaint

import (
	"fmt"
	"strings"
)

const (
	// BaseOutpaintPrompt は全フォーマット共通のアウトペイント指示なのだ。
	BaseOutpaintPrompt = "This image contains a photograph placed in the centre of a larger canvas. " +
		"The solid black areas around it are empty and must be filled. " +
		"Extend the photograph naturally into the black areas so the result looks like a single seamless photo. " +
		"Match perspective, lighting, colour grading, grain and style of the original. " +
		"Do not alter, crop, move or redraw the original photograph, and do not leave any black borders."

	// ImageContextSeparator は画像説明をプロンプトに付け加えるときの区切りなのだ。
	ImageContextSeparator = "\n\nImage Context: "

	// EditPromptPrefix は局所的な編集に留めるよう指示する接頭辞なのだ。
	EditPromptPrefix = "Edit only the areas of this image that are marked with the coloured brush strokes, " +
		"remove the strokes, keep everything else unchanged, and apply this instruction"
)

// BuildOutpaintPrompt は共通指示に任意の画像説明を付けたプロンプトを返します。
func BuildOutpaintPrompt(contextText string) string {
	contextText = strings.TrimSpace(contextText)
	if contextText == "" {
		return BaseOutpaintPrompt
	}
	return BaseOutpaintPrompt + ImageContextSeparator + contextText
}

// BuildEditPrompt はユーザーの指示を固定の接頭辞で包むのだ。
func BuildEditPrompt(instruction string) string {
	return fmt.Sprintf("%s: \"%s\"", EditPromptPrefix, strings.TrimSpace(instruction))
}

package domain

import (
	"fmt"
	"strings"
)

// TargetFormat は出力キャンバスのアスペクト比タグなのだ。
type TargetFormat string

const (
	Format1x1  TargetFormat = "1:1"
	Format2x3  TargetFormat = "2:3"
	Format3x2  TargetFormat = "3:2"
	Format3x4  TargetFormat = "3:4"
	Format4x3  TargetFormat = "4:3"
	Format9x16 TargetFormat = "9:16"
	Format16x9 TargetFormat = "16:9"
	Format21x9 TargetFormat = "21:9"
)

// MaxCanvasEdge は生成モデルに渡すキャンバスの長辺の上限なのだ。
const MaxCanvasEdge = 2048

// AllFormats は選択可能なフォーマットを表示順で並べたものなのだ。
var AllFormats = []TargetFormat{
	Format1x1, Format2x3, Format3x2, Format3x4,
	Format4x3, Format9x16, Format16x9, Format21x9,
}

// Size はピクセル単位の幅と高さです。
type Size struct {
	Width  int
	Height int
}

// dimensionTable は各比率を保ちつつ長辺が MaxCanvasEdge を超えないように選んだ固定値なのだ。
var dimensionTable = map[TargetFormat]Size{
	Format1x1:  {Width: 1024, Height: 1024},
	Format2x3:  {Width: 1024, Height: 1536},
	Format3x2:  {Width: 1536, Height: 1024},
	Format3x4:  {Width: 1024, Height: 1365},
	Format4x3:  {Width: 1365, Height: 1024},
	Format9x16: {Width: 1024, Height: 1820},
	Format16x9: {Width: 1820, Height: 1024},
	Format21x9: {Width: 2048, Height: 878},
}

// Dimensions はフォーマットに対応するキャンバスサイズを返します。
// 列挙外の値は 1:1 として扱うのだ。
func (f TargetFormat) Dimensions() Size {
	if s, ok := dimensionTable[f]; ok {
		return s
	}
	return dimensionTable[Format1x1]
}

// Valid は列挙されたフォーマットかどうかを返すのだ。
func (f TargetFormat) Valid() bool {
	_, ok := dimensionTable[f]
	return ok
}

// Ratio はタグの比率部分を整数で返すのだ。
func (f TargetFormat) Ratio() (int, int) {
	var w, h int
	if _, err := fmt.Sscanf(string(f), "%d:%d", &w, &h); err != nil {
		return 1, 1
	}
	return w, h
}

// Slug はファイル名や ID に使えるようにコロンをハイフンへ置き換えた形なのだ。
func (f TargetFormat) Slug() string {
	return strings.ReplaceAll(string(f), ":", "-")
}

// FileName はダウンロード時のファイル名なのだ。
func (f TargetFormat) FileName() string {
	return "resized-" + f.Slug() + ".png"
}

func (f TargetFormat) String() string {
	return string(f)
}

// ParseFormat は "16:9" と "16-9" のどちらの表記も受け付けます。
func ParseFormat(s string) (TargetFormat, error) {
	f := TargetFormat(strings.ReplaceAll(strings.TrimSpace(s), "-", ":"))
	if !f.Valid() {
		return "", NewInvalidRequestError(fmt.Sprintf("未対応のフォーマットです: %q", s))
	}
	return f, nil
}

// ParseFormats はカンマ区切りの一覧を解析するのだ。"all" は全フォーマットになるのだ。
func ParseFormats(s string) ([]TargetFormat, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return append([]TargetFormat(nil), AllFormats...), nil
	}
	var formats []TargetFormat
	for _, item := range strings.Split(s, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		f, err := ParseFormat(item)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

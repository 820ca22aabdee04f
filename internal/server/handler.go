package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/outpaint-kit/pkg/asset"
	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/outpaint"
)

// SourceLoader は URI 指定の元画像を読み込むのだ。asset.Loader はこれを満たすのだ。
type SourceLoader interface {
	Load(ctx context.Context, uri string) (*domain.SourceImage, error)
}

// Handler はセッション単位の生成 API を提供するのだ。
type Handler struct {
	store     *outpaint.Store
	loader    SourceLoader
	maxUpload int64
}

// NewHandler は Handler を初期化します。loader は nil を許容（アップロードのみ）なのだ。
func NewHandler(store *outpaint.Store, loader SourceLoader) *Handler {
	return &Handler{store: store, loader: loader, maxUpload: asset.DefaultMaxUploadBytes}
}

type sourceURIRequest struct {
	URI string `json:"uri" binding:"required"`
}

type generateRequest struct {
	Formats []string `json:"formats" binding:"required"`
}

type editRequest struct {
	Overlay     string `json:"overlay" binding:"required"`
	Instruction string `json:"instruction" binding:"required"`
	Version     *int   `json:"version"`
}

type sessionResponse struct {
	ID          string                   `json:"id"`
	Source      string                   `json:"source,omitempty"`
	Description string                   `json:"description,omitempty"`
	Results     []domain.GeneratedResult `json:"results"`
}

// CreateSession は新しいセッションを作るのだ。
func (h *Handler) CreateSession(c *gin.Context) {
	s, err := h.store.Create()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.sessionView(s))
}

// GetSession はセッションの現在の状態を返すのだ。
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionView(s))
}

// DeleteSession はセッションを破棄するのだ。
func (h *Handler) DeleteSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.store.Delete(s.ID())
	c.Status(http.StatusNoContent)
}

// UploadSource は元画像を設定し、画像説明を取得するのだ。
// multipart の "file" か、JSON の {"uri": ...} を受け付けるのだ。
func (h *Handler) UploadSource(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	src, err := h.readSource(c)
	if err != nil {
		respondError(c, err)
		return
	}

	s.SetSource(*src)
	s.Describe(c.Request.Context())
	c.JSON(http.StatusOK, h.sessionView(s))
}

func (h *Handler) readSource(c *gin.Context) (*domain.SourceImage, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, domain.NewInvalidRequestError("file が見つかりません")
		}
		if fh.Size > h.maxUpload {
			return nil, domain.NewInvalidRequestError("画像が大きすぎます")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := asset.ReadLimited(f, h.maxUpload)
		if err != nil {
			return nil, err
		}
		return asset.NewSourceImage(fh.Filename, data)
	}

	var req sourceURIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, domain.NewInvalidRequestError("file か uri を指定してください")
	}
	if h.loader == nil {
		return nil, domain.NewInvalidRequestError("URI からの読み込みは無効です")
	}
	return h.loader.Load(c.Request.Context(), req.URI)
}

// Generate は選択されたフォーマットでバッチ生成を行うのだ。
// 一部失敗でも 200 を返し、partial と statuses で伝えるのだ。
func (h *Handler) Generate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewInvalidRequestError(err.Error()))
		return
	}
	formats := make([]domain.TargetFormat, 0, len(req.Formats))
	for _, raw := range req.Formats {
		f, err := domain.ParseFormat(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		formats = append(formats, f)
	}

	outcome, err := s.Generate(c.Request.Context(), formats)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ListResults は現在の結果一覧を返すのだ。
func (h *Handler) ListResults(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": s.Results()})
}

// EditResult は一つの結果を編集するのだ。
func (h *Handler) EditResult(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewInvalidRequestError(err.Error()))
		return
	}
	baseVersion := -1
	if req.Version != nil {
		baseVersion = *req.Version
	}

	res, err := s.Edit(c.Request.Context(), c.Param("rid"), baseVersion, req.Overlay, req.Instruction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DownloadResult は結果を PNG ファイルとして返すのだ。
func (h *Handler) DownloadResult(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	name, data, err := s.Download(c.Param("rid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) session(c *gin.Context) (*outpaint.Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) sessionView(s *outpaint.Session) sessionResponse {
	view := sessionResponse{
		ID:          s.ID(),
		Description: s.Description(),
		Results:     s.Results(),
	}
	if src, ok := s.Source(); ok {
		view.Source = src.Name
	}
	if view.Results == nil {
		view.Results = []domain.GeneratedResult{}
	}
	return view
}

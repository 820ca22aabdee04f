package builder

import (
	"github.com/shouni/outpaint-kit/internal/config"
	"github.com/shouni/outpaint-kit/pkg/asset"
	"github.com/shouni/outpaint-kit/pkg/generator"
	"github.com/shouni/outpaint-kit/pkg/outpaint"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config      *config.Config         // Configは、環境変数とフラグから組み立てた設定です。
	Options     config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です。
	Capability  generator.Capability   // Capabilityは、画像生成と画像説明のリモート機能です。
	Coordinator *outpaint.Coordinator
	Loader      *asset.Loader    // Loaderは、元画像の読み込みに使用する入力元です。
	Publisher   *asset.Publisher // Publisherは、生成結果を保存するための出力先です。
}

// NewSession は AppContext の依存関係で新しいセッションを作るのだ。
func (a *AppContext) NewSession() (*outpaint.Session, error) {
	return outpaint.NewSession(a.Coordinator, a.Capability)
}

// NewStore は サーバー用のセッションストアを作るのだ。
func (a *AppContext) NewStore() (*outpaint.Store, error) {
	return outpaint.NewStore(a.Coordinator, a.Capability, a.Config.SessionTTL)
}

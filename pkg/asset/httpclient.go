package asset

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

const (
	dialTimeout  = 10 * time.Second
	maxRedirects = 5
)

// GuardedHTTPClient は接続の直前に実際の接続先 IP を検査する HTTPClient です。
// 名前解決と接続の間に宛先が差し替えられても、制限されたネットワークには繋がないのだ。
// リダイレクト先も同じ検査を通るのだ。
type GuardedHTTPClient struct {
	client   *http.Client
	maxBytes int64
}

// NewGuardedHTTPClient は GuardedHTTPClient を初期化します。
func NewGuardedHTTPClient(timeout time.Duration) *GuardedHTTPClient {
	dialer := &net.Dialer{
		Timeout: dialTimeout,
		Control: guardDial,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	// プロキシ経由だと検査されるのはプロキシの IP になるため使わない
	transport.Proxy = nil

	return &GuardedHTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("リダイレクトが多すぎます (%d)", len(via))
				}
				if !isRemoteHTTP(req.URL.String()) {
					return fmt.Errorf("不許可スキームへのリダイレクト: %s", req.URL.Scheme)
				}
				return nil
			},
		},
		maxBytes: DefaultMaxUploadBytes,
	}
}

// FetchBytes は URL の内容を上限付きで取得するのだ。
func (c *GuardedHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("予期しないステータスコード: %d", resp.StatusCode)
	}
	return ReadLimited(resp.Body, c.maxBytes)
}

// guardDial は net.Dialer.Control として、名前解決後の接続先を検査するのだ。
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("接続先の解析に失敗しました: %w", err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("接続先が IP ではありません: %s", host)
	}
	if isRestrictedIP(ip) {
		return fmt.Errorf("制限されたネットワークへの接続を拒否しました: %s", ip.String())
	}
	return nil
}

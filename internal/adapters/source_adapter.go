package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	defaultSourceMaxBytes = 2 << 20
	defaultSourceMaxChars = 12000
	sourceUserAgent       = "Mozilla/5.0 (compatible; ap-script-web/1.0)"
	sourceMaxRedirects    = 5
)

// ErrBlockedDestination は取得先が公開アドレスでない場合に返されます。
var ErrBlockedDestination = errors.New("source destination is not a public address")

// 共有アドレス空間 (RFC 6598) と "this network" は netip の判定に含まれないため個別に拒否します。
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
}

// SourceSnapshot はサーバー側で取得したページの要約情報です。
type SourceSnapshot struct {
	Title   string
	Excerpt string
	Text    string
}

// SourceReader は抽出コールの補助としてページ本文を取得します。
type SourceReader struct {
	httpClient *http.Client
	maxBytes   int64
	maxChars   int
}

// NewSourceReader は SourceReader を生成します。
// 接続先は名前解決後のアドレスで検査し、ループバックやプライベート、リンクローカル（メタデータエンドポイントを含む）には接続しません。
// リダイレクト先にも同じ制限を適用します。
func NewSourceReader(timeout time.Duration) *SourceReader {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: publicOnlyControl,
	}
	transport := &http.Transport{
		Proxy:                 nil, // 環境変数のプロキシ経由で制限を迂回させない
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return newSourceReaderWithClient(&http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: checkRedirect,
	})
}

func newSourceReaderWithClient(httpClient *http.Client) *SourceReader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SourceReader{
		httpClient: httpClient,
		maxBytes:   defaultSourceMaxBytes,
		maxChars:   defaultSourceMaxChars,
	}
}

// Read はページを取得し、readability で本文を抜き出します。
// readability が本文を見つけられない場合は段落テキストの単純な連結にフォールバックします。
func (s *SourceReader) Read(ctx context.Context, rawURL string) (SourceSnapshot, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return SourceSnapshot{}, fmt.Errorf("invalid source URL: %w", err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return SourceSnapshot{}, fmt.Errorf("unsupported URL scheme: %q", pageURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return SourceSnapshot{}, err
	}
	req.Header.Set("User-Agent", sourceUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SourceSnapshot{}, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SourceSnapshot{}, fmt.Errorf("failed to fetch source: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return SourceSnapshot{}, fmt.Errorf("failed to read source body: %w", err)
	}

	snap, err := s.fromReadability(data, pageURL)
	if err != nil || snap.Text == "" {
		slog.WarnContext(ctx, "readability extraction failed, falling back to paragraphs", "url", rawURL, "error", err)
		snap, err = s.fromParagraphs(data)
		if err != nil {
			return SourceSnapshot{}, err
		}
	}
	return snap, nil
}

func (s *SourceReader) fromReadability(data []byte, pageURL *url.URL) (SourceSnapshot, error) {
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return SourceSnapshot{}, err
	}
	return SourceSnapshot{
		Title:   strings.TrimSpace(article.Title),
		Excerpt: collapseSpace(article.Excerpt),
		Text:    truncateRunes(collapseSpace(article.TextContent), s.maxChars),
	}, nil
}

func (s *SourceReader) fromParagraphs(data []byte) (SourceSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return SourceSnapshot{}, fmt.Errorf("failed to parse source HTML: %w", err)
	}
	doc.Find("script, style, noscript, svg, nav, header, footer, aside, form").Remove()

	var paras []string
	doc.Find("p, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		if t := collapseSpace(sel.Text()); t != "" {
			paras = append(paras, t)
		}
	})

	return SourceSnapshot{
		Title: collapseSpace(doc.Find("title").First().Text()),
		Text:  truncateRunes(strings.Join(paras, "\n"), s.maxChars),
	}, nil
}

func publicOnlyControl(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, address)
	}
	if !isPublicIP(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, ap.Addr())
	}
	return nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= sourceMaxRedirects {
		return fmt.Errorf("stopped after %d redirects", sourceMaxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("unsupported redirect scheme: %q", req.URL.Scheme)
	}
	if addr, err := netip.ParseAddr(req.URL.Hostname()); err == nil && !isPublicIP(addr) {
		return fmt.Errorf("%w: redirect to %s", ErrBlockedDestination, addr)
	}
	return nil
}

func isPublicIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return false
	}
	for _, p := range nonPublicPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

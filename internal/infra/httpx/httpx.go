package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultRetryMax  = 2
	DefaultRateLimit = 2.0
	DefaultLanguage  = "en-US,en;q=0.8"
)

// Options 汇总网络策略；零值字段使用默认值（RateLimit<=0 表示不限速）。
type Options struct {
	ProxyURL   string
	ImageProxy bool

	Timeout   time.Duration
	RetryMax  int
	RateLimit float64 // 每个 host 每秒请求数
	Language  string  // Accept-Language；IMDb 按它本地化标题
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryMax < 0 {
		o.RetryMax = 0
	}
	if strings.TrimSpace(o.Language) == "" {
		o.Language = DefaultLanguage
	}
	return o
}

// Transport 把“UA 池 + 代理 + keep-alive 策略 + 限速 + 有界重试”固化为统一策略。
//
// 设计目标：解析器只负责“定位片段”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	ua *uaPool

	// Limiter 为 nil 时不限速；每次尝试（含重试）都要先拿到令牌。
	Limiter *HostLimiter

	// Language 非空时作为默认 Accept-Language。
	Language string

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 {
		max = 0
	}
	if !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context(), req.URL.Host); err != nil {
				return nil, err
			}
		}
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.ua != nil {
			r.Header.Set("User-Agent", t.ua.random())
		}
		if r.Header.Get("Accept-Language") == "" && t.Language != "" {
			r.Header.Set("Accept-Language", t.Language)
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误（更可解释）。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// HostLimiter 按 host 分别限速（页面与图片 CDN 互不影响）。
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter 返回每个 host 每秒 rps 次、不允许突发的限速器；rps<=0 返回 nil（不限速）。
func NewHostLimiter(rps float64) *HostLimiter {
	if rps <= 0 {
		return nil
	}
	return &HostLimiter{limiters: make(map[string]*rate.Limiter), rps: rps}
}

// Wait 阻塞到 host 允许下一次请求；ctx 取消时返回错误。
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	h.mu.Lock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = l
	}
	h.mu.Unlock()
	return l.Wait(ctx)
}

// NewMetaClient 构造用于页面抓取的 HTTP client。
//
// 规则：
// - ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - 内置 UA 池：每个请求随机 UA
// - 有界重试 + 总超时
func NewMetaClient(o Options, lim *HostLimiter) (*http.Client, error) {
	return newClient(o.withDefaults(), strings.TrimSpace(o.ProxyURL), lim)
}

// NewImageClient 构造用于封面下载的 HTTP client。
//
// 规则：
// - ImageProxy=false：图片直连（忽略 ProxyURL）
// - ImageProxy=true：图片走 ProxyURL，且禁用 keep-alive（每请求新连接）
func NewImageClient(o Options, lim *HostLimiter) (*http.Client, error) {
	o = o.withDefaults()
	if !o.ImageProxy {
		return newClient(o, "", lim)
	}
	proxyURL := strings.TrimSpace(o.ProxyURL)
	if proxyURL == "" {
		return nil, errors.New("image_proxy=true 但 proxy.url 为空")
	}
	return newClient(o, proxyURL, lim)
}

func newClient(o Options, proxyURL string, lim *HostLimiter) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	disableKeepAlives := false

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		ua:                globalUA,
		Limiter:           lim,
		Language:          o.Language,
		RetryMax:          o.RetryMax,
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   o.Timeout,
	}, nil
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:130.0) Gecko/20100101 Firefox/130.0",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}

package httpx

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/John-Robertt/imdbmeta/internal/provider"
)

func TestNewMetaClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewMetaClient(Options{ProxyURL: "http://127.0.0.1:8080"}, nil)
	require.NoError(t, err)
	tr, ok := c.Transport.(*Transport)
	require.True(t, ok, "期望 *Transport，实际 %T", c.Transport)
	assert.NotNil(t, tr.Base.Proxy, "期望启用代理")
	assert.True(t, tr.Base.DisableKeepAlives, "期望禁用 keep-alive")
	assert.True(t, tr.DisableKeepAlives, "期望设置 Request.Close=true 的额外保险")
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.Equal(t, DefaultLanguage, tr.Language)
}

func TestNewMetaClient_NoProxyKeepsDefault(t *testing.T) {
	c, err := NewMetaClient(Options{Timeout: time.Second, RetryMax: 3}, nil)
	require.NoError(t, err)
	tr := c.Transport.(*Transport)
	assert.Nil(t, tr.Base.Proxy)
	assert.False(t, tr.Base.DisableKeepAlives)
	assert.Equal(t, time.Second, c.Timeout)
	assert.Equal(t, 3, tr.RetryMax)
}

func TestNewImageClient_ImageProxySwitch(t *testing.T) {
	c1, err := NewImageClient(Options{ProxyURL: "http://127.0.0.1:8080"}, nil)
	require.NoError(t, err)
	tr1 := c1.Transport.(*Transport)
	assert.Nil(t, tr1.Base.Proxy, "image_proxy=false 时不应走代理")
	assert.False(t, tr1.Base.DisableKeepAlives)

	c2, err := NewImageClient(Options{ProxyURL: "http://127.0.0.1:8080", ImageProxy: true}, nil)
	require.NoError(t, err)
	tr2 := c2.Transport.(*Transport)
	assert.NotNil(t, tr2.Base.Proxy, "image_proxy=true 时应走代理")
	assert.True(t, tr2.Base.DisableKeepAlives)

	_, err = NewImageClient(Options{ImageProxy: true}, nil)
	require.Error(t, err)
}

func TestNewMetaClient_InvalidProxyURL(t *testing.T) {
	_, err := NewMetaClient(Options{ProxyURL: "http://[::1"}, nil)
	require.Error(t, err)
}

type failingRT struct {
	calls atomic.Int32
	fail  int32
}

func (f *failingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.fail {
		return nil, errors.New("temporary")
	}
	return &http.Response{StatusCode: 200, Body: http.NoBody, Request: req}, nil
}

func TestTransport_RetriesGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	// 先用不可达地址让前两次失败，再确认最终成功。
	var calls atomic.Int32
	base := &http.Transport{}
	base.RegisterProtocol("flaky", roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if calls.Add(1) <= 2 {
			return nil, errors.New("temporary")
		}
		r2 := r.Clone(r.Context())
		r2.URL.Scheme = "http"
		return http.DefaultTransport.RoundTrip(r2)
	}))
	tr := &Transport{Base: base, ua: globalUA, RetryMax: 2}

	req, err := http.NewRequest(http.MethodGet, "flaky"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransport_DoesNotRetryPOST(t *testing.T) {
	var calls atomic.Int32
	base := &http.Transport{}
	base.RegisterProtocol("flaky", roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("temporary")
	}))
	tr := &Transport{Base: base, RetryMax: 5}

	req, err := http.NewRequest(http.MethodPost, "flaky://x/", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	_, err = tr.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestHostLimiter(t *testing.T) {
	assert.Nil(t, NewHostLimiter(0))

	l := NewHostLimiter(1000)
	require.NoError(t, l.Wait(context.Background(), "a"))
	require.NoError(t, l.Wait(context.Background(), "b"))

	slow := NewHostLimiter(0.001)
	require.NoError(t, slow.Wait(context.Background(), "h"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, slow.Wait(ctx, "h"), "第二次请求应当被限速直到 ctx 超时")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClient_FetchTextAndImage(t *testing.T) {
	img := pngBytes(t)
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/title/tt1/":
			gotUA = r.Header.Get("User-Agent")
			gotLang = r.Header.Get("Accept-Language")
			_, _ = w.Write([]byte("<h1>T</h1>"))
		case "/cover.png":
			_, _ = w.Write(img)
		case "/blocked":
			w.Header().Set("Location", "/captcha")
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(Options{RateLimit: 1000}, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	page, err := c.FetchText(ctx, srv.URL+"/title/tt1/")
	require.NoError(t, err)
	assert.Equal(t, "<h1>T</h1>", page)
	assert.NotEmpty(t, gotUA)
	assert.Equal(t, DefaultLanguage, gotLang)

	cover, err := c.FetchImage(ctx, srv.URL+"/cover.png")
	require.NoError(t, err)
	defer cover.Release()
	assert.Equal(t, "png", cover.Format())

	_, err = c.FetchText(ctx, srv.URL+"/blocked")
	var se *provider.HTTPStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, "/captcha", se.Location)

	_, err = c.FetchImage(ctx, srv.URL+"/title/tt1/")
	require.Error(t, err, "HTML 不能当作封面")
}

func TestClient_FromCustomClients(t *testing.T) {
	rt := &failingRT{}
	hc := &http.Client{Transport: rt}
	c := NewClientFrom(hc, hc, nil)
	_, err := c.FetchText(context.Background(), "http://example.test/")
	require.NoError(t, err)
	assert.Equal(t, int32(1), rt.calls.Load())
}

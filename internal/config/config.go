package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/John-Robertt/imdbmeta/internal/infra/httpx"
	"github.com/John-Robertt/imdbmeta/internal/tags"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是自动发现的配置文件名（不含扩展名；json/yaml/toml 均可）。
	FileName = "imdbmeta"
	// EnvPrefix 是环境变量前缀，例如 IMDBMETA_PROXY_URL。
	EnvPrefix = "IMDBMETA"

	DefaultCoverName = "Cover.jpg"
	DefaultTagsName  = "Tags.xml"
	DefaultNFOName   = "movie.nfo"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	ConfigFile string
	OutDir     string

	Apply    bool
	ApplySet bool

	Debug bool
}

// FileConfig 对应配置文件 / 环境变量的解析结构。
type FileConfig struct {
	OutDir     string        `mapstructure:"out_dir"`
	Apply      bool          `mapstructure:"apply"`
	CoverName  string        `mapstructure:"cover_name"`
	TagsName   string        `mapstructure:"tags_name"`
	NFO        bool          `mapstructure:"nfo"`
	Overwrite  bool          `mapstructure:"overwrite"`
	Proxy      ProxyConfig   `mapstructure:"proxy"`
	ImageProxy bool          `mapstructure:"image_proxy"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryMax   int           `mapstructure:"retry_max"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	Language   string        `mapstructure:"language"`
	Cache      bool          `mapstructure:"cache"`
	Tags       tags.Names    `mapstructure:"tags"`
	Log        LogConfig     `mapstructure:"log"`
}

type ProxyConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Source string // 实际读取的配置文件；未使用文件时为空

	OutDir string
	Apply  bool

	CoverName string
	TagsName  string
	NFO       bool
	Overwrite bool

	ProxyURL   string
	ImageProxy bool
	Timeout    time.Duration
	RetryMax   int
	RateLimit  float64
	Language   string

	Cache bool
	Tags  tags.Names
	Debug bool
}

// HTTPOptions 把网络相关字段交给 httpx。
func (e EffectiveConfig) HTTPOptions() httpx.Options {
	return httpx.Options{
		ProxyURL:   e.ProxyURL,
		ImageProxy: e.ImageProxy,
		Timeout:    e.Timeout,
		RetryMax:   e.RetryMax,
		RateLimit:  e.RateLimit,
		Language:   e.Language,
	}
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	d := tags.DefaultNames()
	v.SetDefault("out_dir", "")
	v.SetDefault("apply", false)
	v.SetDefault("cover_name", DefaultCoverName)
	v.SetDefault("tags_name", DefaultTagsName)
	v.SetDefault("nfo", true)
	v.SetDefault("overwrite", false)
	v.SetDefault("proxy.url", "")
	v.SetDefault("image_proxy", false)
	v.SetDefault("timeout", httpx.DefaultTimeout.String())
	v.SetDefault("retry_max", httpx.DefaultRetryMax)
	v.SetDefault("rate_limit", httpx.DefaultRateLimit)
	v.SetDefault("language", httpx.DefaultLanguage)
	v.SetDefault("cache", false)
	v.SetDefault("tags.title", d.Title)
	v.SetDefault("tags.years", d.Years)
	v.SetDefault("tags.genres", d.Genres)
	v.SetDefault("tags.directors", d.Directors)
	v.SetDefault("tags.writers", d.Writers)
	v.SetDefault("tags.cast", d.Cast)
	v.SetDefault("tags.languages", d.Languages)
	v.SetDefault("tags.subtitles", d.Subtitles)
	v.SetDefault("log.development", false)
}

// LoadEffective 读取配置（文件 + 环境变量 + 默认值），然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/imdbmeta.{json,yaml,toml}（可选）
//
// 覆盖优先级（固定）：
// - out_dir：CLI > 环境变量 > 配置文件 > cwd
// - apply：CLI --apply/--apply=false > 环境变量 > 配置文件 > 默认 false
// - 其他字段：仅由 环境变量/配置文件 控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if p := strings.TrimSpace(cli.ConfigFile); p != "" {
		p = absCleanFrom(cwdAbs, p)
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: p, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		v.SetConfigFile(p)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(cwdAbs)
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: v.ConfigFileUsed(), Err: err}
		}
	}
	source := v.ConfigFileUsed()

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: source, Err: err}
	}
	return merge(cwdAbs, cli, fc, source)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, source string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: source, Err: fmt.Errorf(format, args...)}
	}

	// out_dir：CLI > config > cwd；相对路径以 cwd 为基准。
	outDir := cwdAbs
	if strings.TrimSpace(cli.OutDir) != "" {
		outDir = absCleanFrom(cwdAbs, cli.OutDir)
	} else if strings.TrimSpace(fc.OutDir) != "" {
		outDir = absCleanFrom(cwdAbs, fc.OutDir)
	}

	apply := fc.Apply
	if cli.ApplySet {
		apply = cli.Apply
	}

	for key, name := range map[string]string{"cover_name": fc.CoverName, "tags_name": fc.TagsName} {
		if err := validateFileName(name); err != nil {
			return invalid("%s 无效：%w", key, err)
		}
	}
	if strings.EqualFold(fc.CoverName, fc.TagsName) {
		return invalid("cover_name 与 tags_name 不能相同：%q", fc.CoverName)
	}

	proxyURL := strings.TrimSpace(fc.Proxy.URL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return invalid("proxy.url 无效：%w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return invalid("proxy.url 必须包含 scheme 与 host：%q", proxyURL)
		}
	}
	if fc.ImageProxy && proxyURL == "" {
		return invalid("image_proxy=true 但 proxy.url 为空")
	}

	if fc.Timeout <= 0 {
		return invalid("timeout 必须大于 0：%s", fc.Timeout)
	}
	// 文档约定：retry_max 范围 [0, 5]；超出截断。
	retryMax := fc.RetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	if retryMax > 5 {
		retryMax = 5
	}
	if fc.RateLimit < 0 {
		return invalid("rate_limit 不能为负数：%v", fc.RateLimit)
	}
	if strings.TrimSpace(fc.Language) == "" {
		return invalid("language 不能为空")
	}
	if key := fc.Tags.Empty(); key != "" {
		return invalid("tags.%s 不能为空", key)
	}

	return EffectiveConfig{
		Source:     source,
		OutDir:     outDir,
		Apply:      apply,
		CoverName:  fc.CoverName,
		TagsName:   fc.TagsName,
		NFO:        fc.NFO,
		Overwrite:  fc.Overwrite,
		ProxyURL:   proxyURL,
		ImageProxy: fc.ImageProxy,
		Timeout:    fc.Timeout,
		RetryMax:   retryMax,
		RateLimit:  fc.RateLimit,
		Language:   strings.TrimSpace(fc.Language),
		Cache:      fc.Cache,
		Tags:       fc.Tags,
		Debug:      cli.Debug || fc.Log.Development,
	}, nil
}

// validateFileName 只允许不含目录分隔符的普通文件名。
func validateFileName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("不能为空")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("必须是文件名而不是路径：%q", name)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

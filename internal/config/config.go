package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/docark/internal/sheet"
)

const (
	// ErrCodeNotFound 表示找不到 docark.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultStartRow     = 2
	DefaultBudget       = 5 * time.Minute
	DefaultContinuation = time.Minute
	DefaultStateDB      = "docark.db"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 保证覆盖优先级可实现。
type CLIArgs struct {
	ConfigPath string

	Worksheet    string
	WorksheetSet bool
}

// FileConfig 对应 docark.json 的解析结构。
type FileConfig struct {
	Workbook  string         `json:"workbook"`
	Worksheet string         `json:"worksheet"`
	Columns   *ColumnsConfig `json:"columns"`
	StartRow  int            `json:"start_row"`
	Budget    int            `json:"budget_seconds"`
	Delay     int            `json:"continuation_delay_seconds"`
	StateDB   string         `json:"state_db"`
	Archive   *ArchiveConfig `json:"archive"`
	Proxy     *ProxyConfig   `json:"proxy"`
}

type ColumnsConfig struct {
	Source    string `json:"source"`
	Extracted string `json:"extracted"`
	Result    string `json:"result"`
}

type ArchiveConfig struct {
	Kind   string `json:"kind"` // "dir" 或 "s3"
	Dir    string `json:"dir"`
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
	Region string `json:"region"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Workbook  string
	Worksheet string
	Columns   sheet.Columns
	StartRow  int

	// Budget 是软性时间上限，必须严格小于宿主环境的硬性执行上限，
	// 留出续跑交接的时间窗（参考系统：5 分钟软上限对 6 分钟硬上限）。
	Budget time.Duration
	// Delay 是续跑票据的延迟。
	Delay time.Duration

	StateDB string

	ArchiveKind   string
	ArchiveDir    string
	ArchiveBucket string
	ArchivePrefix string
	ArchiveRegion string

	ProxyURL string
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
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
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

// LoadEffective 发现并读取配置文件，与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：读取该文件（必须存在）
// 2) 否则：读取 <cwd>/docark.json（必须存在）
//
// 覆盖优先级：worksheet：CLI > config；其余字段仅由 config 控制。
// 相对路径（workbook/state_db/archive.dir）相对配置文件所在目录解析。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, "docark.json")
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	var fc FileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(filepath.Dir(cfgPath), cli, fc, cfgPath)
}

func merge(baseDir string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	workbook := strings.TrimSpace(fc.Workbook)
	if workbook == "" {
		return invalid(fmt.Errorf("缺少必填字段 workbook"))
	}
	workbook = absCleanFrom(baseDir, workbook)

	// worksheet：CLI > config。续跑时会被已持久化的会话覆盖（引擎层处理）。
	worksheet := strings.TrimSpace(fc.Worksheet)
	if cli.WorksheetSet {
		worksheet = strings.TrimSpace(cli.Worksheet)
	}
	if worksheet == "" {
		return invalid(fmt.Errorf("缺少 worksheet（配置或 --worksheet）"))
	}

	cols, err := resolveColumns(fc.Columns)
	if err != nil {
		return invalid(err)
	}

	startRow := fc.StartRow
	if startRow == 0 {
		startRow = DefaultStartRow
	}
	if startRow < 1 {
		return invalid(fmt.Errorf("start_row 必须 >= 1，实际 %d", fc.StartRow))
	}

	budget := DefaultBudget
	if fc.Budget != 0 {
		if fc.Budget < 0 {
			return invalid(fmt.Errorf("budget_seconds 必须为正，实际 %d", fc.Budget))
		}
		budget = time.Duration(fc.Budget) * time.Second
	}

	delay := DefaultContinuation
	if fc.Delay != 0 {
		if fc.Delay < 0 {
			return invalid(fmt.Errorf("continuation_delay_seconds 必须为正，实际 %d", fc.Delay))
		}
		delay = time.Duration(fc.Delay) * time.Second
	}

	stateDB := strings.TrimSpace(fc.StateDB)
	if stateDB == "" {
		stateDB = DefaultStateDB
	}
	stateDB = absCleanFrom(baseDir, stateDB)

	eff := EffectiveConfig{
		Workbook:  workbook,
		Worksheet: worksheet,
		Columns:   cols,
		StartRow:  startRow,
		Budget:    budget,
		Delay:     delay,
		StateDB:   stateDB,
	}

	if fc.Archive == nil {
		return invalid(fmt.Errorf("缺少必填字段 archive"))
	}
	switch strings.TrimSpace(fc.Archive.Kind) {
	case "dir":
		dir := strings.TrimSpace(fc.Archive.Dir)
		if dir == "" {
			return invalid(fmt.Errorf("archive.kind=dir 但 archive.dir 为空"))
		}
		eff.ArchiveKind = "dir"
		eff.ArchiveDir = absCleanFrom(baseDir, dir)
	case "s3":
		bucket := strings.TrimSpace(fc.Archive.Bucket)
		if bucket == "" {
			return invalid(fmt.Errorf("archive.kind=s3 但 archive.bucket 为空"))
		}
		eff.ArchiveKind = "s3"
		eff.ArchiveBucket = bucket
		eff.ArchivePrefix = strings.Trim(strings.TrimSpace(fc.Archive.Prefix), "/")
		eff.ArchiveRegion = strings.TrimSpace(fc.Archive.Region)
	case "":
		return invalid(fmt.Errorf("archive.kind 不能为空（dir 或 s3）"))
	default:
		return invalid(fmt.Errorf("archive.kind 只能是 dir 或 s3，实际 %q", fc.Archive.Kind))
	}

	if fc.Proxy != nil {
		proxyURL := strings.TrimSpace(fc.Proxy.URL)
		if proxyURL != "" {
			if _, err := url.Parse(proxyURL); err != nil {
				return invalid(fmt.Errorf("proxy.url 无效：%w", err))
			}
		}
		eff.ProxyURL = proxyURL
	}

	return eff, nil
}

func resolveColumns(cc *ColumnsConfig) (sheet.Columns, error) {
	source, extracted, result := "A", "B", "C"
	if cc != nil {
		if strings.TrimSpace(cc.Source) != "" {
			source = cc.Source
		}
		if strings.TrimSpace(cc.Extracted) != "" {
			extracted = cc.Extracted
		}
		if strings.TrimSpace(cc.Result) != "" {
			result = cc.Result
		}
	}

	var cols sheet.Columns
	var err error
	if cols.Source, err = sheet.ColumnIndex(source); err != nil {
		return sheet.Columns{}, fmt.Errorf("columns.source：%w", err)
	}
	if cols.Extracted, err = sheet.ColumnIndex(extracted); err != nil {
		return sheet.Columns{}, fmt.Errorf("columns.extracted：%w", err)
	}
	if cols.Result, err = sheet.ColumnIndex(result); err != nil {
		return sheet.Columns{}, fmt.Errorf("columns.result：%w", err)
	}
	if cols.Source == cols.Extracted || cols.Source == cols.Result || cols.Extracted == cols.Result {
		return sheet.Columns{}, fmt.Errorf("三个列标必须互不相同：source=%s extracted=%s result=%s", source, extracted, result)
	}
	return cols, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

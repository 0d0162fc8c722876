package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

const (
	PDFModeLibrary = "library"
	PDFModeTool    = "tool"

	DjVuFormatTIFF = "tiff"
	DjVuFormatPNG  = "png"

	DefaultOutputRoot = "extracted_output"
)

type Config struct {
	OutputRoot         string `toml:"output_root"`
	TempDir            string `toml:"temp_dir"`
	StateFile          string `toml:"state_file"`
	UseMIME            bool   `toml:"use_mime"`
	PDFMode            string `toml:"pdf_mode"`
	DjVuFormat         string `toml:"djvu_format"`
	IOWorkers          int    `toml:"io_workers"`
	ProcessWorkers     int    `toml:"process_workers"`
	ToolTimeoutSeconds int    `toml:"tool_timeout_seconds"`
	Tools              Tools  `toml:"tools"`
}

// Tools holds the executable names (or absolute paths) of external tools.
type Tools struct {
	File      string `toml:"file"`
	PDFImages string `toml:"pdfimages"`
	Djvused   string `toml:"djvused"`
	DDjvu     string `toml:"ddjvu"`
	Soffice   string `toml:"soffice"`
}

func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".imgrip"
	}
	return filepath.Join(home, ".imgrip")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

func DefaultConfig() *Config {
	return &Config{
		OutputRoot:         DefaultOutputRoot,
		StateFile:          filepath.Join(Dir(), "history.db"),
		UseMIME:            true,
		PDFMode:            PDFModeLibrary,
		DjVuFormat:         DjVuFormatTIFF,
		IOWorkers:          scheduler.IOBoundCap,
		ProcessWorkers:     scheduler.ProcessBoundCap,
		ToolTimeoutSeconds: 600,
		Tools: Tools{
			File:      "file",
			PDFImages: "pdfimages",
			Djvused:   "djvused",
			DDjvu:     "ddjvu",
			Soffice:   "soffice",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Validate() error {
	switch c.PDFMode {
	case PDFModeLibrary, PDFModeTool:
	default:
		return fmt.Errorf("pdf_mode must be %q or %q, got %q", PDFModeLibrary, PDFModeTool, c.PDFMode)
	}
	switch c.DjVuFormat {
	case DjVuFormatTIFF, DjVuFormatPNG:
	default:
		return fmt.Errorf("djvu_format must be %q or %q, got %q", DjVuFormatTIFF, DjVuFormatPNG, c.DjVuFormat)
	}
	if c.IOWorkers < 1 || c.IOWorkers > scheduler.IOBoundCap {
		return fmt.Errorf("io_workers must be between 1 and %d, got %d", scheduler.IOBoundCap, c.IOWorkers)
	}
	if c.ProcessWorkers < 1 || c.ProcessWorkers > scheduler.ProcessBoundCap {
		return fmt.Errorf("process_workers must be between 1 and %d, got %d", scheduler.ProcessBoundCap, c.ProcessWorkers)
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output_root must not be empty")
	}
	return nil
}

func (c *Config) ToolTimeout() time.Duration {
	if c.ToolTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ToolTimeoutSeconds) * time.Second
}

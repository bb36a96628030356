package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/darianmavgo/csv2sqlite/converters"
	"github.com/darianmavgo/csv2sqlite/converters/common"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the application configuration.
type Config struct {
	BatchSize int    `hcl:"batch_size,optional"`
	Dialect   string `hcl:"dialect,optional"`
	Delimiter string `hcl:"delimiter,optional"`
	Quote     string `hcl:"quote,optional"`
	NoHeader  bool   `hcl:"no_header,optional"`
	Trim      bool   `hcl:"trim,optional"`
	Lenient   bool   `hcl:"lenient,optional"`
	NullValue string `hcl:"null_value,optional"`
	Encoding  string `hcl:"encoding,optional"`
	Overwrite bool   `hcl:"overwrite,optional"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize: converters.DefaultBatchSize,
		Dialect:   "excel",
	}
}

// Load reads the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	return cfg, nil
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.SetAttributeValue("dialect", cty.StringVal(cfg.Dialect))
	if cfg.Delimiter != "" {
		root.SetAttributeValue("delimiter", cty.StringVal(cfg.Delimiter))
	}
	if cfg.Quote != "" {
		root.SetAttributeValue("quote", cty.StringVal(cfg.Quote))
	}
	root.SetAttributeValue("no_header", cty.BoolVal(cfg.NoHeader))
	root.SetAttributeValue("trim", cty.BoolVal(cfg.Trim))
	root.SetAttributeValue("lenient", cty.BoolVal(cfg.Lenient))
	if cfg.NullValue != "" {
		root.SetAttributeValue("null_value", cty.StringVal(cfg.NullValue))
	}
	if cfg.Encoding != "" {
		root.SetAttributeValue("encoding", cty.StringVal(cfg.Encoding))
	}
	root.SetAttributeValue("overwrite", cty.BoolVal(cfg.Overwrite))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}

// ConversionConfig builds the reader-side configuration.
// An explicit delimiter or quote wins over the dialect preset.
func (c *Config) ConversionConfig(logger *slog.Logger) (*common.ConversionConfig, error) {
	out := &common.ConversionConfig{
		NoHeader:  c.NoHeader,
		TrimSpace: c.Trim,
		Lenient:   c.Lenient,
		NullValue: c.NullValue,
		Logger:    logger,
	}

	if c.Dialect != "" {
		d, err := common.LookupDialect(c.Dialect)
		if err != nil {
			return nil, err
		}
		out.Delimiter = d.Delimiter
		out.Quote = d.Quote
	}

	delim, detect, err := common.ParseDelimiter(c.Delimiter)
	if err != nil {
		return nil, err
	}
	if delim != 0 {
		out.Delimiter = delim
	}
	out.DetectDelimiter = detect

	if c.Quote != "" {
		q := []rune(c.Quote)
		if len(q) != 1 {
			return nil, fmt.Errorf("quote must be a single character, got %q", c.Quote)
		}
		out.Quote = q[0]
	}
	return out, nil
}

// ImportOptions builds the store-side configuration.
func (c *Config) ImportOptions(logger *slog.Logger) *converters.ImportOptions {
	return &converters.ImportOptions{
		Overwrite: c.Overwrite,
		BatchSize: c.BatchSize,
		Logger:    logger,
	}
}

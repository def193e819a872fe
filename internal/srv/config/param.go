package config

import (
	_ "embed"
	"fmt"
	"gopkg.in/yaml.v3"
	"time"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

const (
	BackendST7789  = "st7789"
	BackendSSD1306 = "ssd1306"
	BackendWindow  = "window"
	BackendFile    = "file"
	BackendNone    = "none"
)

type ServerParam struct {
	Listen       string         `yaml:"listen"`
	ApiKey       string         `yaml:"api_key"`
	Tls          bool           `yaml:"tls"`
	PollInterval Duration       `yaml:"poll_interval"`
	ImageRoot    string         `yaml:"image_root"`
	AssetsDir    string         `yaml:"assets_dir"`
	Splash       bool           `yaml:"splash"`
	IconBarColor ColorParam     `yaml:"icon_bar_color"`
	Backlight    BacklightParam `yaml:"backlight"`
	Buttons      []string       `yaml:"buttons"`
	Backend      string         `yaml:"backend"`
	ST7789       ST7789Param    `yaml:"st7789"`
	SSD1306      SSD1306Param   `yaml:"ssd1306"`
	File         FileParam      `yaml:"file"`
}

type ColorParam struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
	A int `yaml:"a"`
}

type BacklightParam struct {
	Timeout       Duration `yaml:"timeout"`
	CheckInterval Duration `yaml:"check_interval"`
}

// ST7789Param describes the Pirate Audio wiring of the panel.
type ST7789Param struct {
	SpiPort      string `yaml:"spi_port"`
	DcPin        string `yaml:"dc_pin"`
	ResetPin     string `yaml:"reset_pin"`
	BacklightPin string `yaml:"backlight_pin"`
	SpeedHz      int64  `yaml:"speed_hz"`
	Rotation     int    `yaml:"rotation"`
}

type SSD1306Param struct {
	I2cBus string `yaml:"i2c_bus"`
}

type FileParam struct {
	Path string `yaml:"path"`
}

// Duration is a time.Duration written as "300s", "1m30s"... in YAML.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultServerParam returns the parameters of the embedded default param file.
func DefaultServerParam() *ServerParam {
	serverParam, err := ParseServerParam(ParamDefaultFile)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded param file: %v", err))
	}
	return serverParam
}

// ParseServerParam reads a param file on top of the defaults, so that missing keys keep their
// default value.
func ParseServerParam(rawConfig []byte) (*ServerParam, error) {
	serverParam := &ServerParam{}
	if err := yaml.Unmarshal(ParamDefaultFile, serverParam); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(rawConfig, serverParam); err != nil {
		return nil, err
	}
	if err := serverParam.Validate(); err != nil {
		return nil, err
	}
	return serverParam, nil
}

func (p *ServerParam) Validate() error {
	switch p.Backend {
	case BackendST7789, BackendSSD1306, BackendWindow, BackendFile, BackendNone:
	default:
		return fmt.Errorf("unknown backend %q", p.Backend)
	}
	if p.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if p.Backlight.Timeout <= 0 || p.Backlight.CheckInterval <= 0 {
		return fmt.Errorf("backlight timeout and check_interval must be positive")
	}
	switch p.ST7789.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("st7789 rotation must be 0, 90, 180 or 270, not %d", p.ST7789.Rotation)
	}
	return nil
}

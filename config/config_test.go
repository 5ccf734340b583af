package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "0123456789abcdef-secret"
telephony:
  flow_id: "FW123"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Prefs.Timezone != "America/Anchorage" || cfg.Prefs.StartDay != "22:00" {
		t.Errorf("偏好默认值不正确: %+v", cfg.Prefs)
	}
	if cfg.Telephony.Timeout != 10*time.Second {
		t.Errorf("期望外呼超时 10s，实际=%s", cfg.Telephony.Timeout)
	}
	if !cfg.Telephony.Enabled() {
		t.Error("配置 flow_id 后外呼应启用")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "0123456789abcdef-secret"
`)
	t.Setenv("SHELTER_PREFS_START_DAY", "23:30")
	t.Setenv("SHELTER_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Prefs.StartDay != "23:30" {
		t.Errorf("期望环境变量覆盖 start_day=23:30，实际=%s", cfg.Prefs.StartDay)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望环境变量覆盖端口 9090，实际=%d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080},
			Auth:      AuthConfig{JWTSecret: "0123456789abcdef"},
			Telephony: TelephonyConfig{Timeout: time.Second, Concurrency: 1},
			Prefs: PrefsConfig{
				AppID: "test", Timezone: "UTC",
				OpenTime: "20:00", CloseTime: "03:00", StartDay: "22:00",
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("合法配置校验失败: %v", err)
	}

	cases := map[string]func(c *Config){
		"jwt_secret 过短":  func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":           func(c *Config) { c.Server.Port = 70000 },
		"外呼超时为 0":        func(c *Config) { c.Telephony.Timeout = 0 },
		"并发为 0":          func(c *Config) { c.Telephony.Concurrency = 0 },
		"时区无效":           func(c *Config) { c.Prefs.Timezone = "Mars/Olympus" },
		"cutoff 无法解析":    func(c *Config) { c.Prefs.StartDay = "late" },
		"open_time 无法解析": func(c *Config) { c.Prefs.OpenTime = "25:61" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

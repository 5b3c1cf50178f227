package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port             int     `yaml:"port"`
	BackendURL       string  `yaml:"backendURL"`
	VerifyPath       string  `yaml:"verifyPath"`
	AssessPath       string  `yaml:"assessPath"`
	Model            string  `yaml:"model"`
	USDToTHBRate     float64 `yaml:"usdToThbRate"`
	RequestTimeout   int     `yaml:"requestTimeout"`  // seconds, 0 means no client-side timeout
	SessionTTL       int     `yaml:"sessionTTL"`      // minutes
	ThumbnailSize    int     `yaml:"thumbnailSize"`   // pixels, longest edge
	PreviewWorkers   int     `yaml:"previewWorkers"`  // concurrent thumbnail tasks per render
	SubmitPerMinute  int     `yaml:"submitPerMinute"` // per client IP
	AllowRemote      bool    `yaml:"allowRemote"`     // serve /api/self/v1 to non-loopback clients
	NotifySocketPath string  `yaml:"notifySocketPath,omitempty"`
}

// EnvOverrides are read from CLAIMDESK_* variables and win over config.yaml.
type EnvOverrides struct {
	BackendURL   string  `envconfig:"BACKEND_URL"`
	Model        string  `envconfig:"MODEL"`
	USDToTHBRate float64 `envconfig:"USD_TO_THB_RATE"`
	Port         int     `envconfig:"PORT"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log            string
	UseConfigPath  string
	UseBackendURL  string
	UsePort        int
	UseModel       string
	UseAllowRemote bool
	LabelFiles     string // comma separated, enables one-shot mode together with DamageFiles
	DamageFiles    string
}

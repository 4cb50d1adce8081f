package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete storefront configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string `default:"0.0.0.0:8080" usage:"server listen address"`
	CatalogURL string `default:"https://dummyjson.com" usage:"base URL of the upstream product catalog" flag:"catalog-url"`
	CartPath   string `default:"cart.json" usage:"path of the persisted cart file" flag:"cart-path"`
	PageSize   int    `default:"12" usage:"product listing page size" flag:"page-size"`
	Checkout   CheckoutConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Graceful   GracefulConfig
}

// CheckoutConfig controls the simulated checkout timing.
type CheckoutConfig struct {
	ProcessingDelay time.Duration `default:"3s" usage:"artificial payment processing delay" flag:"processing-delay"`
	RedirectAfter   time.Duration `default:"3s" usage:"delay before the post-checkout redirect" flag:"redirect-after"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"max requests per window"`
	Window time.Duration `default:"1m"  usage:"rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.CatalogURL == "" {
		return nil, errors.New("catalog URL is required: set SHOP_CATALOG_URL")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the PORT variable used by hosting platforms
// onto the listen address when nothing more specific was set.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

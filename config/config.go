package config

type Config struct {
	DiscordAuth   DiscordAuth         `yaml:"discord_auth" validate:"required"`
	BagiBagi      BagiBagi            `yaml:"bagibagi" validate:"required"`
	WebhookServer WebhookServer       `yaml:"webhook_server" validate:"required"`
	Obfuscator    Obfuscator          `yaml:"obfuscator" validate:"required"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage" validate:"required"`
	Meta          Meta                `yaml:"meta" validate:"required"`
}

type DiscordAuth struct {
	Token         string   `yaml:"token" comment:"Discord bot token" validate:"required"`
	AllowedGuilds []string `yaml:"allowed_guilds" comment:"Guild IDs the moderation/license commands may be used in" validate:"required"`
}

type BagiBagi struct {
	BotID       string `yaml:"bot_id" comment:"User ID of the BagiBagi notification bot whose messages are parsed" validate:"required"`
	VPSURL      string `yaml:"vps_url" default:"http://127.0.0.1:8080" comment:"Base URL donations are relayed to ({vps_url}/donation/{userKey}/webhook)" validate:"required"`
	Platform    string `yaml:"platform" default:"bagibagi" comment:"Platform name sent in the relay payload" validate:"required"`
	DefaultRate int64  `yaml:"default_rate" default:"100" comment:"Default rupiah-per-koin rate for new customers" validate:"required,min=1"`
}

type WebhookServer struct {
	URL            string `yaml:"url" comment:"Base URL of the webhook admin server" validate:"required"`
	MasterKey      string `yaml:"master_key" comment:"Shared secret sent as X-Master-Key on /admin/users/register" validate:"required"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"10" comment:"HTTP client timeout for registrar and relay calls" validate:"required,min=1"`
}

type Obfuscator struct {
	LuaPath        string `yaml:"lua_path" default:"lua" comment:"Lua interpreter used to run Prometheus" validate:"required"`
	PrometheusPath string `yaml:"prometheus_path" default:"prometheus" comment:"Directory containing prometheus.lua" validate:"required"`
	TempDir        string `yaml:"temp_dir" default:"temp" comment:"Scratch directory for obfuscation sessions" validate:"required"`
	MaxFileSize    int64  `yaml:"max_file_size" default:"512000" comment:"Maximum accepted .lua file size in bytes" validate:"required,min=1"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"60" comment:"Obfuscation subprocess timeout" validate:"required,min=1"`
}

type ObjectStorageConfig struct {
	Type        string `yaml:"type" default:"local" comment:"Must be one of s3-like or local" validate:"required,oneof=s3-like local"`
	Path        string `yaml:"path" default:"attachments" comment:"If s3-like, this should be the name of the bucket. Otherwise, the path to store to"`
	Endpoint    string `yaml:"endpoint" comment:"Only for s3-like, the endpoint to the bucket"`
	CdnEndpoint string `yaml:"cdn_endpoint" comment:"Only for s3-like, the CDN endpoint to the bucket"`
	Secure      bool   `yaml:"secure" comment:"Only for s3-like, whether to use a secure connection to the bucket"`
	CdnSecure   bool   `yaml:"cdn_secure" comment:"Only for s3-like, whether to use a secure connection to the CDN"`
	AccessKey   string `yaml:"access_key" comment:"Only for s3-like, the access key to the bucket"`
	SecretKey   string `yaml:"secret_key" comment:"Only for s3-like, the secret key to the bucket"`
}

type Meta struct {
	PostgresURL          string `yaml:"postgres_url" default:"postgresql:///jixabot" comment:"Postgres URL" validate:"required"`
	RedisURL             string `yaml:"redis_url" default:"redis://localhost:6379" comment:"Redis URL" validate:"required"`
	Port                 int    `yaml:"port" default:"3000" comment:"Port to run the license API on" validate:"required"`
	WebDisableRatelimits bool   `yaml:"web_disable_ratelimits" comment:"Whether to disable ratelimits on the license API"`
}

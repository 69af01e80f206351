package state

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/Vousmeveyoz/discord-jixabot/config"
	"github.com/Vousmeveyoz/discord-jixabot/donate"
	"github.com/Vousmeveyoz/discord-jixabot/obfuscator"
	"github.com/Vousmeveyoz/discord-jixabot/objectstorage"
	"github.com/Vousmeveyoz/discord-jixabot/state/redishotcache"
	"github.com/Vousmeveyoz/discord-jixabot/store"
	"github.com/Vousmeveyoz/discord-jixabot/types"
	"github.com/Vousmeveyoz/discord-jixabot/webhookreg"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/infinitybotlist/eureka/genconfig"
	"github.com/infinitybotlist/eureka/ratelimit"
	"github.com/infinitybotlist/eureka/snippets"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	Pool          *pgxpool.Pool
	Rueidis       rueidis.Client // where perf is needed
	Discord       *discordgo.Session
	Logger        *zap.Logger
	Context       = context.Background()
	Validator     = validator.New()
	BotUser       *discordgo.User
	ObjectStorage *objectstorage.ObjectStorage
	Config        *config.Config

	Licenses  store.Licenses
	Customers store.Customers

	// LicenseCache fronts the licenses table for the validate endpoint.
	LicenseCache redishotcache.RuedisHotCache[types.License]

	Registrar  *webhookreg.Registrar
	Relayer    *donate.Relayer
	Obfuscator *obfuscator.Obfuscator

	// HTTPClient is the shared outbound client. Everything that leaves
	// the process over plain HTTP (webhook server, attachment downloads)
	// goes through it so the configured timeout applies.
	HTTPClient *http.Client
)

func Setup() {
	Validator.RegisterValidation("notblank", validators.NotBlank)
	Validator.RegisterValidation("nospaces", snippets.ValidatorNoSpaces)
	Validator.RegisterValidation("https", snippets.ValidatorIsHttps)
	Validator.RegisterValidation("httporhttps", snippets.ValidatorIsHttpOrHttps)

	genconfig.GenConfig(config.Config{})

	cfg, err := os.ReadFile("config.yaml")

	if err != nil {
		panic(err)
	}

	err = yaml.Unmarshal(cfg, &Config)

	if err != nil {
		panic(err)
	}

	err = Validator.Struct(Config)

	if err != nil {
		panic("configError: " + err.Error())
	}

	Logger = snippets.CreateZap()

	// Postgres
	Pool, err = pgxpool.New(Context, Config.Meta.PostgresURL)

	if err != nil {
		panic(err)
	}

	err = store.Migrate(Context, Pool)

	if err != nil {
		panic(err)
	}

	Licenses = store.NewLicenses(Pool)
	Customers = store.NewCustomers(Pool)

	// Reuidis
	ruOptions, err := rueidis.ParseURL(Config.Meta.RedisURL)

	if err != nil {
		panic(err)
	}

	Rueidis, err = rueidis.NewClient(ruOptions)

	if err != nil {
		panic(err)
	}

	LicenseCache = redishotcache.RuedisHotCache[types.License]{
		Redis:  Rueidis,
		Prefix: "license__",
		For:    "licenses",
	}

	// Object Storage
	ObjectStorage, err = objectstorage.New(&Config.ObjectStorage)

	if err != nil {
		panic(err)
	}

	// Discordgo
	Discord, err = discordgo.New("Bot " + Config.DiscordAuth.Token)

	if err != nil {
		panic(err)
	}

	Discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent | discordgo.IntentsDirectMessages

	// Verify token
	bu, err := Discord.User("@me")

	if err != nil {
		panic(err)
	}

	BotUser = bu

	HTTPClient = &http.Client{
		Timeout: time.Duration(Config.WebhookServer.TimeoutSeconds) * time.Second,
	}

	Registrar = &webhookreg.Registrar{
		BaseURL:   Config.WebhookServer.URL,
		MasterKey: Config.WebhookServer.MasterKey,
		Client:    HTTPClient,
		Logger:    Logger,
	}

	Relayer = &donate.Relayer{
		BaseURL:  Config.BagiBagi.VPSURL,
		Platform: Config.BagiBagi.Platform,
		Client:   HTTPClient,
		Logger:   Logger,
	}

	Obfuscator = &obfuscator.Obfuscator{
		Config: Config.Obfuscator,
		Logger: Logger,
	}

	ratelimit.SetupState(&ratelimit.RLState{
		HotCache: redishotcache.RuedisHotCache[int]{
			Redis:    Rueidis,
			Prefix:   "rl:",
			For:      "ratelimit",
			Disabled: Config.Meta.WebDisableRatelimits,
		},
	})
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/ezamazwe/admin-gateway/pkg/admin"
	"github.com/ezamazwe/admin-gateway/pkg/auth"
	"github.com/ezamazwe/admin-gateway/pkg/identity"
	"github.com/ezamazwe/admin-gateway/pkg/notice"
	"github.com/ezamazwe/admin-gateway/pkg/notification"
	"github.com/ezamazwe/admin-gateway/pkg/subscription"
	"github.com/ezamazwe/admin-gateway/pkg/verification"
)

type GatewayDbConfig struct {
	Host     string `env:"GATEWAY_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"GATEWAY_PG_PORT" env-default:"5432"`
	Database string `env:"GATEWAY_PG_DATABASE" env-default:"admin_db"`
	User     string `env:"GATEWAY_PG_USER" env-default:"gateway"`
	Password string `env:"GATEWAY_PG_PASSWORD" env-default:"pwd"`
}

func (d GatewayDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type JwtConfig struct {
	JwtSecret string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Expiry    time.Duration `env:"JWT_EXPIRY" env-default:"8h"`
}

type SmtpConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"noreply@ezamazwe.com"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
}

type PayFastConfig struct {
	MerchantID  string `env:"PAYFAST_MERCHANT_ID"`
	MerchantKey string `env:"PAYFAST_MERCHANT_KEY"`
	Passphrase  string `env:"PAYFAST_PASSPHRASE"`
	ProcessURL  string `env:"PAYFAST_PROCESS_URL" env-default:"https://sandbox.payfast.co.za/eng/process"`
	ReturnURL   string `env:"PAYFAST_RETURN_URL"`
	CancelURL   string `env:"PAYFAST_CANCEL_URL"`
	NotifyURL   string `env:"PAYFAST_NOTIFY_URL"`
	Amount      string `env:"PAYFAST_AMOUNT" env-default:"100.00"`
	ItemName    string `env:"PAYFAST_ITEM_NAME" env-default:"Ezamazwe Edutech Premium Courses"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
}

type Config struct {
	GatewayDbConfig GatewayDbConfig
	AppConfig       app.AppConfig
	JwtConfig       JwtConfig
	SmtpConfig      SmtpConfig
	PayFastConfig   PayFastConfig
	RedisConfig     RedisConfig
	LoginURL        string        `env:"DASHBOARD_LOGIN_URL" env-default:"https://ezamazwe-edutech-cms.web.app"`
	VerifyBaseURL   string        `env:"VERIFY_BASE_URL" env-default:"https://ezamazwe-edutech-cms.web.app"`
	InfoDeskEmail   string        `env:"INFO_DESK_EMAIL" env-default:"info@ezamazwe.com"`
	TokenExpiry     time.Duration `env:"VERIFICATION_TOKEN_EXPIRY" env-default:"24h"`
	ReplayTTL       time.Duration `env:"PAYFAST_REPLAY_TTL" env-default:"72h"`
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := config.GatewayDbConfig.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	accountRepo, err := identity.NewAccountRepository("postgres", identity.RepositoryConfig{Pool: pool})
	if err != nil {
		slog.Error("Failed creating account repository", "err", err)
		os.Exit(-1)
	}

	tokenRepo, err := verification.NewTokenRepository("postgres", verification.RepositoryConfig{Pool: pool})
	if err != nil {
		slog.Error("Failed creating token repository", "err", err)
		os.Exit(-1)
	}

	profileRepo, err := subscription.NewProfileRepository("postgres", subscription.RepositoryConfig{Pool: pool})
	if err != nil {
		slog.Error("Failed creating profile repository", "err", err)
		os.Exit(-1)
	}

	var smtpConfig notification.SMTPConfig
	copier.Copy(&smtpConfig, &config.SmtpConfig)
	notificationManager, err := notice.NewNotificationManager(smtpConfig)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	claimsService := identity.NewClaimsService(accountRepo)

	verificationService := verification.NewService(
		tokenRepo,
		claimsService,
		config.VerifyBaseURL,
		verification.WithTokenExpiry(config.TokenExpiry),
	)

	jwtService := auth.NewJwtService(
		config.JwtConfig.JwtSecret,
		auth.WithExpiry(config.JwtConfig.Expiry),
	)

	adminService := admin.NewAdminService(
		accountRepo,
		claimsService,
		verificationService,
		notificationManager,
		jwtService,
		admin.WithLoginURL(config.LoginURL),
		admin.WithInfoDeskEmail(config.InfoDeskEmail),
	)
	adminHandle := admin.NewHandle(adminService)

	// Redis keeps the replay guard across instances; without an address the
	// guard falls back to process-local memory.
	var replayGuard subscription.ReplayGuard
	if config.RedisConfig.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     config.RedisConfig.Addr,
			Password: config.RedisConfig.Password,
		})
		replayGuard = subscription.NewRedisReplayGuard(redisClient, config.ReplayTTL)
	} else {
		slog.Warn("REDIS_ADDR not set, using in-memory replay guard")
		replayGuard = subscription.NewMemoryReplayGuard(config.ReplayTTL)
	}

	subscriptionService := subscription.NewService(profileRepo, replayGuard, config.PayFastConfig.Passphrase)

	var checkout subscription.CheckoutConfig
	copier.Copy(&checkout, &config.PayFastConfig)
	subscriptionHandle := subscription.NewHandle(subscriptionService, checkout)

	server.R.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "Ezamazwe Edutech admin gateway")
	})

	admin.Routes(server.R, adminHandle)
	subscription.Routes(server.R, subscriptionHandle)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		admin.ProtectedRoutes(r, adminHandle)
	})

	server.Run()

}

// Command admintoken mints a bearer token for an admin handle on the roster.
//
//	JWT_SECRET=... ADMINS=alice,bob admintoken -handle alice -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GlebRadaev/refledger/pkg/auth"
)

type options struct {
	JWTSecret string   `env:"JWT_SECRET"`
	Admins    []string `env:"ADMINS"     envSeparator:","`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()
	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatal().Err(err).Msg("can't parse environment")
	}
	if opts.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	handle := flag.String("handle", "", "admin handle")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	*handle = strings.TrimPrefix(strings.TrimSpace(*handle), "@")
	if *handle == "" {
		log.Fatal().Msg("-handle is required")
	}
	onRoster := slices.ContainsFunc(opts.Admins, func(admin string) bool {
		return strings.TrimPrefix(strings.TrimSpace(admin), "@") == *handle
	})
	if !onRoster {
		log.Warn().Str("handle", *handle).Msg("handle is not on ADMINS, the token will be rejected")
	}

	token, err := auth.NewJWTService(opts.JWTSecret).GenerateJWT(*handle, time.Now().Add(*ttl))
	if err != nil {
		log.Fatal().Err(err).Msg("can't sign token")
	}
	fmt.Println(token)
}

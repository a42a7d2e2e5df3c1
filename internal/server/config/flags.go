package config

import (
	"flag"
	"os"
	"time"

	"github.com/lastmessage-app/server/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   server secret key (JWT signing + cipher key derivation)
//	-u string   public app base URL for confirmation links
//	-k string   cycle trigger token
//	-t int      access token validity, minutes
//	-o int      per-operation timeout, seconds
//	-m string   SMTP host
//	-p int      SMTP port
//	-l string   SMTP username
//	-w string   SMTP password
//	-f string   from address for outbound mail
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-u", "-k", "-t", "-o", "-m", "-p", "-l", "-w", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AppURL, "u", config.AppURL, "public app base URL")
	fs.StringVar(&config.CycleToken, "k", config.CycleToken, "cycle trigger token")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	opTimeout := fs.Int("o", int(config.OpTimeout.Seconds()), "per-operation timeout (in seconds)")

	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "p", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "l", config.SMTPUser, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "w", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.EmailFrom, "f", config.EmailFrom, "from address for outbound mail")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.OpTimeout = time.Duration(*opTimeout) * time.Second
}

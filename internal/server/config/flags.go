package config

import (
	"flag"
	"os"
	"time"

	"github.com/mbazhenov/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-o string   client origin URL (CORS + activation redirect)
//	-u string   activation base URL
//	-s string   access token HMAC secret
//	-x string   refresh token HMAC secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-w int      bcrypt cost factor
//	-m string   SMTP host
//	-p int      SMTP port
//	-n string   SMTP username
//	-q string   SMTP password
//	-f string   SMTP sender address
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-o", "-u", "-s", "-x", "-t", "-r", "-w", "-m", "-p", "-n", "-q", "-f",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ClientURL, "o", config.ClientURL, "client origin URL")
	fs.StringVar(&config.ActivationBaseURL, "u", config.ActivationBaseURL, "activation base URL")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "x", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.IntVar(&config.PasswordHashCost, "w", config.PasswordHashCost, "bcrypt cost factor")
	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "p", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUsername, "n", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "q", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "f", config.SMTPFrom, "SMTP sender address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}

/*
Lexforged starts a lexforge compilation server and begins listening for
HTTP requests.

Usage:

	lexforged [flags]
	lexforged [flags] -l [[ADDRESS]:PORT]

By default it listens on localhost:8080. This can be changed with the
--listen/-l flag or the LEXFORGE_LISTEN_ADDRESS environment variable.

If a JWT token secret is not given, one is generated at startup and seeded
from crypto/rand. As a consequence, in this mode of operation all tokens
are rendered invalid as soon as the server shuts down - suitable for
testing, but a real secret must be given via flag or environment variable
for production use.

The flags are:

	-v, --version
		Give the current version of lexforge and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. Defaults to the value of LEXFORGE_LISTEN_ADDRESS, or
		localhost:8080 if that is unset.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. Defaults to the
		value of LEXFORGE_TOKEN_SECRET, or a randomly generated secret if
		that is unset or empty.

	-u, --user USERNAME
		The operator username required to log in. Defaults to "admin" or
		the value of LEXFORGE_USER.

	-p, --password PASSWORD
		The operator password required to log in. Defaults to the value of
		LEXFORGE_PASSWORD; if neither is set, a random password is
		generated and printed once at startup.

	--db DRIVER[:PATH]
		Use the given DB connection string. DRIVER must be "inmem" or
		"sqlite"; sqlite takes the path to the database file, e.g.
		"sqlite:lexforge.db". Defaults to LEXFORGE_DATABASE, or "inmem" if
		that is unset.
*/
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lexforge/internal/lfserver"
	"github.com/dekarrin/lexforge/internal/version"
)

const (
	EnvListen   = "LEXFORGE_LISTEN_ADDRESS"
	EnvSecret   = "LEXFORGE_TOKEN_SECRET"
	EnvUser     = "LEXFORGE_USER"
	EnvPassword = "LEXFORGE_PASSWORD"
	EnvDB       = "LEXFORGE_DATABASE"
)

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Give the current version of lexforge and then exit.")
	flagListen   = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagUser     = pflag.StringP("user", "u", "", "The operator username required to log in.")
	flagPassword = pflag.StringP("password", "p", "", "The operator password required to log in.")
	flagDB       = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintln(os.Stderr, "Too many arguments\nDo -h for help.")
		os.Exit(1)
	}

	addr, port, err := resolveListenAddr()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	store, err := resolveStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	secret, generated, err := resolveSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if generated {
		log.Printf("WARN  using generated token secret; all tokens issued will become invalid at shutdown")
	}

	creds, generatedPass, err := resolveCredentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if generatedPass != "" {
		log.Printf("WARN  no password configured; generated one-time password for user %q: %s", creds.Username, generatedPass)
	}

	srv, err := lfserver.New(lfserver.Config{
		Addr:   addr,
		Port:   port,
		Secret: secret,
		Creds:  creds,
		Store:  store,
	})
	if err != nil {
		log.Fatalf("FATAL could not configure server: %s", err.Error())
	}

	log.Printf("DEBUG server listening on %s:%d", addr, port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

func resolveListenAddr() (string, int, error) {
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return "localhost", 8080, nil
	}

	parts := strings.SplitN(listenAddr, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("listen address is not in ADDRESS:PORT or :PORT format")
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", parts[1])
	}
	return parts[0], port, nil
}

func resolveStore() (lfserver.Store, error) {
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr == "" || dbConnStr == "inmem" {
		return lfserver.NewMemStore(), nil
	}

	parts := strings.SplitN(dbConnStr, ":", 2)
	if len(parts) != 2 || parts[0] != "sqlite" {
		return nil, fmt.Errorf("unsupported DB connection string: %q", dbConnStr)
	}
	return lfserver.NewSQLiteStore(parts[1])
}

func resolveSecret() ([]byte, bool, error) {
	secretStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secretStr = *flagSecret
	}
	if secretStr != "" {
		return []byte(secretStr), false, nil
	}

	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		return nil, false, fmt.Errorf("could not generate token secret: %w", err)
	}
	return secret, true, nil
}

func resolveCredentials() (lfserver.Credentials, string, error) {
	username := os.Getenv(EnvUser)
	if pflag.Lookup("user").Changed {
		username = *flagUser
	}
	if username == "" {
		username = "admin"
	}

	password := os.Getenv(EnvPassword)
	if pflag.Lookup("password").Changed {
		password = *flagPassword
	}

	var generated string
	if password == "" {
		buf := make([]byte, 18)
		if _, err := rand.Read(buf); err != nil {
			return lfserver.Credentials{}, "", fmt.Errorf("could not generate password: %w", err)
		}
		password = base64.RawURLEncoding.EncodeToString(buf)
		generated = password
	}

	hash, err := lfserver.HashPassword(password)
	if err != nil {
		return lfserver.Credentials{}, "", err
	}
	return lfserver.Credentials{Username: username, PasswordHash: hash}, generated, nil
}

package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

var lookupEnv = os.LookupEnv

// parseEnv overlays the deployment environment. DB_HOSTNAME, DB_USERNAME,
// DB_PASSWORD and DB_NAME patch the corresponding parts of DatabaseDSN;
// DATABASE_DSN replaces it outright. JWT_SECRET sets SecretKey.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {

	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}

	host, hasHost := lookup("DB_HOSTNAME")
	user, hasUser := lookup("DB_USERNAME")
	pass, hasPass := lookup("DB_PASSWORD")
	name, hasName := lookup("DB_NAME")

	if hasHost || hasUser || hasPass || hasName {
		u, err := url.Parse(config.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("parse database dsn: %w", err)
		}

		if hasHost {
			u.Host = withDefaultPort(host, u.Port())
		}

		username := u.User.Username()
		password, _ := u.User.Password()
		if hasUser {
			username = user
		}
		if hasPass {
			password = pass
		}
		u.User = url.UserPassword(username, password)

		if hasName {
			u.Path = "/" + strings.TrimPrefix(name, "/")
		}

		config.DatabaseDSN = u.String()
	}

	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		config.SecretKey = v
	}

	return nil
}

func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil || port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}

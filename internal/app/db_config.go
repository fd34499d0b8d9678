package app

import (
	"strings"

	"github.com/heavenboards/user-service/internal/database"
	"github.com/heavenboards/user-service/internal/projects"
)

// DatabaseOpenConfig converts DatabaseConfig into database.Config, picking
// the host block that matches the driver.
func (c DatabaseConfig) DatabaseOpenConfig() database.Config {
	cfg := database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:            c.Path,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}

	var block DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		block = c.Postgres
	case "mysql":
		block = c.MySQL
	default:
		return cfg
	}

	cfg.Host = block.Host
	cfg.Port = block.Port
	cfg.Name = block.Database
	cfg.User = block.Username
	cfg.Password = block.Password
	cfg.Options = block.Options
	return cfg
}

// ClientConfig converts ProjectsConfig into the Project service client config.
func (c ProjectsConfig) ClientConfig() projects.Config {
	return projects.Config{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		ServiceToken: c.ServiceToken,
	}
}

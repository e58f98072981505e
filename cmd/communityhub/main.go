// Command communityhub runs the community site server. All site branding
// and secrets come from environment variables.
package main

import (
	"log"
	"time"

	hub "github.com/afribit/communityhub"
)

func main() {
	cfg := hub.SiteConfig{
		Name:        hub.EnvOr("SITE_NAME", "Community"),
		URL:         hub.EnvOr("SITE_URL", "http://localhost:3000"),
		Description: hub.EnvOr("SITE_DESCRIPTION", ""),
		Author:      hub.EnvOr("SITE_AUTHOR", ""),

		Addr:         hub.EnvOr("ADDR", ":3000"),
		DatabasePath: hub.EnvOr("DATABASE_PATH", "data/site.db"),
		MediaDir:     hub.EnvOr("MEDIA_DIR", "data/media"),

		AdminPassword: hub.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: hub.MustEnv("SESSION_SECRET"),
		CookieSecure:  hub.EnvOr("COOKIE_SECURE", "") == "true",

		FeedCacheTTL: 5 * time.Minute,
	}

	app := hub.New(cfg, views())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

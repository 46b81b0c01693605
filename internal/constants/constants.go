package constants

import "time"

const (
	DefaultCatalogURL   = "https://raw.githubusercontent.com/cederdorff/race/refs/heads/master/data/games.json"
	DefaultFetchTimeout = 10 * time.Second
	DefaultLocale       = "da"
)

const (
	RequestTimeout = 30 * time.Second
	ReloadTimeout  = 15 * time.Second
)

const (
	HTTPReadHeaderTimeout = 5 * time.Second
	HTTPReadTimeout       = 10 * time.Second
	HTTPWriteTimeout      = 30 * time.Second
	HTTPIdleTimeout       = 2 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MaxCatalogBodySize bounds the JSON feed the client accepts.
	MaxCatalogBodySize = 8 << 20
	MaxPlayerOption    = 12
)

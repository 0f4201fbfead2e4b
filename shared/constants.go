package shared

const (
	DEFAULT_BRANCH        = "public"
	DEFAULT_CACHE_FILE    = "app_cache.json"
	DEFAULT_CACHE_DB      = "app_cache.db"
	DEFAULT_KEYRING       = "DepotDownloader"
	DEFAULT_STEAM_API_URL = "https://api.steampowered.com"
	DEFAULT_STEAMDB_URL   = "https://steamdb.info"

	// SteamDB refuses obvious bots so depot pages are fetched as a desktop browser
	BROWSER_USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:91.0) Gecko/20100101 Firefox/91.0"
	USER_AGENT         = "Depotfinder/1.0 <github.com/marcus-crane/depotfinder>"
)

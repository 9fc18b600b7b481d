// Package constants defines shared constant values.
package constants

// AppName is the project identifier used in logs, paths and metadata.
const AppName = "minepkg"

// CommandName is the primary CLI command name.
const CommandName = "minepkg"

const ManifestFileName = "minepkg.toml"

// CacheFileName is the snapshot of the full catalog kept in the data directory.
const CacheFileName = "complete.json.sz"

const DefaultFeedURL = "https://clientupdate-v6.cursecdn.com/feed/addons/432/v10/complete.json.bz2"

const DefaultMetadataURL = "https://cursemeta.dries007.net"

// EnvPrefix prefixes every environment variable minepkg reads.
const EnvPrefix = "MINEPKG"

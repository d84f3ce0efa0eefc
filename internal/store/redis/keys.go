package redis

const (
	// KeyPrefixSync is the prefix for synced keys
	KeyPrefixSync = "tabkeep:sync:"
	// KeyPrefixLocal is the prefix for local (per-install) keys
	KeyPrefixLocal = "tabkeep:local:"
	// ChangeChannel is the pub/sub channel carrying storage-change events
	ChangeChannel = "tabkeep:changes"
)

// SyncKey returns the Redis key for a synced logical key
func SyncKey(name string) string {
	return KeyPrefixSync + name
}

// LocalKey returns the Redis key for a local logical key
func LocalKey(name string) string {
	return KeyPrefixLocal + name
}

package consts

const (
	// UserInfoKey prefixes cached user info entries in redis.
	UserInfoKey = "pledge:user:info:"

	// TokenKeyPrefix prefixes registered access tokens in redis.
	TokenKeyPrefix = "pledge:user:token:"
)

const (
	// PlatformGitHub is the only code platform currently synced.
	PlatformGitHub = "github"
)

const (
	// DevBypassInviteCode is accepted by the invite claim flow only when the
	// deployment runs in development mode. It must never be reachable in a
	// production configuration.
	DevBypassInviteCode = "PLEDGE"

	// InviteCodeLength is the length of generated invite codes.
	InviteCodeLength = 8

	// InviteCodeCharset is the alphabet invite codes are drawn from.
	InviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// InviteListLimit caps the invite listing.
	InviteListLimit = 100
)

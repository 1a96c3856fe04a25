// Package platform declares the chat-platform collaborators the engine
// depends on. Implementations live with the gateway process; the engine
// only calls these interfaces.
package platform

import "context"

// PermissionGrant allows one actor or role to view/write a channel.
// Exactly one of ActorID or RoleID is set.
type PermissionGrant struct {
	ActorID    int64
	RoleID     int64
	AllowView  bool
	AllowWrite bool
}

// ChannelProvisioner creates and tears down private ticket channels.
type ChannelProvisioner interface {
	CreateChannel(ctx context.Context, name string, grants []PermissionGrant) (int64, error)
	DeleteChannel(ctx context.Context, channelID int64) error
	SetPermission(ctx context.Context, channelID, actorID int64, allowView, allowWrite bool) error
}

// Notice is a formatted message for a channel. Fields maps are rendered by
// the gateway; the engine does not control presentation.
type Notice struct {
	Title  string
	Body   string
	Fields map[string]string
}

// Notifier posts notices fire-and-forget. The engine never blocks on
// delivery and ignores failures.
type Notifier interface {
	Post(ctx context.Context, channelID int64, notice Notice)
}

// AuthorizationSource supplies the current trust roles an actor holds in
// the community.
type AuthorizationSource interface {
	RolesOf(ctx context.Context, actorID int64) ([]int64, error)
	IsAdmin(ctx context.Context, actorID int64) (bool, error)
}

package platform

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// LoggingProvisioner is a stand-in provisioner for environments without a
// gateway attached. It hands out synthetic channel ids and logs each call.
type LoggingProvisioner struct {
	logger *zap.Logger
	nextID atomic.Int64
}

// NewLoggingProvisioner builds a stub provisioner.
func NewLoggingProvisioner(logger *zap.Logger) *LoggingProvisioner {
	p := &LoggingProvisioner{logger: logger}
	p.nextID.Store(1_000_000)
	return p
}

func (p *LoggingProvisioner) CreateChannel(ctx context.Context, name string, grants []PermissionGrant) (int64, error) {
	id := p.nextID.Add(1)
	p.logger.Info("createChannel stub", zap.String("name", name), zap.Int64("channel_id", id), zap.Int("grants", len(grants)))
	return id, nil
}

func (p *LoggingProvisioner) DeleteChannel(ctx context.Context, channelID int64) error {
	p.logger.Info("deleteChannel stub", zap.Int64("channel_id", channelID))
	return nil
}

func (p *LoggingProvisioner) SetPermission(ctx context.Context, channelID, actorID int64, allowView, allowWrite bool) error {
	p.logger.Info("setPermission stub",
		zap.Int64("channel_id", channelID),
		zap.Int64("actor_id", actorID),
		zap.Bool("view", allowView),
		zap.Bool("write", allowWrite))
	return nil
}

// LoggingNotifier logs notices instead of delivering them.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier builds a stub notifier.
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) Post(ctx context.Context, channelID int64, notice Notice) {
	n.logger.Debug("notify stub",
		zap.Int64("channel_id", channelID),
		zap.String("title", notice.Title))
}

// StaticAuthorization serves a fixed role map; useful for local runs and
// tests where the gateway's role lookup is absent.
type StaticAuthorization struct {
	Roles  map[int64][]int64
	Admins map[int64]bool
}

func (s *StaticAuthorization) RolesOf(ctx context.Context, actorID int64) ([]int64, error) {
	return s.Roles[actorID], nil
}

func (s *StaticAuthorization) IsAdmin(ctx context.Context, actorID int64) (bool, error) {
	return s.Admins[actorID], nil
}

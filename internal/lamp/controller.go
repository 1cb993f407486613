package lamp

import (
	"context"
	"log/slog"

	"github.com/lampnet/lampnet-core/internal/audit"
	"github.com/lampnet/lampnet-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client the controller needs.
// Commands are fire-and-forget: a publish error is logged, never
// propagated to the caller.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Telemetry receives post-mutation lamp state samples. Implementations
// must not block; a nil Telemetry disables sampling.
type Telemetry interface {
	WriteLampState(nodeID, gatewayID, state string, dimLevel int, lux, currentA float64)
}

// Actor identifies who triggered an operation, for the activity trail.
type Actor struct {
	ID       string
	SourceIP string
}

// ControlRequest carries one validated control operation.
type ControlRequest struct {
	GatewayID string
	NodeID    string
	Patch     Patch
}

// ControlResult reports the outcome of each pipeline stage: the
// persisted record, whether the lamp was newly registered, and whether
// the device command made it onto the broker. The record is serialised
// under the "lamp" key, the shape existing dashboards expect from
// POST /api/lamp/control.
type ControlResult struct {
	Record    *Record `json:"lamp"`
	Created   bool    `json:"created"`
	Published bool    `json:"published"`
	Topic     string  `json:"topic"`
}

// Controller orchestrates the lamp pipelines: persist, audit, publish.
//
// The ordering invariant is audit-before-publish: a device command is
// never sent unless the mutation and its trail entry are durable. The
// reverse failure mode (audited but unpublished) is recoverable because
// commands always carry the full target state.
type Controller struct {
	repo      Repository
	trail     audit.Repository
	publisher Publisher
	telemetry Telemetry
	topics    mqtt.Topics
	qos       byte
	logger    *slog.Logger
}

// NewController creates the lamp pipeline controller.
// telemetry may be nil to disable time-series sampling.
func NewController(repo Repository, trail audit.Repository, publisher Publisher, telemetry Telemetry, qos byte, logger *slog.Logger) *Controller {
	return &Controller{
		repo:      repo,
		trail:     trail,
		publisher: publisher,
		telemetry: telemetry,
		qos:       qos,
		logger:    logger.With("component", "lamp"),
	}
}

// ReadAll returns every known lamp. Read-only: no audit, no publish.
func (c *Controller) ReadAll(ctx context.Context) ([]Record, error) {
	return c.repo.List(ctx)
}

// Control registers or updates a lamp and pushes the resulting state to
// the device.
//
// Pipeline: validate → atomic upsert → audit (add_lamp or update_lamp) →
// publish command built from the post-mutation record. A failed publish
// is logged and reflected in the result, but the operation still
// succeeds — the store is the source of truth.
func (c *Controller) Control(ctx context.Context, actor Actor, req ControlRequest) (*ControlResult, error) {
	if req.NodeID == "" || req.GatewayID == "" {
		return nil, ErrInvalidNode
	}
	if err := req.Patch.Validate(); err != nil {
		return nil, err
	}

	rec, created, err := c.repo.Upsert(ctx, req.GatewayID, req.NodeID, req.Patch)
	if err != nil {
		return nil, err
	}

	action := audit.ActionUpdateLamp
	if created {
		action = audit.ActionAddLamp
	}

	if err := c.recordActivity(ctx, actor, action, rec); err != nil {
		return nil, err
	}

	result := &ControlResult{Record: rec, Created: created}
	result.Topic, result.Published = c.publishCommand(rec.NodeID, NewCommand(rec))

	c.sample(rec)

	c.logger.Info("lamp control applied",
		"node_id", rec.NodeID,
		"gw_id", rec.GatewayID,
		"action", action,
		"published", result.Published,
	)

	return result, nil
}

// Delete removes a lamp and commands it off.
//
// The lamp must match both the gateway and node identifiers; a miss
// returns ErrLampNotFound with no audit entry and no publish. After the
// delete commits, the device is sent a forced shutdown ({OFF, 0}) so a
// deregistered lamp does not stay lit.
func (c *Controller) Delete(ctx context.Context, actor Actor, gatewayID, nodeID string) (*Record, error) {
	rec, err := c.repo.DeleteByGatewayAndNode(ctx, gatewayID, nodeID)
	if err != nil {
		return nil, err
	}

	if err := c.recordActivity(ctx, actor, audit.ActionDeleteLamp, rec); err != nil {
		return nil, err
	}

	_, published := c.publishCommand(rec.NodeID, Command{State: PowerOff, DimLevel: 0})

	// Record the forced-off state so the series ends with what the
	// device was actually commanded to, not the pre-delete state.
	final := *rec
	final.State = PowerOff
	final.DimLevel = 0
	c.sample(&final)

	c.logger.Info("lamp deleted",
		"node_id", rec.NodeID,
		"gw_id", rec.GatewayID,
		"published", published,
	)

	return rec, nil
}

// recordActivity writes the trail entry for a mutation. Must succeed
// before any device command goes out.
func (c *Controller) recordActivity(ctx context.Context, actor Actor, action string, rec *Record) error {
	entry := &audit.ActivityLog{
		ActorID:  actor.ID,
		Action:   action,
		SourceIP: actor.SourceIP,
		Details: map[string]any{
			"node_id":    rec.NodeID,
			"gw_id":      rec.GatewayID,
			"lamp_state": string(rec.State),
			"lamp_dim":   rec.DimLevel,
		},
	}
	if err := c.trail.Create(ctx, entry); err != nil {
		c.logger.Error("activity log write failed",
			"action", action,
			"node_id", rec.NodeID,
			"error", err,
		)
		return err
	}
	return nil
}

// publishCommand sends a fire-and-forget command to the lamp's control
// topic. Returns the topic and whether the publish succeeded.
func (c *Controller) publishCommand(nodeID string, cmd Command) (string, bool) {
	addr, numeric := DeviceAddress(nodeID)
	if !numeric {
		c.logger.Warn("node id is not numeric, using fallback device address",
			"node_id", nodeID,
			"address", addr,
		)
	}
	topic := c.topics.LampControl(addr)

	payload, err := cmd.Encode()
	if err != nil {
		c.logger.Error("lamp command encoding failed", "node_id", nodeID, "error", err)
		return topic, false
	}

	if err := c.publisher.Publish(topic, payload, c.qos, false); err != nil {
		c.logger.Warn("lamp command publish failed",
			"node_id", nodeID,
			"topic", topic,
			"error", err,
		)
		return topic, false
	}

	return topic, true
}

// sample forwards the post-mutation state to the telemetry sink, if any.
func (c *Controller) sample(rec *Record) {
	if c.telemetry == nil {
		return
	}
	c.telemetry.WriteLampState(rec.NodeID, rec.GatewayID, string(rec.State), rec.DimLevel, rec.Lux, rec.CurrentA)
}

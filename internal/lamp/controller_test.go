package lamp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/lampnet/lampnet-core/internal/audit"
)

// fakePublisher records published commands and can be forced to fail.
type fakePublisher struct {
	published []fakePublish
	err       error
}

type fakePublish struct {
	topic   string
	payload []byte
	qos     byte
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, _ bool) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, fakePublish{topic: topic, payload: payload, qos: qos})
	return nil
}

// fakeTrail records activity entries in memory and can be forced to fail.
type fakeTrail struct {
	entries []audit.ActivityLog
	err     error
}

func (f *fakeTrail) Create(_ context.Context, log *audit.ActivityLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *log)
	return nil
}

func (f *fakeTrail) List(_ context.Context, _ audit.Filter) (*audit.ListResult, error) {
	return &audit.ListResult{Logs: f.entries, Total: len(f.entries)}, nil
}

// fakeTelemetry records written samples.
type fakeTelemetry struct {
	samples  int
	lastNode string
	lastSt   string
	lastDim  int
}

func (f *fakeTelemetry) WriteLampState(nodeID, _, state string, dimLevel int, _, _ float64) {
	f.samples++
	f.lastNode = nodeID
	f.lastSt = state
	f.lastDim = dimLevel
}

func newTestController(t *testing.T) (*Controller, *fakePublisher, *fakeTrail, *fakeTelemetry) {
	t.Helper()

	repo := NewSQLiteRepository(testDB(t))
	pub := &fakePublisher{}
	trail := &fakeTrail{}
	tel := &fakeTelemetry{}
	ctrl := NewController(repo, trail, pub, tel, 0, slog.Default())
	return ctrl, pub, trail, tel
}

func TestController_Control_RegistersAndPublishes(t *testing.T) {
	ctrl, pub, trail, tel := newTestController(t)
	ctx := context.Background()
	actor := Actor{ID: "usr-001", SourceIP: "192.168.1.50"}

	on := PowerOn
	result, err := ctrl.Control(ctx, actor, ControlRequest{
		GatewayID: "gw1",
		NodeID:    "7",
		Patch:     Patch{State: &on, DimLevel: ptr(80)},
	})
	if err != nil {
		t.Fatalf("Control() error = %v", err)
	}

	if !result.Created {
		t.Error("Created = false, want true for new node")
	}
	if !result.Published {
		t.Error("Published = false, want true")
	}
	if result.Topic != "lamp/control/7" {
		t.Errorf("Topic = %q, want lamp/control/7", result.Topic)
	}

	// Trail entry written with the add action
	if len(trail.entries) != 1 {
		t.Fatalf("trail entries = %d, want 1", len(trail.entries))
	}
	entry := trail.entries[0]
	if entry.Action != audit.ActionAddLamp {
		t.Errorf("Action = %q, want %q", entry.Action, audit.ActionAddLamp)
	}
	if entry.ActorID != "usr-001" {
		t.Errorf("ActorID = %q, want usr-001", entry.ActorID)
	}
	if entry.Details["node_id"] != "7" {
		t.Errorf("Details[node_id] = %v, want 7", entry.Details["node_id"])
	}

	// Command carries the full post-mutation state
	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.published))
	}
	var cmd Command
	if err := json.Unmarshal(pub.published[0].payload, &cmd); err != nil {
		t.Fatalf("unmarshalling command: %v", err)
	}
	if cmd.State != PowerOn || cmd.DimLevel != 80 {
		t.Errorf("command = %+v, want {ON 80}", cmd)
	}

	if tel.samples != 1 {
		t.Errorf("telemetry samples = %d, want 1", tel.samples)
	}
}

func TestController_Control_UpdateUsesUpdateAction(t *testing.T) {
	ctrl, _, trail, _ := newTestController(t)
	ctx := context.Background()
	actor := Actor{ID: "usr-001"}

	if _, err := ctrl.Control(ctx, actor, ControlRequest{GatewayID: "gw1", NodeID: "7", Patch: Patch{}}); err != nil {
		t.Fatalf("first Control() error = %v", err)
	}

	result, err := ctrl.Control(ctx, actor, ControlRequest{
		GatewayID: "gw1",
		NodeID:    "7",
		Patch:     Patch{DimLevel: ptr(30)},
	})
	if err != nil {
		t.Fatalf("second Control() error = %v", err)
	}

	if result.Created {
		t.Error("Created = true, want false for existing node")
	}
	if got := trail.entries[1].Action; got != audit.ActionUpdateLamp {
		t.Errorf("Action = %q, want %q", got, audit.ActionUpdateLamp)
	}
}

func TestController_Control_NonNumericNodeUsesFallbackTopic(t *testing.T) {
	ctrl, pub, _, _ := newTestController(t)

	result, err := ctrl.Control(context.Background(), Actor{ID: "usr-001"}, ControlRequest{
		GatewayID: "gw1",
		NodeID:    "abc",
		Patch:     Patch{},
	})
	if err != nil {
		t.Fatalf("Control() error = %v", err)
	}

	if result.Topic != "lamp/control/2" {
		t.Errorf("Topic = %q, want fallback lamp/control/2", result.Topic)
	}
	if len(pub.published) != 1 || pub.published[0].topic != "lamp/control/2" {
		t.Errorf("published topic = %v, want lamp/control/2", pub.published)
	}
}

func TestController_Control_PublishFailureStillSucceeds(t *testing.T) {
	ctrl, pub, trail, _ := newTestController(t)
	pub.err = errors.New("broker unreachable")

	result, err := ctrl.Control(context.Background(), Actor{ID: "usr-001"}, ControlRequest{
		GatewayID: "gw1",
		NodeID:    "7",
		Patch:     Patch{},
	})
	if err != nil {
		t.Fatalf("Control() error = %v, want success despite publish failure", err)
	}

	if result.Published {
		t.Error("Published = true, want false")
	}
	// Mutation and trail entry are still durable
	if len(trail.entries) != 1 {
		t.Errorf("trail entries = %d, want 1", len(trail.entries))
	}
	recs, _ := ctrl.ReadAll(context.Background())
	if len(recs) != 1 {
		t.Errorf("stored lamps = %d, want 1", len(recs))
	}
}

func TestController_Control_TrailFailureBlocksPublish(t *testing.T) {
	ctrl, pub, trail, _ := newTestController(t)
	trail.err = errors.New("disk full")

	_, err := ctrl.Control(context.Background(), Actor{ID: "usr-001"}, ControlRequest{
		GatewayID: "gw1",
		NodeID:    "7",
		Patch:     Patch{},
	})
	if err == nil {
		t.Fatal("Control() should fail when the activity trail write fails")
	}

	if len(pub.published) != 0 {
		t.Errorf("published = %d, want 0 (no command without durable trail)", len(pub.published))
	}
}

func TestController_Control_ValidationErrors(t *testing.T) {
	ctrl, pub, trail, _ := newTestController(t)
	bad := PowerState("dim")

	tests := []struct {
		name    string
		req     ControlRequest
		wantErr error
	}{
		{"missing node", ControlRequest{GatewayID: "gw1"}, ErrInvalidNode},
		{"missing gateway", ControlRequest{NodeID: "7"}, ErrInvalidNode},
		{"bad state", ControlRequest{GatewayID: "gw1", NodeID: "7", Patch: Patch{State: &bad}}, ErrInvalidState},
		{"bad dim", ControlRequest{GatewayID: "gw1", NodeID: "7", Patch: Patch{DimLevel: ptr(200)}}, ErrInvalidDimLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctrl.Control(context.Background(), Actor{ID: "usr-001"}, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Control() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(pub.published) != 0 || len(trail.entries) != 0 {
		t.Error("invalid requests must have no side effects")
	}
}

func TestController_Delete(t *testing.T) {
	ctrl, pub, trail, tel := newTestController(t)
	ctx := context.Background()
	actor := Actor{ID: "usr-001"}

	on := PowerOn
	if _, err := ctrl.Control(ctx, actor, ControlRequest{
		GatewayID: "gw1", NodeID: "7", Patch: Patch{State: &on, DimLevel: ptr(80)},
	}); err != nil {
		t.Fatalf("Control() error = %v", err)
	}

	rec, err := ctrl.Delete(ctx, actor, "gw1", "7")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.NodeID != "7" {
		t.Errorf("NodeID = %q, want 7", rec.NodeID)
	}

	if got := trail.entries[1].Action; got != audit.ActionDeleteLamp {
		t.Errorf("Action = %q, want %q", got, audit.ActionDeleteLamp)
	}

	// Forced shutdown command sent after removal
	var cmd Command
	if err := json.Unmarshal(pub.published[1].payload, &cmd); err != nil {
		t.Fatalf("unmarshalling shutdown command: %v", err)
	}
	if cmd.State != PowerOff || cmd.DimLevel != 0 {
		t.Errorf("shutdown command = %+v, want {OFF 0}", cmd)
	}

	// Telemetry sees the delete too, ending the series at forced-off
	if tel.samples != 2 {
		t.Errorf("telemetry samples = %d, want 2 (control + delete)", tel.samples)
	}
	if tel.lastNode != "7" || tel.lastSt != string(PowerOff) || tel.lastDim != 0 {
		t.Errorf("last sample = %s/%s/%d, want 7/OFF/0", tel.lastNode, tel.lastSt, tel.lastDim)
	}

	recs, _ := ctrl.ReadAll(ctx)
	if len(recs) != 0 {
		t.Errorf("stored lamps = %d, want 0", len(recs))
	}
}

func TestController_Delete_NotFoundHasNoSideEffects(t *testing.T) {
	ctrl, pub, trail, tel := newTestController(t)

	_, err := ctrl.Delete(context.Background(), Actor{ID: "usr-001"}, "gw1", "99")
	if !errors.Is(err, ErrLampNotFound) {
		t.Fatalf("Delete() error = %v, want ErrLampNotFound", err)
	}

	if len(pub.published) != 0 {
		t.Error("no command should be published for an unknown lamp")
	}
	if len(trail.entries) != 0 {
		t.Error("no trail entry should be written for an unknown lamp")
	}
	if tel.samples != 0 {
		t.Error("no telemetry sample should be written for an unknown lamp")
	}
}

func TestController_ReadAll_NoSideEffects(t *testing.T) {
	ctrl, pub, trail, tel := newTestController(t)

	recs, err := ctrl.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("ReadAll() = %d records, want 0", len(recs))
	}
	if len(pub.published) != 0 || len(trail.entries) != 0 || tel.samples != 0 {
		t.Error("ReadAll() must not publish, audit, or sample")
	}
}

func TestController_NilTelemetry(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctrl := NewController(repo, &fakeTrail{}, &fakePublisher{}, nil, 0, slog.Default())

	if _, err := ctrl.Control(context.Background(), Actor{ID: "usr-001"}, ControlRequest{
		GatewayID: "gw1", NodeID: "7", Patch: Patch{},
	}); err != nil {
		t.Fatalf("Control() with nil telemetry error = %v", err)
	}
}

package arena

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestTankMoveClampsEachAxis(t *testing.T) {
	rules := DefaultRules()
	tank := NewTank("Alpha", "#ff0000", 15, 300, 0, &rules)

	tank.Move(-20, 5)
	if tank.X != 10 {
		t.Errorf("Expected X clamped to 10, got %f", tank.X)
	}
	if tank.Y != 305 {
		t.Errorf("Expected Y to move freely to 305, got %f", tank.Y)
	}

	tank.Move(5000, 5000)
	if tank.X != 790 || tank.Y != 590 {
		t.Errorf("Expected (790, 590), got (%f, %f)", tank.X, tank.Y)
	}
}

func TestTankRotateWraps(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name  string
		start float64
		delta float64
		want  float64
	}{
		{"past 360", 359, 3, 2},
		{"below zero", 1, -3, 358},
		{"plain", 90, 3, 93},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tank := NewTank("Alpha", "", 100, 100, tt.start, &rules)
			tank.Rotate(tt.delta)
			if math.Abs(tank.Angle-tt.want) > 1e-9 {
				t.Errorf("Expected angle %f, got %f", tt.want, tank.Angle)
			}
		})
	}
}

func TestTankShootCooldown(t *testing.T) {
	rules := DefaultRules()
	tank := NewTank("Alpha", "", 100, 100, 0, &rules)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if !tank.Shoot(t0) {
		t.Fatal("Expected first shot to fire")
	}
	if tank.Shoot(t0.Add(100 * time.Millisecond)) {
		t.Error("Expected shot inside cooldown to be dropped")
	}
	if !tank.Shoot(t0.Add(rules.ShotCooldown)) {
		t.Error("Expected shot after cooldown to fire")
	}

	bullets := tank.DrainBullets()
	if len(bullets) != 2 {
		t.Fatalf("Expected 2 bullets, got %d", len(bullets))
	}
	if len(tank.DrainBullets()) != 0 {
		t.Error("Expected drain to clear pending bullets")
	}

	b := bullets[0]
	if b.X != 115 || b.Y != 100 {
		t.Errorf("Expected muzzle at (115, 100), got (%f, %f)", b.X, b.Y)
	}
	if b.DX != rules.BulletSpeed || math.Abs(b.DY) > 1e-9 {
		t.Errorf("Expected velocity (%f, 0), got (%f, %f)", rules.BulletSpeed, b.DX, b.DY)
	}
	if b.Owner != "Alpha" {
		t.Errorf("Expected owner Alpha, got %s", b.Owner)
	}
}

func TestTankTakeDamageDestroys(t *testing.T) {
	rules := DefaultRules()
	tank := NewTank("Alpha", "", 100, 100, 0, &rules)

	for i := 0; i < 3; i++ {
		tank.TakeDamage(rules.DamagePerHit)
	}
	if !tank.Alive || tank.Health != 25 {
		t.Fatalf("Expected alive with 25 health, got alive=%v health=%d", tank.Alive, tank.Health)
	}

	tank.TakeDamage(rules.DamagePerHit)
	if tank.Alive || tank.Health != 0 {
		t.Errorf("Expected destroyed with 0 health, got alive=%v health=%d", tank.Alive, tank.Health)
	}

	events := tank.DebugEvents()
	if events[len(events)-1].Event != EventDestroyed {
		t.Errorf("Expected last event %q, got %q", EventDestroyed, events[len(events)-1].Event)
	}
}

func TestTankDebugLogIsBounded(t *testing.T) {
	rules := DefaultRules()
	rules.TankLogLimit = 10
	tank := NewTank("Alpha", "", 100, 100, 0, &rules)

	for i := 0; i < 25; i++ {
		tank.Rotate(1)
	}

	events := tank.DebugEvents()
	if len(events) != 10 {
		t.Fatalf("Expected 10 events, got %d", len(events))
	}
	if got := events[len(events)-1].Data["angle"]; got != 25.0 {
		t.Errorf("Expected newest event angle 25, got %v", got)
	}
	if got := tank.Status(3).Debug; len(got) != 3 {
		t.Errorf("Expected status tail of 3, got %d", len(got))
	}
}

func TestDebugEventJSON(t *testing.T) {
	ev := DebugEvent{
		Time:  time.Unix(1700000000, 500000000),
		Event: EventMove,
		Data:  map[string]interface{}{"new_x": 12.5},
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if flat["event"] != "move" || flat["new_x"] != 12.5 || flat["ts"] != 1700000000.5 {
		t.Errorf("Unexpected encoding: %s", raw)
	}

	var back DebugEvent
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if back.Event != EventMove || back.Data["new_x"] != 12.5 || back.Time.Unix() != 1700000000 {
		t.Errorf("Unexpected decode: %+v", back)
	}
}

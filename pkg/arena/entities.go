package arena

// Bullet is a projectile in flight
type Bullet struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	Owner    string  `json:"owner"`
	Lifetime int     `json:"lifetime"`
}

// Obstacle is static geometry handed to brains as context
type Obstacle struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// SelfState is a tank's view of itself
type SelfState struct {
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Angle   float64  `json:"angle"`
	Health  int      `json:"health"`
	Alive   bool     `json:"alive"`
	Bullets []Bullet `json:"bullets"`
}

// TankView is the public view of another tank. Health and score are not
// exposed to opponents.
type TankView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Name  string  `json:"name"`
}

// Snapshot is the read-only world state handed to a brain each tick
type Snapshot struct {
	Self        SelfState  `json:"my_tank"`
	Others      []TankView `json:"other_tanks"`
	Bullets     []Bullet   `json:"bullets"`
	Obstacles   []Obstacle `json:"obstacles"`
	ArenaWidth  float64    `json:"arena_width"`
	ArenaHeight float64    `json:"arena_height"`
}

// Map renders the snapshot as plain maps and slices, the shape script
// engines expect
func (s Snapshot) Map() map[string]interface{} {
	others := make([]interface{}, len(s.Others))
	for i, o := range s.Others {
		others[i] = map[string]interface{}{
			"x":     o.X,
			"y":     o.Y,
			"angle": o.Angle,
			"name":  o.Name,
		}
	}
	obstacles := make([]interface{}, len(s.Obstacles))
	for i, o := range s.Obstacles {
		obstacles[i] = map[string]interface{}{
			"x":      o.X,
			"y":      o.Y,
			"width":  o.Width,
			"height": o.Height,
		}
	}

	return map[string]interface{}{
		"my_tank": map[string]interface{}{
			"x":       s.Self.X,
			"y":       s.Self.Y,
			"angle":   s.Self.Angle,
			"health":  s.Self.Health,
			"alive":   s.Self.Alive,
			"bullets": bulletMaps(s.Self.Bullets),
		},
		"other_tanks":  others,
		"bullets":      bulletMaps(s.Bullets),
		"obstacles":    obstacles,
		"arena_width":  s.ArenaWidth,
		"arena_height": s.ArenaHeight,
	}
}

func bulletMaps(bullets []Bullet) []interface{} {
	out := make([]interface{}, len(bullets))
	for i, b := range bullets {
		out[i] = map[string]interface{}{
			"x":        b.X,
			"y":        b.Y,
			"dx":       b.DX,
			"dy":       b.DY,
			"owner":    b.Owner,
			"lifetime": b.Lifetime,
		}
	}
	return out
}

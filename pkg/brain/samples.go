package brain

import "sort"

var samples = map[string]string{
	"simple_chaser": `// Turn toward the closest enemy, then charge and fire.
function think(state) {
  var me = state.my_tank;
  var others = state.other_tanks;
  if (others.length === 0) {
    return { move: "forward" };
  }

  var closest = others[0];
  var best = Infinity;
  for (var i = 0; i < others.length; i++) {
    var d = Math.pow(others[i].x - me.x, 2) + Math.pow(others[i].y - me.y, 2);
    if (d < best) {
      best = d;
      closest = others[i];
    }
  }

  var target = Math.atan2(closest.y - me.y, closest.x - me.x) * 180 / Math.PI;
  var diff = ((target - me.angle) % 360 + 360) % 360;
  if (diff > 180) {
    diff -= 360;
  }

  if (Math.abs(diff) > 5) {
    return { rotate: diff > 0 ? 1 : -1 };
  }
  return { move: "forward", shoot: true };
}
`,
	"coward": `// Run from anyone closer than 100 units, wander otherwise.
function think(state) {
  var me = state.my_tank;
  var others = state.other_tanks;

  if (others.length > 0) {
    var closest = others[0];
    var best = Infinity;
    for (var i = 0; i < others.length; i++) {
      var d = Math.sqrt(Math.pow(others[i].x - me.x, 2) + Math.pow(others[i].y - me.y, 2));
      if (d < best) {
        best = d;
        closest = others[i];
      }
    }

    if (best < 100) {
      var away = Math.atan2(me.y - closest.y, me.x - closest.x) * 180 / Math.PI;
      var diff = ((away - me.angle) % 360 + 360) % 360;
      if (diff > 180) {
        diff -= 360;
      }
      if (Math.abs(diff) > 5) {
        return { rotate: diff > 0 ? 1 : -1 };
      }
      return { move: "forward" };
    }
  }

  return { move: "forward", rotate: Math.floor(Math.random() * 3) - 1 };
}
`,
	"aggressive_shooter": `// Always shoot; turn toward the closest enemy and close in once aimed.
function think(state) {
  var me = state.my_tank;
  var others = state.other_tanks;
  var action = { shoot: true };

  if (others.length > 0) {
    var closest = others[0];
    var best = Infinity;
    for (var i = 0; i < others.length; i++) {
      var d = Math.pow(others[i].x - me.x, 2) + Math.pow(others[i].y - me.y, 2);
      if (d < best) {
        best = d;
        closest = others[i];
      }
    }

    var target = Math.atan2(closest.y - me.y, closest.x - me.x) * 180 / Math.PI;
    var diff = ((target - me.angle) % 360 + 360) % 360;
    if (diff > 180) {
      diff -= 360;
    }

    if (Math.abs(diff) > 5) {
      action.rotate = diff > 0 ? 1 : -1;
    } else {
      action.move = "forward";
    }
  }

  return action;
}
`,
}

// Samples returns the sample brain scripts keyed by name
func Samples() map[string]string {
	out := make(map[string]string, len(samples))
	for k, v := range samples {
		out[k] = v
	}
	return out
}

// SampleNames returns the sample names in sorted order
func SampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

func TestLoad(t *testing.T) {
	n, err := input.Load("../../data/network.yaml")
	require.NoError(t, err)
	assert.Len(t, n.Segments, 3)

	w, ok := n.Waypoint(entity.NewWaypointID(1, 1, 7))
	require.True(t, ok)
	assert.True(t, w.IsStop)
	assert.True(t, w.IsExit)
	assert.Equal(t, entity.Point{X: 60, Y: 0}, w.Map)
	assert.Equal(t, 4.0, w.LaneWidth)

	w, ok = n.Waypoint(entity.NewWaypointID(2, 1, 1))
	require.True(t, ok)
	assert.True(t, w.IsEntry)
	assert.False(t, w.IsExit)

	_, ok = n.Waypoint(entity.NewWaypointID(1, 1, 8))
	assert.False(t, ok)

	assert.True(t, n.HasExit(entity.NewWaypointID(1, 1, 7), entity.NewWaypointID(1, 2, 1)))
	assert.False(t, n.HasExit(entity.NewWaypointID(1, 2, 1), entity.NewWaypointID(1, 1, 7)))
	assert.Len(t, n.Exits(), 3)
	assert.Len(t, n.LaneWaypoints(2, 1), 5)
	assert.Nil(t, n.LaneWaypoints(2, 2))
}

func TestParseSortsWaypoints(t *testing.T) {
	n, err := input.Parse([]byte(`
segments:
  - id: 4
    lanes:
      - id: 1
        width: 3
        waypoints:
          - {pt: 2, x: 10, y: 0}
          - {pt: 1, x: 0, y: 0, goal: true}
`))
	require.NoError(t, err)
	ws := n.LaneWaypoints(4, 1)
	require.Len(t, ws, 2)
	assert.Equal(t, int32(1), ws[0].ID.Pt)
	assert.True(t, ws[0].IsGoal)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key": `
segments:
  - id: 1
    name: x
`,
		"lane id": `
segments:
  - id: 1
    lanes:
      - id: 0
        waypoints: [{pt: 1, x: 0, y: 0}]
`,
		"duplicated": `
segments:
  - id: 1
    lanes:
      - id: 1
        waypoints: [{pt: 1, x: 0, y: 0}, {pt: 1, x: 1, y: 0}]
`,
		"exit from": `
segments:
  - id: 1
    lanes:
      - id: 1
        waypoints: [{pt: 1, x: 0, y: 0}]
        exits: [{from: 2, to: "1.1.1"}]
`,
		"exit to": `
segments:
  - id: 1
    lanes:
      - id: 1
        waypoints: [{pt: 1, x: 0, y: 0}]
        exits: [{from: 1, to: "5.1.1"}]
`,
		"exit format": `
segments:
  - id: 1
    lanes:
      - id: 1
        waypoints: [{pt: 1, x: 0, y: 0}]
        exits: [{from: 1, to: "5.1"}]
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := input.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	c := config.Default()
	assert.Panics(t, func() { input.Init(c) })
	c.Input.Network = "../../data/network.yaml"
	assert.NotNil(t, input.Init(c))
	_, err := input.Load("../../data/missing.yaml")
	assert.Error(t, err)
}

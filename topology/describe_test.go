package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeTring(t *testing.T) {
	tr, err := NewTring(4, 2)
	require.NoError(t, err)
	rows := Describe(tr)
	require.Len(t, rows, tr.NodeCount())

	root := rows[0]
	assert.Equal(t, 1, root.Level)
	assert.Equal(t, 0, root.Position)
	assert.False(t, root.Leaf)
	for _, row := range rows {
		conns, _ := tr.Connections(row.ID)
		assert.Equal(t, Port(conns), row.Local)
		for _, p := range row.Ports {
			back, ok := tr.Link(p.Peer, p.PeerPort)
			require.True(t, ok)
			assert.Equal(t, Endpoint{Node: row.ID, Port: p.Port}, back, "node %d port %d", row.ID, p.Port)
		}
	}
	assert.True(t, rows[len(rows)-1].Leaf)
}

func TestDescribeMesh(t *testing.T) {
	m, err := NewMesh(3, 2, DefaultMaster(3))
	require.NoError(t, err)
	rows := Describe(m)
	require.Len(t, rows, 9)
	assert.Equal(t, 0, rows[4].Level)
	assert.False(t, rows[4].Leaf)
	assert.Len(t, rows[4].Ports, 4)
	assert.True(t, rows[0].Leaf)
	assert.Len(t, rows[0].Ports, 2)
	assert.Equal(t, -1, rows[0].Ring)
}

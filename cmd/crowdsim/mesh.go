package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/navmesh"
)

// gridSpec describes the demo mesh: a square grid centred on the origin with
// a blob in the middle of every blobEvery x blobEvery block of cells.
type gridSpec struct {
	cols, rows int
	size       float32
	blobEvery  int
}

var defaultGrid = gridSpec{cols: 40, rows: 40, size: 10, blobEvery: 4}

func (g gridSpec) blocked(c, r int) bool {
	if g.blobEvery <= 1 {
		return false
	}
	half := g.blobEvery / 2
	return c%g.blobEvery == half && r%g.blobEvery == half
}

func (g gridSpec) build(cellSize float32) (*navmesh.NavMesh, error) {
	origin := common.Vec2{-float32(g.cols) * g.size / 2, -float32(g.rows) * g.size / 2}
	return navmesh.GridMesh(g.cols, g.rows, g.size, origin, g.blocked, cellSize)
}

// .pb files hold the protobuf encoding, anything else the binary one.
func isProto(path string) bool { return filepath.Ext(path) == ".pb" }

func loadMesh(path string, cellSize float32) (*navmesh.NavMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &navmesh.NavMesh{}
	if isProto(path) {
		err = m.FromProto(data, cellSize)
	} else {
		err = m.FromBin(data, cellSize)
	}
	if err != nil {
		return nil, fmt.Errorf("load mesh %s: %w", path, err)
	}
	return m, nil
}

func saveMesh(m *navmesh.NavMesh, path string) error {
	data := m.ToBin()
	if isProto(path) {
		data = m.ToProto()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

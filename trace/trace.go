package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/crowd"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

// Header is the first line of a trace file.
type Header struct {
	RunID     string  `json:"run_id"`
	Seed      uint64  `json:"seed"`
	Mesh      string  `json:"mesh"`
	Capacity  int32   `json:"capacity"`
	Dt        float32 `json:"dt"`
	StartedAt string  `json:"started_at"`
}

type AgentSnapshot struct {
	ID       int32       `json:"id"`
	State    string      `json:"state"`
	Pos      common.Vec2 `json:"pos"`
	Vel      common.Vec2 `json:"vel"`
	Tri      int32       `json:"tri"`
	Corner   common.Vec2 `json:"corner"`
	Corridor int32       `json:"corridor"` ///< Remaining corridor polygons.
	Stuck    float32     `json:"stuck"`
	Wall     bool        `json:"wall,omitempty"`
}

// Tick is one line of a trace file after the header.
type Tick struct {
	Tick   int64           `json:"tick"`
	Agents []AgentSnapshot `json:"agents"`
}

// Writer appends zstd compressed JSONL snapshots of a crowd to one file per
// run, named after the run id.
type Writer struct {
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	tick Tick
}

// Create opens a new trace under dir. An empty h.RunID gets a fresh uuid.
func Create(dir string, h Header) (*Writer, error) {
	if h.RunID == "" {
		h.RunID = uuid.NewString()
	}
	if h.StartedAt == "" {
		h.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("crowd-%s.jsonl.zst", h.RunID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{path: path, f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Path() string { return w.path }

// WriteTick snapshots the alive agents among the first n slots.
func (w *Writer) WriteTick(tick int64, a *crowd.Agents, n int32) error {
	w.tick.Tick = tick
	w.tick.Agents = w.tick.Agents[:0]
	for i := int32(0); i < n; i++ {
		if !a.Alive[i] {
			continue
		}
		w.tick.Agents = append(w.tick.Agents, AgentSnapshot{
			ID:       i,
			State:    a.States[i].String(),
			Pos:      a.Positions[i],
			Vel:      a.Velocities[i],
			Tri:      a.CurrentTris[i],
			Corner:   a.NextCorners[i],
			Corridor: int32(len(a.Corridor(i))),
			Stuck:    a.StuckRatings[i],
			Wall:     a.WallContacts[i],
		})
	}
	return w.writeLine(&w.tick)
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes the trace. The file is only a valid zstd stream once closed.
func (w *Writer) Close() error {
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
		w.w = nil
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		errs = append(errs, w.f.Close())
		w.f = nil
	}
	return multierr.Combine(errs...)
}

// Reader iterates a trace written by Writer.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
	hdr Header
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := &Reader{f: f, dec: dec, sc: bufio.NewScanner(dec)}
	r.sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	if !r.sc.Scan() {
		_ = r.Close()
		return nil, fmt.Errorf("trace %s: missing header: %w", path, scanErr(r.sc))
	}
	if err := json.Unmarshal(r.sc.Bytes(), &r.hdr); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("trace %s: header: %w", path, err)
	}
	return r, nil
}

func (r *Reader) Header() Header { return r.hdr }

// Next decodes the following tick into t. It returns io.EOF after the last one.
func (r *Reader) Next(t *Tick) error {
	if !r.sc.Scan() {
		return scanErr(r.sc)
	}
	return json.Unmarshal(r.sc.Bytes(), t)
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

func scanErr(sc *bufio.Scanner) error {
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

package source

import (
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	"lodcraft/internal/world"
)

// Wire format of one chunk payload after zstd decompression: a 16-byte
// header (wx, wy, wz, voxelSize as little-endian int32) followed by 32³
// packed 32-bit blocks, optionally followed by 32³ six-byte light cells.
const (
	payloadHeaderSize = 16
	payloadBlockBytes = world.ChunkVolume * 4
	payloadLightBytes = world.ChunkVolume * 6
)

type chunkRequest struct {
	Type      string         `json:"type"`
	Positions []wirePosition `json:"positions"`
}

type wirePosition struct {
	X         int32 `json:"x"`
	Y         int32 `json:"y"`
	Z         int32 `json:"z"`
	VoxelSize int32 `json:"voxelSize"`
}

// RemoteSource streams chunk payloads from a game server over a websocket.
// Requests go out as JSON batches; payloads arrive as zstd-compressed
// binary messages.
type RemoteSource struct {
	conn    *websocket.Conn
	dec     *zstd.Decoder
	results chan Payload

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewRemoteSource dials the server and starts the read loop.
func NewRemoteSource(url string) (*RemoteSource, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: dial %s: %w", url, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("source: zstd: %w", err)
	}
	s := &RemoteSource{
		conn:    conn,
		dec:     dec,
		results: make(chan Payload, 256),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// RequestChunks sends one batched request message.
func (s *RemoteSource) RequestChunks(positions []world.ChunkPosition) error {
	req := chunkRequest{Type: "chunkRequest", Positions: make([]wirePosition, len(positions))}
	for i, p := range positions {
		req.Positions[i] = wirePosition{X: p.WX, Y: p.WY, Z: p.WZ, VoxelSize: p.VoxelSize}
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("source: request: %w", err)
	}
	return nil
}

// Results delivers decoded payloads.
func (s *RemoteSource) Results() <-chan Payload { return s.results }

// Close shuts the connection down.
func (s *RemoteSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
		s.dec.Close()
	})
	return err
}

func (s *RemoteSource) readLoop() {
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Printf("source: read: %v", err)
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		p, err := s.decodePayload(data)
		if err != nil {
			log.Printf("source: %v", err)
			continue
		}
		select {
		case s.results <- p:
		case <-s.done:
			return
		}
	}
}

func (s *RemoteSource) decodePayload(compressed []byte) (Payload, error) {
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("decompress payload: %w", err)
	}
	return decodePayloadBytes(raw)
}

func decodePayloadBytes(raw []byte) (Payload, error) {
	if len(raw) != payloadHeaderSize+payloadBlockBytes &&
		len(raw) != payloadHeaderSize+payloadBlockBytes+payloadLightBytes {
		return Payload{}, fmt.Errorf("payload size %d", len(raw))
	}
	pos := world.ChunkPosition{
		WX:        int32(binary.LittleEndian.Uint32(raw[0:])),
		WY:        int32(binary.LittleEndian.Uint32(raw[4:])),
		WZ:        int32(binary.LittleEndian.Uint32(raw[8:])),
		VoxelSize: int32(binary.LittleEndian.Uint32(raw[12:])),
	}
	if pos.VoxelSize <= 0 || pos.VoxelSize&(pos.VoxelSize-1) != 0 {
		return Payload{}, fmt.Errorf("payload voxel size %d", pos.VoxelSize)
	}

	blocks := make([]uint32, world.ChunkVolume)
	off := payloadHeaderSize
	for i := range blocks {
		blocks[i] = binary.LittleEndian.Uint32(raw[off+i*4:])
	}

	var light []world.LightCell
	if len(raw) == payloadHeaderSize+payloadBlockBytes+payloadLightBytes {
		light = make([]world.LightCell, world.ChunkVolume)
		off += payloadBlockBytes
		for i := range light {
			copy(light[i][:], raw[off+i*6:off+i*6+6])
		}
	}
	return Payload{Pos: pos, Blocks: blocks, Light: light}, nil
}

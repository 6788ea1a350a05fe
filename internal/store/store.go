// Package store keeps review packets and their decided outputs in memory
// for the gateway. The file tree written by the CLI remains the durable
// record; this store only backs the serving surface.
package store

import (
	"sort"
	"sync"

	"github.com/aerodry/claimflow/pkg/types"
)

// Outputs is the result of the post-decision dispatch for one packet.
type Outputs struct {
	PacketID     string `json:"packet_id"`
	DraftedEmail string `json:"drafted_email"`
	LabelRef     string `json:"label_ref,omitempty"`
}

type PacketStore struct {
	mu      sync.Mutex
	packets map[string]types.ReviewPacket
	outputs map[string]Outputs
}

func NewPacketStore() *PacketStore {
	return &PacketStore{
		packets: make(map[string]types.ReviewPacket),
		outputs: make(map[string]Outputs),
	}
}

func (s *PacketStore) PutPacket(packet types.ReviewPacket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets[packet.PacketID] = packet
}

func (s *PacketStore) GetPacket(packetID string) (types.ReviewPacket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	packet, ok := s.packets[packetID]
	return packet, ok
}

// ListPackets returns all packets ordered by packet ID for stable output.
func (s *PacketStore) ListPackets() []types.ReviewPacket {
	s.mu.Lock()
	defer s.mu.Unlock()
	packets := make([]types.ReviewPacket, 0, len(s.packets))
	for _, packet := range s.packets {
		packets = append(packets, packet)
	}
	sort.Slice(packets, func(i, j int) bool {
		return packets[i].PacketID < packets[j].PacketID
	})
	return packets
}

func (s *PacketStore) PutOutputs(out Outputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[out.PacketID] = out
}

func (s *PacketStore) GetOutputs(packetID string) (Outputs, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.outputs[packetID]
	return out, ok
}

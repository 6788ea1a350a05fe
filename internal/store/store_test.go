package store

import (
	"testing"

	"github.com/aerodry/claimflow/pkg/types"
)

func TestPacketRoundTrip(t *testing.T) {
	s := NewPacketStore()

	if _, ok := s.GetPacket("missing"); ok {
		t.Fatalf("missing packet should not be found")
	}

	s.PutPacket(types.ReviewPacket{PacketID: "pkt_b", Stage: types.StageDraft})
	s.PutPacket(types.ReviewPacket{PacketID: "pkt_a", Stage: types.StageDraft})

	packet, ok := s.GetPacket("pkt_a")
	if !ok || packet.PacketID != "pkt_a" {
		t.Fatalf("get pkt_a: %+v %v", packet, ok)
	}

	// Put with the same ID replaces.
	packet.Stage = types.StageDecided
	s.PutPacket(packet)
	got, _ := s.GetPacket("pkt_a")
	if got.Stage != types.StageDecided {
		t.Fatalf("replace did not stick: %+v", got)
	}
}

func TestListPacketsOrdered(t *testing.T) {
	s := NewPacketStore()
	for _, id := range []string{"pkt_c", "pkt_a", "pkt_b"} {
		s.PutPacket(types.ReviewPacket{PacketID: id})
	}
	packets := s.ListPackets()
	if len(packets) != 3 {
		t.Fatalf("expected 3 packets, got %d", len(packets))
	}
	for i, want := range []string{"pkt_a", "pkt_b", "pkt_c"} {
		if packets[i].PacketID != want {
			t.Fatalf("position %d: got %s want %s", i, packets[i].PacketID, want)
		}
	}
}

func TestOutputsRoundTrip(t *testing.T) {
	s := NewPacketStore()
	if _, ok := s.GetOutputs("pkt_x"); ok {
		t.Fatalf("missing outputs should not be found")
	}
	s.PutOutputs(Outputs{PacketID: "pkt_x", DraftedEmail: "Hi", LabelRef: "label.txt"})
	out, ok := s.GetOutputs("pkt_x")
	if !ok || out.DraftedEmail != "Hi" || out.LabelRef != "label.txt" {
		t.Fatalf("outputs mismatch: %+v %v", out, ok)
	}
}

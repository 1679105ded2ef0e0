package pdu

import (
	"bytes"
	"net"

	"github.com/lunixbochs/struc"

	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// GUIDSize is the fixed length of a server GUID (spec GLOSSARY).
const GUIDSize = 12

// beaconFixed is the C-style fixed-layout prefix of a Beacon: no
// strings, no compressed sizes, just packed scalars and byte arrays —
// exactly what `struc` struct tags are for, the way a hand-rolled
// `binary.Write` sequence would otherwise marshal it field by field.
type beaconFixed struct {
	GUID        [GUIDSize]byte
	Flags       uint8
	SequenceID  uint8
	ChangeCount uint16 `struc:"little"`
	Address     [16]byte
	Port        uint16 `struc:"little"`
}

const beaconFixedSize = GUIDSize + 1 + 1 + 2 + 16 + 2

// Beacon is the periodic server-advertisement datagram (spec §4.5,
// command 0x00). The GUID is carried as opaque bytes: the source this
// protocol was distilled from decodes it as little-endian in one file
// and big-endian in another (spec §9 open question (a)); treating it
// as an opaque byte string sidesteps the ambiguity entirely, since
// nothing here interprets it numerically.
type Beacon struct {
	GUID          [GUIDSize]byte
	Flags         uint8
	SequenceID    uint8
	ChangeCount   uint16
	ServerAddress net.IP
	ServerPort    uint16
	Protocol      []byte
	// Status is the optional server-status introspection. A
	// StatusDefault value serializes as the single 0xFF byte spec
	// §4.5 describes as "absent".
	Status Status
}

// Serialize encodes the beacon to w.
func (b Beacon) Serialize(w *pvabuf.Writer) {
	fixed := beaconFixed{GUID: b.GUID, Flags: b.Flags, SequenceID: b.SequenceID, ChangeCount: b.ChangeCount, Port: b.ServerPort}
	v16 := b.ServerAddress.To16()
	if v16 == nil {
		v16 = make(net.IP, 16)
	}
	copy(fixed.Address[:], v16)

	var buf bytes.Buffer
	// struc.Pack only fails on reflection/io errors, never on valid
	// fixed-layout data; bytes.Buffer.Write never fails either.
	_ = struc.Pack(&buf, &fixed)
	w.Raw(buf.Bytes())

	w.String(b.Protocol)
	b.Status.Serialize(w)
}

// DeserializeBeacon reads a Beacon from r.
func DeserializeBeacon(r *pvabuf.Reader) (Beacon, error) {
	raw, err := r.Raw(beaconFixedSize)
	if err != nil {
		return Beacon{}, err
	}
	var fixed beaconFixed
	if err := struc.Unpack(bytes.NewReader(raw), &fixed); err != nil {
		return Beacon{}, err
	}

	address := make(net.IP, 16)
	copy(address, fixed.Address[:])

	b := Beacon{
		GUID:          fixed.GUID,
		Flags:         fixed.Flags,
		SequenceID:    fixed.SequenceID,
		ChangeCount:   fixed.ChangeCount,
		ServerAddress: address,
		ServerPort:    fixed.Port,
	}

	if b.Protocol, err = r.String(); err != nil {
		return Beacon{}, err
	}
	if b.Status, err = DeserializeStatus(r); err != nil {
		return Beacon{}, err
	}

	return b, nil
}

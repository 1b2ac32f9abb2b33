package othello

import (
	"bytes"
	"encoding/binary"
)

const (
	// SaveVersion is bumped whenever the serialized layout changes.
	SaveVersion = 2

	headerLength = 9
)

var serializeMagic = []byte("RVSI")

// Serialize encodes the board, side to move and move number.
//
// Layout: magic "RVSI", version byte, size byte, turn byte, big endian uint16 move number,
// followed by the cells packed four per byte, two bits each, row-major, low bits first.
func (b *Board) Serialize() []byte {
	packed := (len(b.cells) + 3) / 4
	buf := make([]byte, headerLength+packed)

	copy(buf, serializeMagic)
	buf[4] = SaveVersion
	buf[5] = byte(b.size)
	buf[6] = byte(b.turn)
	binary.BigEndian.PutUint16(buf[7:9], uint16(b.moveNumber))

	for i, disc := range b.cells {
		buf[headerLength+i/4] |= byte(disc) << (2 * (i % 4))
	}

	return buf
}

// Deserialize decodes a board encoded with Serialize. Corrupt data is rejected, never repaired.
func Deserialize(data []byte) (*Board, error) {
	if len(data) < headerLength {
		return nil, invalidState("data too short: %d bytes", len(data))
	}

	if !bytes.Equal(data[:4], serializeMagic) {
		return nil, invalidState("bad magic %q", data[:4])
	}

	if data[4] != SaveVersion {
		return nil, invalidState("unsupported version %d", data[4])
	}

	size := int(data[5])
	if err := ValidateSize(size); err != nil {
		return nil, invalidState("%s", err.Error())
	}

	squares := size * size
	packed := (squares + 3) / 4
	if len(data) != headerLength+packed {
		return nil, invalidState("expected %d bytes for size %d, got %d", headerLength+packed, size, len(data))
	}

	turn := Disc(data[6])
	moveNumber := int(binary.BigEndian.Uint16(data[7:9]))

	cells := make([]Disc, squares)
	for i := range cells {
		cells[i] = Disc((data[headerLength+i/4] >> (2 * (i % 4))) & 0b11)
	}

	return NewBoardFromCells(size, cells, turn, moveNumber)
}

// Package ipc implements the Traymond control channel: the fixed-layout
// command record and the one-way transport that delivers it to the server.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Code is the numeric command identifier stored in the first record field.
type Code int32

const (
	CodeMinimizeCurrent  Code = 1
	CodeMinimizeByHandle Code = 2
	CodeShowAll          Code = 3
	CodeExit             Code = 4
)

// Valid reports whether c is one of the four codes the server understands.
func (c Code) Valid() bool {
	return c >= CodeMinimizeCurrent && c <= CodeExit
}

func (c Code) String() string {
	switch c {
	case CodeMinimizeCurrent:
		return "minimize-current"
	case CodeMinimizeByHandle:
		return "minimize-by-handle"
	case CodeShowAll:
		return "show-all"
	case CodeExit:
		return "exit"
	default:
		return fmt.Sprintf("unknown(%d)", int32(c))
	}
}

// Command is one logical request for the Traymond server.
// Handle is only carried for CodeMinimizeByHandle.
type Command struct {
	Code   Code
	Handle uint64
}

func MinimizeCurrent() Command { return Command{Code: CodeMinimizeCurrent} }

func MinimizeByHandle(handle uint64) Command {
	return Command{Code: CodeMinimizeByHandle, Handle: handle}
}

func ShowAll() Command { return Command{Code: CodeShowAll} }

func Exit() Command { return Command{Code: CodeExit} }

func (c Command) String() string {
	if c.Code == CodeMinimizeByHandle {
		return fmt.Sprintf("%s(0x%X)", c.Code, c.Handle)
	}
	return c.Code.String()
}

// TitleSize is the length of the reserved window title buffer.
const TitleSize = 256

const commandWidth = 4

var (
	ErrUnknownCommand = errors.New("unknown command code")
	ErrInvalidHandle  = errors.New("window handle does not fit record layout")
	ErrBufferSize     = errors.New("buffer does not match record size")
)

// Record is the wire form of a Command. WindowTitle is reserved and always
// zero-filled by this client.
type Record struct {
	Command      int32
	WindowHandle uint64
	WindowTitle  [TitleSize]byte
}

// NewRecord builds the record for cmd. The handle is zero for every code
// other than CodeMinimizeByHandle.
func NewRecord(cmd Command) Record {
	rec := Record{Command: int32(cmd.Code)}
	if cmd.Code == CodeMinimizeByHandle {
		rec.WindowHandle = cmd.Handle
	}
	return rec
}

// ToCommand converts a decoded record back into its logical command.
func (r Record) ToCommand() (Command, error) {
	code := Code(r.Command)
	if !code.Valid() {
		return Command{}, fmt.Errorf("%w: %d", ErrUnknownCommand, r.Command)
	}
	if code == CodeMinimizeByHandle {
		return MinimizeByHandle(r.WindowHandle), nil
	}
	return Command{Code: code}, nil
}

// Layout fixes the byte offsets of a Record for one server word size. The
// handle is aligned to its own width after the 4-byte command, matching the
// server's C struct:
//
//	Layout64: command [0,4) pad [4,8) handle [8,16)  title [16,272)
//	Layout32: command [0,4)           handle [4,8)   title [8,264)
//
// The zero Layout behaves as Layout64.
type Layout struct {
	handleWidth int
}

var (
	Layout64 = Layout{handleWidth: 8}
	Layout32 = Layout{handleWidth: 4}
)

// LayoutForWordSize returns the layout for a 32- or 64-bit server build.
func LayoutForWordSize(bits int) (Layout, error) {
	switch bits {
	case 64:
		return Layout64, nil
	case 32:
		return Layout32, nil
	default:
		return Layout{}, fmt.Errorf("unsupported server word size %d (want 32 or 64)", bits)
	}
}

// HandleWidth is the handle field size in bytes.
func (l Layout) HandleWidth() int {
	if l.handleWidth == 0 {
		return 8
	}
	return l.handleWidth
}

// WordSize is the server word size in bits.
func (l Layout) WordSize() int { return l.HandleWidth() * 8 }

func (l Layout) handleOffset() int {
	w := l.HandleWidth()
	return (commandWidth + w - 1) / w * w
}

func (l Layout) titleOffset() int { return l.handleOffset() + l.HandleWidth() }

// Size is the total encoded record length.
func (l Layout) Size() int { return l.titleOffset() + TitleSize }

// Fits reports whether handle is representable in the handle field.
func (l Layout) Fits(handle uint64) bool {
	return l.HandleWidth() == 8 || handle <= math.MaxUint32
}

// Encode serializes cmd into a new Size()-byte record. It fails only for a
// code outside the command set or a handle wider than the layout.
func (l Layout) Encode(cmd Command) ([]byte, error) {
	buf := make([]byte, l.Size())
	if err := l.Place(buf, NewRecord(cmd)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Place writes rec field by field into buf in host byte order.
func (l Layout) Place(buf []byte, rec Record) error {
	if len(buf) < l.Size() {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferSize, len(buf), l.Size())
	}
	if !Code(rec.Command).Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, rec.Command)
	}
	if !l.Fits(rec.WindowHandle) {
		return fmt.Errorf("%w: 0x%X exceeds %d-bit field", ErrInvalidHandle, rec.WindowHandle, l.WordSize())
	}

	order := binary.NativeEndian
	order.PutUint32(buf[0:commandWidth], uint32(rec.Command))
	clear(buf[commandWidth:l.handleOffset()])

	h := buf[l.handleOffset():l.titleOffset()]
	if l.HandleWidth() == 8 {
		order.PutUint64(h, rec.WindowHandle)
	} else {
		order.PutUint32(h, uint32(rec.WindowHandle))
	}

	copy(buf[l.titleOffset():l.Size()], rec.WindowTitle[:])
	return nil
}

// Decode reads one record. The buffer must be exactly Size() bytes.
func (l Layout) Decode(buf []byte) (Record, error) {
	if len(buf) != l.Size() {
		return Record{}, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferSize, len(buf), l.Size())
	}

	order := binary.NativeEndian
	var rec Record
	rec.Command = int32(order.Uint32(buf[0:commandWidth]))

	h := buf[l.handleOffset():l.titleOffset()]
	if l.HandleWidth() == 8 {
		rec.WindowHandle = order.Uint64(h)
	} else {
		rec.WindowHandle = uint64(order.Uint32(h))
	}
	copy(rec.WindowTitle[:], buf[l.titleOffset():])

	if !Code(rec.Command).Valid() {
		return rec, fmt.Errorf("%w: %d", ErrUnknownCommand, rec.Command)
	}
	return rec, nil
}
